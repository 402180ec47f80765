package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
)

// --- Mock updater ---

type fakeUpdater struct {
	err error

	calls    int
	homename string
	ipv4     string
	ipv6     string
}

func (u *fakeUpdater) MaybeUpdateDNS(_ context.Context, homename, ipv4, ipv6 string) error {
	u.calls++
	u.homename = homename
	u.ipv4 = ipv4
	u.ipv6 = ipv6
	return u.err
}

func doRequest(t *testing.T, h *Handler, headers map[string]string, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.9:51234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func authedHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{"Authorization": "Bearer secret"}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

// --- Auth ---

func TestHandler_RejectsMissingAuth(t *testing.T) {
	u := &fakeUpdater{}
	h := New("secret", u, logr.Discard())

	rec := doRequest(t, h, nil, "/?homename=home")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if u.calls != 0 {
		t.Errorf("updater called %d times, want 0", u.calls)
	}
}

func TestHandler_RejectsWrongToken(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, map[string]string{"Authorization": "Bearer wrong"}, "/?homename=home")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandler_NoConfiguredTokenDeniesEverything(t *testing.T) {
	h := New("", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, map[string]string{"Authorization": "Bearer anything"}, "/?homename=home")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// --- Homename validation ---

func TestHandler_MissingHomename(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, authedHeaders(nil), "/")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_InvalidHomename(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	for _, name := range []string{"home123", "home.name", "home%20name", "home!"} {
		rec := doRequest(t, h, authedHeaders(nil), "/?homename="+name)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("homename %q: status = %d, want 400", name, rec.Code)
		}
	}
}

// --- Client IP extraction and update dispatch ---

func TestHandler_UsesCFConnectingIP(t *testing.T) {
	u := &fakeUpdater{}
	h := New("secret", u, logr.Discard())

	rec := doRequest(t, h, authedHeaders(map[string]string{
		"CF-Connecting-IP": "203.0.113.5",
		"X-Real-IP":        "198.51.100.7",
	}), "/?homename=home")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if u.homename != "home" || u.ipv4 != "203.0.113.5" || u.ipv6 != "" {
		t.Errorf("updater got (%q, %q, %q), want (home, 203.0.113.5, \"\")", u.homename, u.ipv4, u.ipv6)
	}
}

func TestHandler_FallsBackToXRealIPThenRemoteAddr(t *testing.T) {
	u := &fakeUpdater{}
	h := New("secret", u, logr.Discard())

	doRequest(t, h, authedHeaders(map[string]string{"X-Real-IP": "2001:db8::1"}), "/?homename=home")
	if u.ipv6 != "2001:db8::1" {
		t.Errorf("ipv6 = %q, want from X-Real-IP", u.ipv6)
	}

	doRequest(t, h, authedHeaders(nil), "/?homename=home")
	if u.ipv4 != "192.0.2.9" {
		t.Errorf("ipv4 = %q, want RemoteAddr host", u.ipv4)
	}
}

func TestHandler_UpdateFailureStillServesResponse(t *testing.T) {
	u := &fakeUpdater{err: errors.New("provider down")}
	h := New("secret", u, logr.Discard())

	rec := doRequest(t, h, authedHeaders(map[string]string{"CF-Connecting-IP": "203.0.113.5"}), "/?homename=home")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite reconciliation failure", rec.Code)
	}
	if got := rec.Body.String(); got != "203.0.113.5\n\n" {
		t.Errorf("body = %q, want IP echo", got)
	}
}

// --- Response formats ---

func TestHandler_TextResponse(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, authedHeaders(map[string]string{"CF-Connecting-IP": "1.2.3.4"}), "/?homename=home")
	if got := rec.Body.String(); got != "1.2.3.4\n\n" {
		t.Errorf("body = %q, want %q", got, "1.2.3.4\n\n")
	}
}

func TestHandler_JSONResponse(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, authedHeaders(map[string]string{
		"CF-Connecting-IP": "2001:db8::1",
		"Accept":           "application/json",
	}), "/?homename=home")

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if got := rec.Body.String(); got != "{\"ipv4\":\"\",\"ipv6\":\"2001:db8::1\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestHandler_XMLResponse(t *testing.T) {
	h := New("secret", &fakeUpdater{}, logr.Discard())

	rec := doRequest(t, h, authedHeaders(map[string]string{
		"CF-Connecting-IP": "1.2.3.4",
		"Accept":           "text/xml",
	}), "/?homename=home")

	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Content-Type = %q, want application/xml", ct)
	}
	want := "<ip><ipv4>1.2.3.4</ipv4><ipv6></ipv6></ip>"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

// --- DetectFormat ---

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   Format
	}{
		{"no header defaults to text", "", FormatText},
		{"json", "application/json", FormatJSON},
		{"json in mixed accept", "text/html,application/json,*/*", FormatJSON},
		{"xml application type", "application/xml", FormatXML},
		{"xml text type", "text/xml", FormatXML},
		{"case insensitive", "APPLICATION/JSON", FormatJSON},
		{"json has priority over xml", "application/xml,application/json", FormatJSON},
		{"unrecognized types fall back to text", "text/html,image/png", FormatText},
		{"text/plain", "text/plain", FormatText},
		{"unknown application type", "application/pdf", FormatText},
		{"json with charset", "application/json; charset=utf-8", FormatJSON},
		{"xml with charset", "application/xml; charset=utf-8", FormatXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.accept); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.accept, got, tt.want)
			}
		})
	}
}

// --- Body formatting ---

func TestTextBody(t *testing.T) {
	tests := []struct {
		ipv4, ipv6, want string
	}{
		{"1.1.1.1", "", "1.1.1.1\n\n"},
		{"", "::1", "\n::1\n"},
		{"1.1.1.1", "::1", "1.1.1.1\n::1\n"},
		{"", "", "\n\n"},
	}
	for _, tt := range tests {
		if got := textBody(tt.ipv4, tt.ipv6); got != tt.want {
			t.Errorf("textBody(%q, %q) = %q, want %q", tt.ipv4, tt.ipv6, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "normal text", "normal text"},
		{"angle brackets escaped", "<script>", "&lt;script&gt;"},
		{"ampersand escaped", "&amp;", "&amp;amp;"},
		{"double quotes escaped", `"quoted"`, "&quot;quoted&quot;"},
		{"single quotes escaped", "'single'", "&apos;single&apos;"},
		{
			"complex injection attempt escaped",
			"192.168.1.1<script>&alert('xss')</script>",
			"192.168.1.1&lt;script&gt;&amp;alert(&apos;xss&apos;)&lt;/script&gt;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeXML(tt.input); got != tt.want {
				t.Errorf("escapeXML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestXMLBody(t *testing.T) {
	tests := []struct {
		ipv4, ipv6, want string
	}{
		{"192.168.1.1", "2001:db8::1", "<ip><ipv4>192.168.1.1</ipv4><ipv6>2001:db8::1</ipv6></ip>"},
		{"", "", "<ip><ipv4></ipv4><ipv6></ipv6></ip>"},
		{"10.0.0.1", "", "<ip><ipv4>10.0.0.1</ipv4><ipv6></ipv6></ip>"},
		{"", "fe80::1", "<ip><ipv4></ipv4><ipv6>fe80::1</ipv6></ip>"},
	}
	for _, tt := range tests {
		if got := xmlBody(tt.ipv4, tt.ipv6); got != tt.want {
			t.Errorf("xmlBody(%q, %q) = %q, want %q", tt.ipv4, tt.ipv6, got, tt.want)
		}
	}
}
