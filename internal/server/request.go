package server

import (
	"net"
	"net/http"
	"strings"
)

// Format enumerates the supported response body formats.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatXML
)

// DetectFormat picks the response format from an Accept header value.
// JSON wins over XML; anything unrecognised falls back to text.
func DetectFormat(accept string) Format {
	accept = strings.ToLower(accept)
	if strings.Contains(accept, "application/json") {
		return FormatJSON
	}
	if strings.Contains(accept, "application/xml") || strings.Contains(accept, "text/xml") {
		return FormatXML
	}
	return FormatText
}

// clientIP extracts the client's address. Behind Cloudflare the
// CF-Connecting-IP header is authoritative; other reverse proxies commonly
// set X-Real-IP. Without either, the socket peer address is used.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
