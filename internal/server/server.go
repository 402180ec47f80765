// Package server is the HTTP boundary: it authenticates the request,
// extracts the homename and client address, triggers DNS reconciliation,
// and echoes the observed addresses back in the requested format.
package server

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/think0rcode/whatismyip/internal/auth"
	"github.com/think0rcode/whatismyip/internal/dns/services"
	"github.com/think0rcode/whatismyip/internal/iputil"
)

// Updater is the DNS update contract the handler depends on.
// *services.UpdateService satisfies it.
type Updater interface {
	MaybeUpdateDNS(ctx context.Context, homename, ipv4, ipv6 string) error
}

// Handler serves the dynamic-DNS update endpoint.
type Handler struct {
	apiToken string
	updater  Updater
	log      logr.Logger
}

// New returns a Handler authenticating against apiToken and delegating DNS
// work to updater.
func New(apiToken string, updater Updater, log logr.Logger) *Handler {
	return &Handler{apiToken: apiToken, updater: updater, log: log}
}

// ServeHTTP handles GET /?homename=<name>.
//
// A reconciliation failure is logged but never fails the client response:
// a stale DNS record is not a fatal condition for the caller, and the next
// poll retries naturally.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !auth.CheckToken(r.Header.Get("Authorization"), h.apiToken) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	homename := r.URL.Query().Get("homename")
	if homename == "" {
		http.Error(w, "homename parameter required", http.StatusBadRequest)
		return
	}
	if !services.ValidHomename(homename) {
		http.Error(w, "invalid homename", http.StatusBadRequest)
		return
	}

	ipv4, ipv6 := iputil.Split(clientIP(r))

	if err := h.updater.MaybeUpdateDNS(r.Context(), homename, ipv4, ipv6); err != nil {
		h.log.Error(err, "dns update failed", "homename", homename)
	}

	writeResponse(w, DetectFormat(r.Header.Get("Accept")), ipv4, ipv6)
}
