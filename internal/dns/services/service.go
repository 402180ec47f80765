// Package services provides the DNS update service layer.
//
// UpdateService is the single composition point invoked by the HTTP
// boundary: it validates the homename, builds the fully-qualified record
// name from the configured domain, and delegates to the reconciliation
// engine bound to the configured zone, token, and cache.
package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-logr/logr"

	"github.com/think0rcode/whatismyip/internal/config"
	"github.com/think0rcode/whatismyip/internal/dns/domain"
	"github.com/think0rcode/whatismyip/internal/dns/providers"
	"github.com/think0rcode/whatismyip/internal/dns/reconcile"
	"github.com/think0rcode/whatismyip/internal/store"
)

// validHomename matches homenames: ASCII letters, hyphens, and underscores.
// Digits and dots are deliberately excluded; the homename is a label, not a
// domain name.
var validHomename = regexp.MustCompile(`^[A-Za-z_-]+$`)

// ValidHomename reports whether name is an acceptable homename.
func ValidHomename(name string) bool {
	return validHomename.MatchString(name)
}

// UpdateService ties configuration, the record cache, and the
// reconciliation engine together for per-request use.
type UpdateService struct {
	domain  string
	manager *reconcile.Manager
}

// New builds an UpdateService from the given configuration and cache.
func New(cfg *config.Config, kv store.Store, log logr.Logger) *UpdateService {
	client := providers.NewCloudflareClient(cfg.CFAPIToken, log.WithName("cloudflare"))
	return &UpdateService{
		domain:  cfg.CFDomain,
		manager: reconcile.New(cfg.CFZoneID, client, kv, log.WithName("reconcile")),
	}
}

// NewWithManager builds an UpdateService around an existing engine.
// Intended for testing.
func NewWithManager(domainName string, manager *reconcile.Manager) *UpdateService {
	return &UpdateService{domain: domainName, manager: manager}
}

// MaybeUpdateDNS reconciles the A/AAAA records for homename against the
// candidate addresses. Empty addresses are skipped. The returned error is
// suitable for logging; it never contains record contents beyond the IPs
// the caller already supplied.
func (s *UpdateService) MaybeUpdateDNS(ctx context.Context, homename, ipv4, ipv6 string) error {
	if !ValidHomename(homename) {
		return fmt.Errorf("%w: homename %q", domain.ErrInvalidInput, homename)
	}

	recordName := homename + "." + s.domain
	return s.manager.MaybeUpdateDNS(ctx, homename, recordName, ipv4, ipv6)
}
