// Package reconcile contains the DNS reconciliation engine.
//
// Given a homename, its fully-qualified record name, and candidate IPv4/IPv6
// addresses, the Manager ensures the provider's A/AAAA records match, using
// the fewest possible provider calls. Provider record ids and last-applied
// IPs are persisted in the key-value store so the common "address unchanged"
// poll completes without touching the provider at all.
//
// The provider is the source of truth; the store is an optimisation. A
// cached IP is written only after the corresponding create or update has
// succeeded, so a crash or provider failure never leaves the store claiming
// an update happened when it did not.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/think0rcode/whatismyip/internal/dns/domain"
	"github.com/think0rcode/whatismyip/internal/store"
)

// RecordAPI is the narrow provider contract the engine depends on.
// *providers.CloudflareClient satisfies it.
type RecordAPI interface {
	// ListRecords returns the zone's records matching name and type.
	ListRecords(ctx context.Context, zoneID, name string, t domain.RecordType) ([]domain.Record, error)

	// CreateRecord creates a record and returns the provider-assigned id.
	CreateRecord(ctx context.Context, zoneID, name, content string, t domain.RecordType) (string, error)

	// UpdateRecord replaces an existing record's content by id.
	UpdateRecord(ctx context.Context, zoneID, id, name, content string, t domain.RecordType) error
}

// Manager reconciles DNS records for a single zone.
type Manager struct {
	zoneID string
	api    RecordAPI
	store  store.Store
	log    logr.Logger
}

// New returns a Manager bound to the given zone, provider API, and store.
func New(zoneID string, api RecordAPI, kv store.Store, log logr.Logger) *Manager {
	return &Manager{zoneID: zoneID, api: api, store: kv, log: log}
}

// recordKey is the store key holding the serialized RecordInfo for a homename.
func recordKey(homename string) string {
	return homename + "_dns_record_id"
}

// ipKey is the store key holding the last-applied IP for a homename and type.
func ipKey(homename string, t domain.RecordType) string {
	if t == domain.RecordTypeAAAA {
		return homename + "_v6"
	}
	return homename + "_v4"
}

// GetOrCreateRecordIDs resolves the RecordInfo for a homename: from the
// store when a parseable entry exists, otherwise by querying the provider
// for records created out-of-band. The result is persisted even when both
// ids are absent, so "no record exists yet" becomes a cached fact and the
// next call skips the provider lookups.
func (m *Manager) GetOrCreateRecordIDs(ctx context.Context, homename, recordName string) (*domain.RecordInfo, error) {
	key := recordKey(homename)

	if value, ok, err := m.store.Get(ctx, key); err != nil {
		m.log.Error(err, "cache read failed, rebuilding from provider", "key", key)
	} else if ok {
		var info domain.RecordInfo
		if err := json.Unmarshal([]byte(value), &info); err == nil {
			return &info, nil
		}
		// Malformed entry is treated as a miss, never a hard failure.
		m.log.Info("malformed cache entry, rebuilding from provider", "key", key)
	}

	info := domain.NewRecordInfo(recordName)
	for _, t := range domain.Types {
		record, err := m.findExistingRecord(ctx, recordName, t)
		if err != nil {
			return nil, err
		}
		if record != nil {
			info.SetID(t, record.ID)
		}
	}

	if err := m.storeRecordInfo(ctx, homename, info); err != nil {
		return nil, err
	}
	return info, nil
}

// findExistingRecord returns the first provider record exactly matching name
// and type, or nil if none exists.
func (m *Manager) findExistingRecord(ctx context.Context, name string, t domain.RecordType) (*domain.Record, error) {
	records, err := m.api.ListRecords(ctx, m.zoneID, name, t)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Name == name && records[i].Type == t {
			return &records[i], nil
		}
	}
	return nil, nil
}

// storeRecordInfo persists the RecordInfo for a homename.
func (m *Manager) storeRecordInfo(ctx context.Context, homename string, info *domain.RecordInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadCache, err)
	}
	return m.store.Put(ctx, recordKey(homename), string(data))
}

// shouldUpdate reports whether the candidate IP differs from the last IP
// successfully applied for this homename and type. Comparison is exact
// string equality; textually different but semantically equal IPv6 literals
// count as a change. An unreadable or absent cached IP forces an update.
func (m *Manager) shouldUpdate(ctx context.Context, homename string, t domain.RecordType, newIP string) bool {
	if newIP == "" {
		return false
	}
	prev, ok, err := m.store.Get(ctx, ipKey(homename, t))
	if err != nil {
		m.log.Error(err, "cache read failed, forcing update", "homename", homename, "type", t)
		return true
	}
	return !ok || prev != newIP
}

// ensureAndApply converges the provider record of the given type to content.
// With a known id it issues an update; otherwise it creates the record,
// stores the new id into info, and persists info before reporting success
// (creation already supplied the correct content, no separate update runs).
func (m *Manager) ensureAndApply(ctx context.Context, info *domain.RecordInfo, t domain.RecordType, content, homename string) error {
	if id, ok := info.ID(t); ok {
		return m.api.UpdateRecord(ctx, m.zoneID, id, info.RecordName, content, t)
	}

	id, err := m.api.CreateRecord(ctx, m.zoneID, info.RecordName, content, t)
	if err != nil {
		return err
	}
	info.SetID(t, id)
	return m.storeRecordInfo(ctx, homename, info)
}

// reconcileType processes one record type: skip when the candidate is empty
// or unchanged, otherwise apply it at the provider and, only on success,
// record it as the last-applied IP.
func (m *Manager) reconcileType(ctx context.Context, info *domain.RecordInfo, t domain.RecordType, ip, homename string) error {
	if !m.shouldUpdate(ctx, homename, t, ip) {
		return nil
	}
	if err := m.ensureAndApply(ctx, info, t, ip, homename); err != nil {
		return err
	}
	if err := m.store.Put(ctx, ipKey(homename, t), ip); err != nil {
		return err
	}
	m.log.Info("record converged", "homename", homename, "type", t, "ip", ip)
	return nil
}

// MaybeUpdateDNS is the top-level entry, invoked once per incoming request.
// An empty candidate IP means "no record of that type in the client's
// address" and results in no action for that type, not a deletion. The two
// record types are reconciled independently; a failure on one does not stop
// the other, and the errors are joined into the single returned error.
func (m *Manager) MaybeUpdateDNS(ctx context.Context, homename, recordName, ipv4, ipv6 string) error {
	info, err := m.GetOrCreateRecordIDs(ctx, homename, recordName)
	if err != nil {
		return err
	}

	errA := m.reconcileType(ctx, info, domain.RecordTypeA, ipv4, homename)
	errAAAA := m.reconcileType(ctx, info, domain.RecordTypeAAAA, ipv6, homename)

	return errors.Join(errA, errAAAA)
}
