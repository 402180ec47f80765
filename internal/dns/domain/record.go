package domain

// RecordType represents a DNS record type managed by this service.
type RecordType string

const (
	RecordTypeA    RecordType = "A"
	RecordTypeAAAA RecordType = "AAAA"
)

// Types lists the record types the reconciler handles, in processing order.
var Types = []RecordType{RecordTypeA, RecordTypeAAAA}

// Record represents a single DNS record as returned by the provider.
type Record struct {
	// ID is the provider-assigned record identifier.
	ID string `json:"id"`

	// Type is the DNS record type (A or AAAA).
	Type RecordType `json:"type"`

	// Name is the fully-qualified record name as returned by the provider
	// (e.g. "home.example.com").
	Name string `json:"name"`

	// Content is the record value (an IP address).
	Content string `json:"content"`
}

// RecordInfo is the cached bookkeeping for one homename: the fully-qualified
// record name plus the provider-assigned ids of its A and AAAA records.
// A nil id means no record of that type is known to exist yet.
//
// The JSON shape is the cache wire format; changing a tag invalidates every
// previously stored entry.
type RecordInfo struct {
	RecordName string  `json:"record_name"`
	AID        *string `json:"a_id"`
	AAAAID     *string `json:"aaaa_id"`
}

// NewRecordInfo returns a RecordInfo for the given record name with no ids.
func NewRecordInfo(recordName string) *RecordInfo {
	return &RecordInfo{RecordName: recordName}
}

// ID returns the cached record id for the given type, if present.
func (ri *RecordInfo) ID(t RecordType) (string, bool) {
	switch t {
	case RecordTypeA:
		if ri.AID != nil {
			return *ri.AID, true
		}
	case RecordTypeAAAA:
		if ri.AAAAID != nil {
			return *ri.AAAAID, true
		}
	}
	return "", false
}

// SetID stores the record id for the given type.
func (ri *RecordInfo) SetID(t RecordType, id string) {
	switch t {
	case RecordTypeA:
		ri.AID = &id
	case RecordTypeAAAA:
		ri.AAAAID = &id
	}
}
