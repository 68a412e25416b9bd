package scanning

import (
	"context"

	"scanflow/internal/domain/barcode"
)

// LookupKey selects the document line a scan refers to.
type LookupKey struct {
	DocumentID string
	DeviceID   string
	Identity   barcode.Identity
	// Location is set for address-storage lookups only.
	Location *Location
}

// Lookup resolves a decoded scan to the document state of the item.
// Implementations return an apperror NOT_FOUND error when no item matches
// and resolve multiple candidates deterministically (first by row key).
type Lookup interface {
	Fetch(ctx context.Context, key LookupKey) (*LineSnapshot, error)
}

// Sink durably applies the staged writes of one scan.
// Apply is atomic: either every staged mutation is visible afterwards or none.
// It returns the row key the line was written to, which differs from the
// staged key when another session created the line first. It is empty when
// no line was staged.
type Sink interface {
	Apply(ctx context.Context, documentID string, m Mutations) (string, error)
}

// PolicySource loads the controls configured for a document.
type PolicySource interface {
	GetPolicy(ctx context.Context, documentID string) (Policy, error)
}

// JournalEntry records one evaluated scan.
type JournalEntry struct {
	DocumentID string
	DeviceID   string
	Raw        string
	Identity   barcode.Identity
	Result     Result
}

// Journal keeps a history of scan decisions. Recording is best effort.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}
