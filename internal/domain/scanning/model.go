// Package scanning reconciles decoded scans against an open document.
//
// Engine.Evaluate is a pure decision function: given a decoded identity, the
// matching document line snapshot and the document policy, it returns the
// operator-facing outcome and the mutations to persist. Worker wires it to
// the lookup and sink contracts; Service adds per-document policy loading
// and per-device serialization for the HTTP API.
package scanning

import (
	"time"

	"scanflow/internal/core/types"
)

// Kind is the closed vocabulary of scan outcomes matched by device clients.
// The values are part of the wire contract and must never be renamed.
type Kind string

const (
	KindInvalidBarcode      Kind = "invalid_barcode"
	KindNotFound            Kind = "not_found"
	KindMarkNotFound        Kind = "mark_not_found"
	KindNotValidBarcode     Kind = "not_valid_barcode"
	KindMarkAlreadyScanned  Kind = "mark_already_scanned"
	KindZeroPlanError       Kind = "zero_plan_error"
	KindQuantityPlanReached Kind = "quantity_plan_reached"
	KindUseSeries           Kind = "use_series"
	KindSuccessBarcode      Kind = "success_barcode"
	KindSuccessMark         Kind = "success_mark"
)

// IsSuccess reports whether k is one of the success kinds.
func (k Kind) IsSuccess() bool {
	return k == KindSuccessBarcode || k == KindSuccessMark
}

// TableType selects the address-storage line table.
type TableType string

const (
	TableIn  TableType = "in"  // putaway
	TableOut TableType = "out" // picking
)

// Valid reports whether t is a known table type.
func (t TableType) Valid() bool { return t == TableIn || t == TableOut }

// Location is the storage cell selected on an address-storage device.
type Location struct {
	CellID    string    `json:"cellId"`
	TableType TableType `json:"tableType"`
}

// LineSnapshot is the document state for one scanned item.
// RowKey is empty when no committed line exists yet for the item combination.
type LineSnapshot struct {
	GoodID     string `db:"good_id"`
	PropertyID string `db:"property_id"`
	SeriesID   string `db:"series_id"`
	UnitID     string `db:"unit_id"`

	Ratio  types.Quantity `db:"ratio"`
	RowKey string         `db:"row_key"`

	DeviceQtty  types.Quantity `db:"device_qtty"`
	OverallQtty types.Quantity `db:"overall_qtty"`
	PlanQtty    types.Quantity `db:"qtty_plan"`

	UseMark      bool   `db:"use_mark"`
	MarkID       string `db:"mark_id"`
	MarkApproved bool   `db:"mark_approved"`

	UseSeries bool `db:"use_series"`
}

// IsNewLine reports whether the scan would create a document line.
func (s LineSnapshot) IsNewLine() bool { return s.RowKey == "" }

// Policy is the business control set of a document editing session.
type Policy struct {
	Control          bool `db:"control" json:"control"`
	UseMark          bool `db:"use_mark" json:"useMark"`
	HaveMarkPlan     bool `db:"have_mark_plan" json:"haveMarkPlan"`
	HaveQttyPlan     bool `db:"have_qtty_plan" json:"haveQttyPlan"`
	HaveZeroPlan     bool `db:"have_zero_plan" json:"haveZeroPlan"`
	UseScanningQueue bool `db:"use_scanning_queue" json:"useScanningQueue"`
	GroupScan        bool `db:"group_scan" json:"groupScan"`
}

// Capabilities distinguish the worker variants.
type Capabilities struct {
	// SupportsMarks enables the marking code stage.
	SupportsMarks bool
	// Addressed keys lookups and line writes by storage cell.
	Addressed bool
}

var (
	// Standard is the document worker.
	Standard = Capabilities{SupportsMarks: true}
	// AddressStorage is the cell-aware worker; it never handles marks.
	AddressStorage = Capabilities{Addressed: true}
)

// MarkMutation approves a marking code record.
// ID is empty for a mark that was not declared in the document.
type MarkMutation struct {
	ID       string `json:"id,omitempty"`
	RowKey   string `json:"rowKey"`
	GTIN     string `json:"gtin,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Approved string `json:"approved"`
}

// IsNew reports whether the mark record must be inserted.
func (m MarkMutation) IsNew() bool { return m.ID == "" }

// LineMutation writes the committed quantity of a document line.
type LineMutation struct {
	RowKey string    `json:"rowKey"`
	Insert bool      `json:"insert"`
	Mode   WriteMode `json:"mode"`

	GoodID     string `json:"goodId"`
	PropertyID string `json:"propertyId,omitempty"`
	SeriesID   string `json:"seriesId,omitempty"`
	UnitID     string `json:"unitId,omitempty"`

	// Quantity is the committed line quantity after this scan.
	Quantity types.Quantity `json:"quantity"`
	// DeviceQtty is this device's running total after this scan.
	DeviceQtty types.Quantity `json:"deviceQtty"`
	// Delta is the quantity contributed by this scan.
	Delta types.Quantity `json:"delta"`

	CellID    string    `json:"cellId,omitempty"`
	TableType TableType `json:"tableType,omitempty"`
}

// QueueMutation is one append-only delta queue entry.
type QueueMutation struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	RowKey     string         `json:"rowKey"`
	DeviceID   string         `json:"deviceId,omitempty"`
	Delta      types.Quantity `json:"delta"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Mutations are the staged writes of one scan. Any subset may be nil.
type Mutations struct {
	Mark  *MarkMutation  `json:"mark,omitempty"`
	Line  *LineMutation  `json:"line,omitempty"`
	Queue *QueueMutation `json:"queue,omitempty"`
}

// Empty reports whether nothing was staged.
func (m Mutations) Empty() bool {
	return m.Mark == nil && m.Line == nil && m.Queue == nil
}

// WithRowKey returns a copy of m with every mutation moved to rowKey.
func (m Mutations) WithRowKey(rowKey string) Mutations {
	var out Mutations
	if m.Mark != nil {
		mark := *m.Mark
		mark.RowKey = rowKey
		out.Mark = &mark
	}
	if m.Line != nil {
		line := *m.Line
		line.RowKey = rowKey
		out.Line = &line
	}
	if m.Queue != nil {
		q := *m.Queue
		q.RowKey = rowKey
		out.Queue = &q
	}
	return out
}

// Result is the outcome of one scan. It is never reused across scans.
type Result struct {
	Kind        Kind      `json:"status"`
	Description string    `json:"description"`
	RowKey      string    `json:"rowKey,omitempty"`
	Staged      Mutations `json:"staged"`
}

// Failure returns the failure kind, or empty on success.
func (r Result) Failure() Kind {
	if r.Kind.IsSuccess() {
		return ""
	}
	return r.Kind
}
