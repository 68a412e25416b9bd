package scanning

import (
	"time"

	"scanflow/internal/core/id"
	"scanflow/internal/core/types"
	"scanflow/internal/domain/barcode"
)

// markApproved is the stored value of an approved marking code.
const markApproved = "1"

// WriteMode tells the sink how to apply LineMutation.Quantity.
type WriteMode string

const (
	// WriteOverwrite sets the committed quantity to LineMutation.Quantity.
	WriteOverwrite WriteMode = "overwrite"
	// WriteIncrement adds LineMutation.Delta to whatever is committed, so
	// concurrent sessions never drop each other's contribution.
	WriteIncrement WriteMode = "increment"
)

// Input is everything one decision depends on.
type Input struct {
	DocumentID string
	DeviceID   string
	Identity   barcode.Identity
	// Snapshot is nil when the lookup found no matching item.
	Snapshot *LineSnapshot
	Location *Location
	Policy   Policy
}

// Engine evaluates scans. It keeps no state between calls.
type Engine struct {
	caps   Capabilities
	newKey func() string
	now    func() time.Time
}

// NewEngine creates an engine for the given worker variant.
func NewEngine(caps Capabilities) *Engine {
	return &Engine{
		caps:   caps,
		newKey: id.NewKey,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Capabilities returns the variant the engine was built for.
func (e *Engine) Capabilities() Capabilities { return e.caps }

// Evaluate runs series, mark and quantity checks and stages the writes of a
// successful scan. A failed check stages nothing.
func (e *Engine) Evaluate(in Input) Result {
	if !in.Identity.Valid() {
		return reject(KindInvalidBarcode, "")
	}
	if in.Snapshot == nil {
		return reject(KindNotFound, "")
	}

	snap := *in.Snapshot
	if snap.UseSeries {
		return reject(KindUseSeries, snap.RowKey)
	}

	rowKey := snap.RowKey
	if snap.IsNewLine() {
		rowKey = e.newKey()
	}

	var staged Mutations

	if e.caps.SupportsMarks && in.Policy.UseMark && snap.UseMark {
		mark, kind := checkMark(in.Identity, snap, in.Policy, rowKey)
		if kind != "" {
			return reject(kind, snap.RowKey)
		}
		staged.Mark = mark
	}

	newDevice := snap.DeviceQtty + snap.Ratio
	newOverall := snap.OverallQtty + snap.Ratio

	// Existing lines only: a new line is always created once, the plan is
	// enforced from the next scan on.
	if !snap.IsNewLine() && in.Policy.HaveQttyPlan && in.Policy.Control &&
		snap.PlanQtty < types.Max(newDevice, newOverall) {
		return Result{
			Kind:        KindQuantityPlanReached,
			Description: describePlanReached(snap.Ratio),
			RowKey:      snap.RowKey,
		}
	}
	if snap.IsNewLine() && in.Policy.HaveZeroPlan && in.Policy.Control {
		return reject(KindZeroPlanError, "")
	}

	staged.Line = e.stageLine(snap, in, rowKey, newDevice, newOverall)
	if in.Policy.UseScanningQueue {
		staged.Queue = &QueueMutation{
			ID:         e.newKey(),
			DocumentID: in.DocumentID,
			RowKey:     rowKey,
			DeviceID:   in.DeviceID,
			Delta:      snap.Ratio,
			CreatedAt:  e.now(),
		}
	}

	kind := KindSuccessBarcode
	if staged.Mark != nil {
		kind = KindSuccessMark
	}
	return Result{
		Kind:        kind,
		Description: Describe(kind),
		RowKey:      rowKey,
		Staged:      staged,
	}
}

func checkMark(ident barcode.Identity, snap LineSnapshot, p Policy, rowKey string) (*MarkMutation, Kind) {
	if ident.Scheme != barcode.SchemeGS1 {
		return nil, KindNotValidBarcode
	}

	if snap.MarkID != "" {
		if snap.MarkApproved {
			return nil, KindMarkAlreadyScanned
		}
		return &MarkMutation{ID: snap.MarkID, RowKey: rowKey, Approved: markApproved}, ""
	}

	if p.HaveMarkPlan && p.Control {
		return nil, KindMarkNotFound
	}
	return &MarkMutation{
		RowKey:   rowKey,
		GTIN:     ident.GTIN,
		Serial:   ident.Serial,
		Approved: markApproved,
	}, ""
}

func (e *Engine) stageLine(snap LineSnapshot, in Input, rowKey string, newDevice, newOverall types.Quantity) *LineMutation {
	line := &LineMutation{
		RowKey:     rowKey,
		Insert:     snap.IsNewLine(),
		GoodID:     snap.GoodID,
		PropertyID: snap.PropertyID,
		SeriesID:   snap.SeriesID,
		UnitID:     snap.UnitID,
		Delta:      snap.Ratio,
	}

	switch {
	case e.caps.Addressed:
		// Cell lines belong to one device; no device/overall split.
		line.Mode = WriteOverwrite
		line.Quantity = newOverall
		line.DeviceQtty = newOverall
		if in.Location != nil {
			line.CellID = in.Location.CellID
			line.TableType = in.Location.TableType
		}
	case in.Policy.GroupScan:
		line.Mode = WriteIncrement
		line.Quantity = newOverall
		line.DeviceQtty = newDevice
	default:
		line.Mode = WriteOverwrite
		line.Quantity = newDevice
		line.DeviceQtty = newDevice
	}
	return line
}

func reject(kind Kind, rowKey string) Result {
	return Result{Kind: kind, Description: Describe(kind), RowKey: rowKey}
}
