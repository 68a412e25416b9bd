package scanning

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanflow/internal/core/types"
	"scanflow/internal/domain/barcode"
)

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

const markScan = "0104601234567893" + barcode.GroupSeparator + "21ABC123" + barcode.GroupSeparator + "93dGVz"

func testEngine(caps Capabilities) *Engine {
	n := 0
	e := NewEngine(caps)
	e.newKey = func() string {
		n++
		return fmt.Sprintf("key-%d", n)
	}
	e.now = func() time.Time { return fixedNow }
	return e
}

func qty(n int64) types.Quantity { return types.NewQuantity(n) }

func existingLine() *LineSnapshot {
	return &LineSnapshot{
		GoodID:      "good-1",
		UnitID:      "pcs",
		Ratio:       qty(1),
		RowKey:      "row-1",
		DeviceQtty:  qty(2),
		OverallQtty: qty(3),
		PlanQtty:    qty(10),
	}
}

func input(raw string, snap *LineSnapshot, p Policy) Input {
	return Input{
		DocumentID: "doc-1",
		DeviceID:   "tsd-1",
		Identity:   barcode.Decode(raw),
		Snapshot:   snap,
		Policy:     p,
	}
}

func TestEvaluate_InvalidBarcode(t *testing.T) {
	res := testEngine(Standard).Evaluate(input("0104601234567893"+barcode.GroupSeparator+"99", existingLine(), Policy{}))

	assert.Equal(t, KindInvalidBarcode, res.Kind)
	assert.Equal(t, KindInvalidBarcode, res.Failure())
	assert.True(t, res.Staged.Empty())
	assert.Equal(t, Describe(KindInvalidBarcode), res.Description)
}

func TestEvaluate_NotFound(t *testing.T) {
	res := testEngine(Standard).Evaluate(input("2000000058177", nil, Policy{}))

	assert.Equal(t, KindNotFound, res.Kind)
	assert.True(t, res.Staged.Empty())
}

func TestEvaluate_UseSeries(t *testing.T) {
	snap := existingLine()
	snap.UseSeries = true

	res := testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{}))

	assert.Equal(t, KindUseSeries, res.Kind)
	assert.True(t, res.Staged.Empty())
}

func TestEvaluate_SuccessBarcode(t *testing.T) {
	res := testEngine(Standard).Evaluate(input("2000000058177", existingLine(), Policy{}))

	require.Equal(t, KindSuccessBarcode, res.Kind)
	assert.Empty(t, res.Failure())
	assert.Equal(t, "row-1", res.RowKey)
	assert.Nil(t, res.Staged.Mark)
	assert.Nil(t, res.Staged.Queue)
	require.NotNil(t, res.Staged.Line)
	assert.Equal(t, LineMutation{
		RowKey:     "row-1",
		Mode:       WriteOverwrite,
		GoodID:     "good-1",
		UnitID:     "pcs",
		Quantity:   qty(3),
		DeviceQtty: qty(3),
		Delta:      qty(1),
	}, *res.Staged.Line)
}

func TestEvaluate_Marks(t *testing.T) {
	marked := func(mutate func(*LineSnapshot)) *LineSnapshot {
		s := existingLine()
		s.UseMark = true
		if mutate != nil {
			mutate(s)
		}
		return s
	}
	policy := Policy{UseMark: true, Control: true}

	t.Run("plain barcode for marked item", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input("2000000058177", marked(nil), policy))

		assert.Equal(t, KindNotValidBarcode, res.Kind)
		assert.True(t, res.Staged.Empty())
	})

	t.Run("approve declared mark", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input(markScan, marked(func(s *LineSnapshot) { s.MarkID = "mark-9" }), policy))

		require.Equal(t, KindSuccessMark, res.Kind)
		assert.Equal(t, &MarkMutation{ID: "mark-9", RowKey: "row-1", Approved: "1"}, res.Staged.Mark)
		assert.NotNil(t, res.Staged.Line)
	})

	t.Run("undeclared mark under enforced plan", func(t *testing.T) {
		p := policy
		p.HaveMarkPlan = true

		res := testEngine(Standard).Evaluate(input(markScan, marked(nil), p))

		assert.Equal(t, KindMarkNotFound, res.Kind)
		assert.True(t, res.Staged.Empty())
	})

	t.Run("undeclared mark without plan", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input(markScan, marked(nil), policy))

		require.Equal(t, KindSuccessMark, res.Kind)
		require.NotNil(t, res.Staged.Mark)
		assert.True(t, res.Staged.Mark.IsNew())
		assert.Equal(t, "04601234567893", res.Staged.Mark.GTIN)
		assert.Equal(t, "ABC123", res.Staged.Mark.Serial)
		assert.Equal(t, "1", res.Staged.Mark.Approved)
	})

	t.Run("mark plan not enforced without control", func(t *testing.T) {
		p := Policy{UseMark: true, HaveMarkPlan: true}

		res := testEngine(Standard).Evaluate(input(markScan, marked(nil), p))

		assert.Equal(t, KindSuccessMark, res.Kind)
	})

	t.Run("marks disabled by policy", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input("2000000058177", marked(nil), Policy{}))

		assert.Equal(t, KindSuccessBarcode, res.Kind)
		assert.Nil(t, res.Staged.Mark)
	})

	t.Run("address storage skips marks", func(t *testing.T) {
		in := input("2000000058177", marked(nil), policy)
		in.Location = &Location{CellID: "A-01", TableType: TableIn}

		res := testEngine(AddressStorage).Evaluate(in)

		assert.Equal(t, KindSuccessBarcode, res.Kind)
		assert.Nil(t, res.Staged.Mark)
	})

	t.Run("quantity violation drops staged mark", func(t *testing.T) {
		p := policy
		p.HaveQttyPlan = true
		snap := marked(func(s *LineSnapshot) { s.MarkID = "mark-9"; s.PlanQtty = qty(3) })

		res := testEngine(Standard).Evaluate(input(markScan, snap, p))

		assert.Equal(t, KindQuantityPlanReached, res.Kind)
		assert.True(t, res.Staged.Empty())
	})
}

func TestEvaluate_MarkAlreadyScannedIsIdempotent(t *testing.T) {
	snap := existingLine()
	snap.UseMark = true
	snap.MarkID = "mark-9"
	snap.MarkApproved = true
	engine := testEngine(Standard)
	in := input(markScan, snap, Policy{UseMark: true})

	first := engine.Evaluate(in)
	second := engine.Evaluate(in)

	for _, res := range []Result{first, second} {
		assert.Equal(t, KindMarkAlreadyScanned, res.Kind)
		assert.True(t, res.Staged.Empty())
	}
}

func TestEvaluate_QuantityPlanBoundary(t *testing.T) {
	snap := &LineSnapshot{
		GoodID:      "good-1",
		RowKey:      "row-1",
		Ratio:       qty(10),
		DeviceQtty:  qty(1),
		OverallQtty: qty(1),
		PlanQtty:    qty(5),
	}

	t.Run("plan enforced", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{HaveQttyPlan: true, Control: true}))

		assert.Equal(t, KindQuantityPlanReached, res.Kind)
		assert.Contains(t, res.Description, "10")
		assert.True(t, res.Staged.Empty())
	})

	t.Run("no plan", func(t *testing.T) {
		res := testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{Control: true}))

		require.Equal(t, KindSuccessBarcode, res.Kind)
		require.NotNil(t, res.Staged.Line)
		assert.Equal(t, qty(11), res.Staged.Line.Quantity)
	})

	t.Run("exactly at plan is allowed", func(t *testing.T) {
		s := *snap
		s.PlanQtty = qty(11)

		res := testEngine(Standard).Evaluate(input("2000000058177", &s, Policy{HaveQttyPlan: true, Control: true}))

		assert.Equal(t, KindSuccessBarcode, res.Kind)
	})
}

func TestEvaluate_PlanUsesMaxOfDeviceAndOverall(t *testing.T) {
	p := Policy{HaveQttyPlan: true, Control: true}

	device := existingLine()
	device.DeviceQtty, device.OverallQtty, device.PlanQtty = qty(9), qty(0), qty(9)
	assert.Equal(t, KindQuantityPlanReached, testEngine(Standard).Evaluate(input("2000000058177", device, p)).Kind)

	overall := existingLine()
	overall.DeviceQtty, overall.OverallQtty, overall.PlanQtty = qty(0), qty(9), qty(9)
	assert.Equal(t, KindQuantityPlanReached, testEngine(Standard).Evaluate(input("2000000058177", overall, p)).Kind)
}

// Open question: the plan is not checked when the scan creates the line,
// even if the first scan alone exceeds it.
func TestEvaluate_NewLineSkipsQuantityPlan(t *testing.T) {
	snap := &LineSnapshot{GoodID: "good-1", Ratio: qty(10), PlanQtty: qty(5)}

	res := testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{HaveQttyPlan: true, Control: true}))

	require.Equal(t, KindSuccessBarcode, res.Kind)
	assert.Equal(t, "key-1", res.RowKey)
	assert.True(t, res.Staged.Line.Insert)
	assert.Equal(t, qty(10), res.Staged.Line.Quantity)
}

func TestEvaluate_ZeroPlan(t *testing.T) {
	snap := &LineSnapshot{GoodID: "good-1", Ratio: qty(1)}

	res := testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{HaveZeroPlan: true, Control: true}))
	assert.Equal(t, KindZeroPlanError, res.Kind)
	assert.True(t, res.Staged.Empty())

	res = testEngine(Standard).Evaluate(input("2000000058177", snap, Policy{HaveZeroPlan: true}))
	assert.Equal(t, KindSuccessBarcode, res.Kind)

	res = testEngine(Standard).Evaluate(input("2000000058177", existingLine(), Policy{HaveZeroPlan: true, Control: true}))
	assert.Equal(t, KindSuccessBarcode, res.Kind)
}

func TestEvaluate_ScanningQueue(t *testing.T) {
	snap := &LineSnapshot{GoodID: "good-1", Ratio: qty(6)}

	res := testEngine(Standard).Evaluate(input(markScan, snap, Policy{UseScanningQueue: true}))

	require.Equal(t, KindSuccessBarcode, res.Kind)
	assert.Equal(t, "key-1", res.RowKey)
	assert.Equal(t, &QueueMutation{
		ID:         "key-2",
		DocumentID: "doc-1",
		RowKey:     "key-1",
		DeviceID:   "tsd-1",
		Delta:      qty(6),
		CreatedAt:  fixedNow,
	}, res.Staged.Queue)
	assert.Equal(t, "key-1", res.Staged.Line.RowKey)
}

func TestEvaluate_NewLineSharesRowKeyWithMark(t *testing.T) {
	snap := &LineSnapshot{GoodID: "good-1", Ratio: qty(1), UseMark: true}

	res := testEngine(Standard).Evaluate(input(markScan, snap, Policy{UseMark: true}))

	require.Equal(t, KindSuccessMark, res.Kind)
	assert.Equal(t, "key-1", res.Staged.Mark.RowKey)
	assert.Equal(t, "key-1", res.Staged.Line.RowKey)
}

func TestEvaluate_GroupScanIncrements(t *testing.T) {
	res := testEngine(Standard).Evaluate(input("2000000058177", existingLine(), Policy{GroupScan: true}))

	require.NotNil(t, res.Staged.Line)
	assert.Equal(t, WriteIncrement, res.Staged.Line.Mode)
	assert.Equal(t, qty(4), res.Staged.Line.Quantity)
	assert.Equal(t, qty(3), res.Staged.Line.DeviceQtty)
	assert.Equal(t, qty(1), res.Staged.Line.Delta)
}

func TestEvaluate_AddressStorage(t *testing.T) {
	in := input("2000000058177", existingLine(), Policy{HaveQttyPlan: true, Control: true, GroupScan: true})
	in.Location = &Location{CellID: "A-01-02", TableType: TableOut}

	res := testEngine(AddressStorage).Evaluate(in)

	require.Equal(t, KindSuccessBarcode, res.Kind)
	line := res.Staged.Line
	assert.Equal(t, WriteOverwrite, line.Mode)
	assert.Equal(t, qty(4), line.Quantity)
	assert.Equal(t, qty(4), line.DeviceQtty)
	assert.Equal(t, "A-01-02", line.CellID)
	assert.Equal(t, TableOut, line.TableType)
}

func TestEvaluate_AddressStoragePlanChecks(t *testing.T) {
	snap := existingLine()
	snap.PlanQtty = qty(3)
	in := input("2000000058177", snap, Policy{HaveQttyPlan: true, Control: true})
	in.Location = &Location{CellID: "A-01", TableType: TableIn}

	assert.Equal(t, KindQuantityPlanReached, testEngine(AddressStorage).Evaluate(in).Kind)

	in.Snapshot = &LineSnapshot{GoodID: "good-1", Ratio: qty(1)}
	in.Policy = Policy{HaveZeroPlan: true, Control: true}
	assert.Equal(t, KindZeroPlanError, testEngine(AddressStorage).Evaluate(in).Kind)
}

func TestDescribe_CoversVocabulary(t *testing.T) {
	for _, k := range []Kind{
		KindInvalidBarcode, KindNotFound, KindMarkNotFound, KindNotValidBarcode,
		KindMarkAlreadyScanned, KindZeroPlanError, KindUseSeries,
		KindSuccessBarcode, KindSuccessMark,
	} {
		assert.NotEmpty(t, Describe(k), k)
	}
	assert.Contains(t, describePlanReached(types.Quantity(2500)), "0.25")
}
