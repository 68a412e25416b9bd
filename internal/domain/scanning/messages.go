package scanning

import (
	"fmt"

	"scanflow/internal/core/types"
)

var descriptions = map[Kind]string{
	KindInvalidBarcode:     "Barcode is not recognized",
	KindNotFound:           "Item not found",
	KindMarkNotFound:       "Marking code is not listed in the document",
	KindNotValidBarcode:    "Scan the marking code, not the product barcode",
	KindMarkAlreadyScanned: "Marking code has already been scanned",
	KindZeroPlanError:      "Item is not listed in the document",
	KindUseSeries:          "Select a series for this item",
	KindSuccessBarcode:     "Barcode accepted",
	KindSuccessMark:        "Marking code accepted",
}

// Describe returns the operator message for k.
func Describe(k Kind) string {
	return descriptions[k]
}

// describePlanReached names the quantity that would have exceeded the plan.
func describePlanReached(ratio types.Quantity) string {
	return fmt.Sprintf("Quantity plan reached, %s more cannot be added", ratio)
}
