package service

import (
	"context"
	"fmt"
	"time"
)

// Document number prefixes
const (
	PrefixRequisition   = "REQ"
	PrefixRFQ           = "RFQ"
	PrefixPurchaseOrder = "PO"
	PrefixGoodsReceipt  = "GRN"
	PrefixVendor        = "VND"
)

// generateDocNumber builds a sequential human-readable code like
// REQ-20260828-00042 from a count-by-prefix query. The count+1 scheme is
// not safe against concurrent creators racing on the same prefix; a
// duplicate would surface as a unique-index violation on insert.
func generateDocNumber(ctx context.Context, prefix string, countByPrefix func(context.Context, string) (int64, error)) (string, error) {
	day := time.Now().Format("20060102")
	full := prefix + "-" + day + "-"

	count, err := countByPrefix(ctx, full)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", full, count+1), nil
}
