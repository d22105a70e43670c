// Package sheets defines the outbound export port for payment history.
package sheets

import (
	"context"

	"scadenze/internal/core"
)

// HistoryExporter appends payment history rows to an external sheet.
type HistoryExporter interface {
	AppendHistoryEntry(ctx context.Context, e core.PaymentHistoryEntry, paymentName string) (rowRef string, err error)
}
