// Package memory is an in-process HistoryExporter used by tests and by
// deployments without a configured spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"scadenze/internal/core"
)

type ExportedRow struct {
	Entry       core.PaymentHistoryEntry
	PaymentName string
}

type Exporter struct {
	mu   sync.Mutex
	rows []ExportedRow
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) AppendHistoryEntry(_ context.Context, entry core.PaymentHistoryEntry, paymentName string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rows = append(e.rows, ExportedRow{Entry: entry, PaymentName: paymentName})
	return fmt.Sprintf("row-%d", len(e.rows)), nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []ExportedRow {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]ExportedRow(nil), e.rows...)
}
