package shopping

import (
	"context"
	"errors"

	"github.com/dukerupert/grocerycalc/internal/lookup"
)

// ScanOutcome is what the scanner screen should show next.
type ScanOutcome string

const (
	// ScanFound opened the add modal prefilled with the product name.
	ScanFound ScanOutcome = "found"
	// ScanNotFound leaves the scanner open and offers manual entry.
	ScanNotFound ScanOutcome = "not_found"
	// ScanFailed leaves the scanner open and offers a retry.
	ScanFailed ScanOutcome = "failed"
)

// ProductLookup resolves a barcode to a product name. lookup.Client
// implements it.
type ProductLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (string, error)
}

// Scanner drives the scan-to-add flow on top of an Engine.
type Scanner struct {
	engine *Engine
	lookup ProductLookup
}

func NewScanner(engine *Engine, lookup ProductLookup) *Scanner {
	return &Scanner{engine: engine, lookup: lookup}
}

// ScanResult is returned by Scan.
type ScanResult struct {
	Outcome ScanOutcome `json:"outcome"`
	Barcode string      `json:"barcode"`
	Name    string      `json:"name,omitempty"`
}

// Scan looks up barcode. On a hit the scanner closes and the add modal opens
// with the product name and barcode filled in. Misses and failures leave the
// scanner open; the returned error carries the cause for failures.
func (s *Scanner) Scan(ctx context.Context, barcode string) (ScanResult, error) {
	if s.engine.UI().Mode() != ModeScanner {
		s.engine.OpenScanner()
	}

	res := ScanResult{Barcode: barcode}
	name, err := s.lookup.LookupBarcode(ctx, barcode)
	switch {
	case err == nil:
		res.Outcome = ScanFound
		res.Name = name
		s.engine.OpenAddModalWithScan(name, barcode)
		return res, nil
	case errors.Is(err, lookup.ErrProductNotFound):
		res.Outcome = ScanNotFound
		return res, nil
	default:
		s.engine.logger.Warn("barcode lookup failed", "barcode", barcode, "error", err)
		res.Outcome = ScanFailed
		return res, err
	}
}

// EnterManually closes the scanner and opens an empty add modal.
func (s *Scanner) EnterManually() {
	s.engine.OpenAddModal()
}
