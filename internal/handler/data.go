package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grocerycalc/internal/backup"
	"github.com/dukerupert/grocerycalc/internal/shopping"
	"github.com/dukerupert/grocerycalc/internal/storage"
)

// Persistence is the part of storage.Gateway the data handler needs.
type Persistence interface {
	Store() storage.Store
	Flush(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// DataHandler serves scanning, encrypted export and import, and the full
// reset.
type DataHandler struct {
	lookup shopping.ProductLookup
	data   Persistence
	logger *slog.Logger
}

func NewDataHandler(lookup shopping.ProductLookup, data Persistence, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{lookup: lookup, data: data, logger: logger}
}

type scanRequest struct {
	Barcode string `json:"barcode"`
}

type scanResponse struct {
	shopping.ScanResult
	Error string `json:"error,omitempty"`
}

// Scan looks up a barcode. Lookup failures answer 502 so the client can
// offer a retry; a product that is not in the database is a normal 200.
func (h *DataHandler) Scan(w http.ResponseWriter, r *http.Request) {
	e, err := shopping.FromContext(r.Context())
	if err != nil {
		h.logger.Error("no engine on request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "shopping state unavailable")
		return
	}
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := shopping.NewScanner(e, h.lookup).Scan(r.Context(), req.Barcode)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, scanResponse{ScanResult: res, Error: "product lookup failed, try again"})
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{ScanResult: res})
}

type exportRequest struct {
	Passphrase string `json:"passphrase"`
}

// Export answers with the sealed backup as an attachment.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	// The store lags the engine until the writer catches up.
	if err := h.data.Flush(r.Context()); err != nil {
		h.logger.Error("flush before export", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	data, err := backup.Export(r.Context(), h.data.Store(), req.Passphrase)
	if err != nil {
		h.logger.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := fmt.Sprintf("grocerycalc-%s.bak", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type importRequest struct {
	Passphrase string `json:"passphrase"`
	Data       []byte `json:"data"`
}

// Import replaces the stored list and history with a backup and reloads
// the engine from it.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	e, err := shopping.FromContext(r.Context())
	if err != nil {
		h.logger.Error("no engine on request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "shopping state unavailable")
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err = e.Restore(r.Context(), func(ctx context.Context) error {
		return backup.Import(ctx, h.data.Store(), req.Data, req.Passphrase)
	})
	switch {
	case err == nil:
		h.logger.Info("backup imported")
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, backup.ErrBadPassphrase), errors.Is(err, backup.ErrTooShort):
		writeError(w, http.StatusBadRequest, "wrong passphrase or corrupted backup")
	case errors.Is(err, backup.ErrInvalidBackup), errors.Is(err, backup.ErrUnsupportedVersion):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
	}
}

// DeleteAll removes the stored list and history and resets the engine.
func (h *DataHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	e, err := shopping.FromContext(r.Context())
	if err != nil {
		h.logger.Error("no engine on request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "shopping state unavailable")
		return
	}
	if err := e.Restore(r.Context(), h.data.ClearAll); err != nil {
		h.logger.Error("clear data failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear data")
		return
	}
	h.logger.Info("all data cleared")
	w.WriteHeader(http.StatusNoContent)
}
