// Package handler exposes the shopping engine as a JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/grocery"
	"github.com/dukerupert/grocerycalc/internal/model"
	"github.com/dukerupert/grocerycalc/internal/money"
	"github.com/dukerupert/grocerycalc/internal/shopping"
)

// ShoppingHandler serves the list, trips and modal state. The engine is
// taken from the request context.
type ShoppingHandler struct {
	format *money.Formatter
	logger *slog.Logger
}

func NewShoppingHandler(format *money.Formatter, logger *slog.Logger) *ShoppingHandler {
	if format == nil {
		format = money.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShoppingHandler{format: format, logger: logger}
}

type itemView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"price_formatted"`
	PriceInput     string          `json:"price_input"`
	Barcode        model.Barcode   `json:"barcode"`
	Category       string          `json:"category"`
	CreatedAt      time.Time       `json:"created_at"`
}

type uiView struct {
	Mode        shopping.Mode            `json:"mode"`
	ModalOpen   bool                     `json:"modal_open"`
	ScannerOpen bool                     `json:"scanner_open"`
	EditingItem *itemView                `json:"editing_item"`
	Scanned     *shopping.ScannedProduct `json:"scanned_product"`
}

type stateView struct {
	Items          []itemView      `json:"items"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	UI             uiView          `json:"ui"`
}

type tripSummary struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	DateFormatted  string          `json:"date_formatted"`
	Age            string          `json:"age"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
}

type categoryView struct {
	grocery.CategoryTotal
	TotalFormatted string `json:"total_formatted"`
}

type tripDetail struct {
	tripSummary
	DateTimeFormatted string         `json:"date_time_formatted"`
	Items             []itemView     `json:"items"`
	Breakdown         []categoryView `json:"breakdown"`
}

func (h *ShoppingHandler) item(i model.GroceryItem) itemView {
	return itemView{
		ID:             i.ID,
		Name:           i.Name,
		Price:          i.Price,
		PriceFormatted: h.format.FormatCurrency(i.Price),
		PriceInput:     h.format.FormatInputValue(i.Price),
		Barcode:        i.Barcode,
		Category:       grocery.Categorize(i.Name),
		CreatedAt:      i.CreatedAt,
	}
}

func (h *ShoppingHandler) items(items []model.GroceryItem) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = h.item(item)
	}
	return out
}

func (h *ShoppingHandler) ui(u shopping.UIState) uiView {
	v := uiView{
		Mode:        u.Mode(),
		ModalOpen:   u.ModalOpen,
		ScannerOpen: u.ScannerOpen,
		Scanned:     u.Scanned,
	}
	if u.EditingItem != nil {
		item := h.item(*u.EditingItem)
		v.EditingItem = &item
	}
	return v
}

func (h *ShoppingHandler) state(s shopping.State) stateView {
	return stateView{
		Items:          h.items(s.Items),
		ItemCount:      s.ItemCount,
		Total:          s.Total,
		TotalFormatted: h.format.FormatCurrency(s.Total),
		UI:             h.ui(s.UI),
	}
}

func (h *ShoppingHandler) summary(t model.ShoppingTrip) tripSummary {
	return tripSummary{
		ID:             t.ID,
		Date:           t.Date,
		DateFormatted:  h.format.FormatDate(t.Date),
		Age:            h.format.FormatRelative(t.Date),
		ItemCount:      t.ItemCount(),
		Total:          t.Total,
		TotalFormatted: h.format.FormatCurrency(t.Total),
	}
}

func (h *ShoppingHandler) detail(t model.ShoppingTrip) tripDetail {
	breakdown := grocery.Breakdown(t.Items)
	cats := make([]categoryView, len(breakdown))
	for i, ct := range breakdown {
		cats[i] = categoryView{CategoryTotal: ct, TotalFormatted: h.format.FormatCurrency(ct.Total)}
	}
	return tripDetail{
		tripSummary:       h.summary(t),
		DateTimeFormatted: h.format.FormatDateTime(t.Date),
		Items:             h.items(t.Items),
		Breakdown:         cats,
	}
}

// engine fetches the request's engine or answers 500.
func (h *ShoppingHandler) engine(w http.ResponseWriter, r *http.Request) (*shopping.Engine, bool) {
	e, err := shopping.FromContext(r.Context())
	if err != nil {
		h.logger.Error("no engine on request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "shopping state unavailable")
		return nil, false
	}
	return e, true
}

func (h *ShoppingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.state(e.Snapshot()))
}

type itemRequest struct {
	Name    string          `json:"name"`
	Price   json.RawMessage `json:"price"`
	Barcode *string         `json:"barcode"`
}

// price accepts the amount as a JSON number or as typed text such as
// "₱1,234.50".
func (h *ShoppingHandler) price(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		text = s
	}
	return h.format.ParseCurrencyInput(text)
}

func (h *ShoppingHandler) decodeItem(w http.ResponseWriter, r *http.Request) (itemRequest, decimal.Decimal, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return req, decimal.Zero, false
	}
	price := h.price(req.Price)
	if !price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be greater than zero")
		return req, decimal.Zero, false
	}
	return req, price, true
}

func (h *ShoppingHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	req, price, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	var barcode model.Barcode
	if req.Barcode != nil {
		barcode = model.NewBarcode(*req.Barcode)
	}

	item := e.AddItem(req.Name, price, barcode)
	writeJSON(w, http.StatusCreated, h.item(item))
}

func (h *ShoppingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	req, price, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := e.UpdateItemStrict(r.PathValue("id"), req.Name, price)
	if errors.Is(err, shopping.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, h.item(item))
}

func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	if err := e.DeleteItemStrict(r.PathValue("id")); errors.Is(err, shopping.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) ClearItems(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.ClearAllItems()
	w.WriteHeader(http.StatusNoContent)
}

// SaveTrip answers 204 when the list is empty.
func (h *ShoppingHandler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	trip, saved := e.SaveTrip()
	if !saved {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, h.detail(trip))
}

func (h *ShoppingHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	history := e.History()
	out := make([]tripSummary, len(history))
	for i, t := range history {
		out[i] = h.summary(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ShoppingHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	trip, found := e.Trip(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, h.detail(trip))
}

type uiRequest struct {
	ID string `json:"id"`
}

// UIAction applies one modal or scanner transition and returns the new UI
// state.
func (h *ShoppingHandler) UIAction(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}

	switch r.PathValue("action") {
	case "open-add":
		e.OpenAddModal()
	case "open-edit":
		var req uiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		item, found := findItem(e.Items(), req.ID)
		if !found {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		e.OpenEditModal(item)
	case "close-modal":
		e.CloseModal()
	case "open-scanner":
		e.OpenScanner()
	case "close-scanner":
		e.CloseScanner()
	case "enter-manually":
		e.OpenAddModal()
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	writeJSON(w, http.StatusOK, h.ui(e.UI()))
}

func findItem(items []model.GroceryItem, id string) (model.GroceryItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return model.GroceryItem{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
