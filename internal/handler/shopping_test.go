package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceAcceptsNumbersAndText(t *testing.T) {
	h := NewShoppingHandler(nil, nil)
	tests := []struct {
		raw  string
		want string
	}{
		{`65.5`, "65.5"},
		{`"65.50"`, "65.5"},
		{`"₱1,234.50"`, "1234.5"},
		{`" 30 "`, "30"},
		{`"abc"`, "0"},
		{`""`, "0"},
		{`null`, "0"},
		{``, "0"},
	}
	for _, tt := range tests {
		got := h.price(json.RawMessage(tt.raw))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("price(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestHandlersWithoutEngineFail(t *testing.T) {
	h := NewShoppingHandler(nil, nil)
	handlers := map[string]http.HandlerFunc{
		"state":     h.GetState,
		"create":    h.CreateItem,
		"save trip": h.SaveTrip,
		"trips":     h.ListTrips,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{}`)))
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
		})
	}
}

func TestDataHandlersWithoutEngineFail(t *testing.T) {
	h := NewDataHandler(nil, nil, nil)
	for name, fn := range map[string]http.HandlerFunc{"scan": h.Scan, "import": h.Import, "delete": h.DeleteAll} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{}`)))
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
		})
	}
}
