package shopping

import "github.com/dukerupert/grocerycalc/internal/model"

// Mode is which input surface is active. At most one is open at a time.
type Mode string

const (
	ModeHidden   Mode = "hidden"
	ModeAddModal Mode = "add_modal"
	ModeScanner  Mode = "scanner"
)

// ScannedProduct is a lookup result waiting to be confirmed in the add modal.
type ScannedProduct struct {
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
}

// UIState is the add/edit modal and scanner selection.
type UIState struct {
	ModalOpen   bool               `json:"modal_open"`
	ScannerOpen bool               `json:"scanner_open"`
	EditingItem *model.GroceryItem `json:"editing_item"`
	Scanned     *ScannedProduct    `json:"scanned_product"`
}

// Mode derives the active surface from the flags.
func (u UIState) Mode() Mode {
	switch {
	case u.ModalOpen:
		return ModeAddModal
	case u.ScannerOpen:
		return ModeScanner
	default:
		return ModeHidden
	}
}

func (u UIState) clone() UIState {
	if u.EditingItem != nil {
		item := *u.EditingItem
		u.EditingItem = &item
	}
	if u.Scanned != nil {
		p := *u.Scanned
		u.Scanned = &p
	}
	return u
}

func (u *UIState) closeModal() {
	u.ModalOpen = false
	u.EditingItem = nil
	u.Scanned = nil
}

// UI returns the current modal and scanner state.
func (e *Engine) UI() UIState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ui.clone()
}

// OpenAddModal opens the modal for a new item.
func (e *Engine) OpenAddModal() {
	e.setUI(UIState{ModalOpen: true}, "add_modal_opened")
}

// OpenEditModal opens the modal to edit item.
func (e *Engine) OpenEditModal(item model.GroceryItem) {
	e.setUI(UIState{ModalOpen: true, EditingItem: &item}, "edit_modal_opened")
}

// OpenAddModalWithScan closes the scanner and opens the add modal prefilled
// with a looked-up product.
func (e *Engine) OpenAddModalWithScan(name, barcode string) {
	e.setUI(UIState{
		ModalOpen: true,
		Scanned:   &ScannedProduct{Name: name, Barcode: barcode},
	}, "scan_modal_opened")
}

// CloseModal hides the modal and clears the editing and scanned selection.
func (e *Engine) CloseModal() {
	e.setUI(UIState{}, "modal_closed")
}

// OpenScanner shows the scanner and hides the modal.
func (e *Engine) OpenScanner() {
	e.setUI(UIState{ScannerOpen: true}, "scanner_opened")
}

func (e *Engine) CloseScanner() {
	e.setUI(UIState{}, "scanner_closed")
}

func (e *Engine) setUI(u UIState, action string) {
	e.mu.Lock()
	e.ui = u
	e.mu.Unlock()
	e.notify(Change{Entity: "ui", Action: action})
}
