package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-hotel/internal/access"
	"ms-hotel/internal/auth"
	"ms-hotel/internal/inventory"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/utils"
)

type Handler struct {
	Ledger *inventory.Ledger
	Policy *access.Policy
	Logger *logger.Logger
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, section access.Section) bool {
	session := auth.SessionFrom(r.Context())
	if err := h.Policy.Authorize(session, section); err != nil {
		h.Logger.LogSecurity("DENIED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
		writeError(w, "access denied", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, resp utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, utils.HTTPStatus(err), utils.FailureResponse(message, err))
}

// AddStock registers an item or tops up an existing one.
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionInventory) {
		return
	}

	var req models.AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Ledger.Add(req.Name, req.Quantity)
	if err != nil {
		writeError(w, "could not add stock", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("stock added", item))
}

func (h *Handler) ConsumeStock(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionInventory) {
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	var req models.ConsumeStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Ledger.Consume(itemID, req.Quantity)
	if err != nil {
		writeError(w, "could not consume stock", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("stock consumed", item))
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionInventory) {
		return
	}

	items, err := h.Ledger.ListItems()
	if err != nil {
		writeError(w, "could not list items", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("items", items))
}

// LowStockReport lists items at or below the threshold (default 5).
func (h *Handler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionReports) {
		return
	}

	threshold := 5
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid threshold: "+err.Error(), http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	items, err := h.Ledger.LowStockReport(threshold)
	if err != nil {
		writeError(w, "could not build low stock report", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("low stock", items))
}

func (h *Handler) UsageReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionReports) {
		return
	}

	usage, err := h.Ledger.UsageReport()
	if err != nil {
		writeError(w, "could not build usage report", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("usage", usage))
}
