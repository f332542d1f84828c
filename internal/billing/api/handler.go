package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-hotel/internal/access"
	"ms-hotel/internal/auth"
	"ms-hotel/internal/billing"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/utils"
)

type Handler struct {
	BillingService *billing.BillingService
	Policy         *access.Policy
	Logger         *logger.Logger
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

func invoiceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "invoiceId"), 10, 64)
}

// CreateInvoice opens an invoice for a booking at its current total.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	var req struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.BillingService.CreateInvoice(req.BookingID)
	if err != nil {
		writeError(w, "could not create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("invoice created", invoice))
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	invoice, err := h.BillingService.GetInvoice(id)
	if err != nil {
		writeError(w, "invoice not found", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("invoice", invoice))
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	invoices, err := h.BillingService.ListInvoices()
	if err != nil {
		writeError(w, "could not list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("invoices", invoices))
}

func (h *Handler) ApplyTax(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	var req models.TaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.BillingService.ApplyTax(id, req.RatePercent)
	if err != nil {
		writeError(w, "could not apply tax", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("tax applied", invoice))
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	var req models.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.BillingService.Pay(id, req.Amount)
	if err != nil {
		writeError(w, "could not record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("payment recorded", invoice))
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBilling) {
		return
	}

	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	payments, err := h.BillingService.Payments(id)
	if err != nil {
		writeError(w, "could not list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("payments", payments))
}
