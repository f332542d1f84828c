package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-hotel/internal/access"
	"ms-hotel/internal/auth"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/services"
	"ms-hotel/internal/utils"
)

type Handler struct {
	Processor *services.Processor
	Policy    *access.Policy
	Logger    *logger.Logger
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

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionServices) {
		return
	}

	var service models.Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Processor.AddService(&service); err != nil {
		writeError(w, "could not create service", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("service created", service))
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionServices) {
		return
	}

	list, err := h.Processor.ListServices()
	if err != nil {
		writeError(w, "could not list services", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("services", list))
}

// SetRecipe binds a service to the inventory item it consumes per unit.
func (h *Handler) SetRecipe(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionServices) {
		return
	}

	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid service id", http.StatusBadRequest)
		return
	}

	var req struct {
		ItemID int64 `json:"item_id"`
		Units  int   `json:"units"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Processor.SetRecipe(serviceID, req.ItemID, req.Units); err != nil {
		writeError(w, "could not set recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("recipe set", req))
}

// AttachToBooking charges a service to a booking and deducts stock per
// the service recipe.
func (h *Handler) AttachToBooking(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionServices) {
		return
	}

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var req models.ServiceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Processor.Attach(bookingID, req.ServiceID, req.Quantity)
	if err != nil {
		writeError(w, "could not attach service", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("service attached", order))
}

func (h *Handler) OrdersForBooking(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionServices) {
		return
	}

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	orders, err := h.Processor.OrdersForBooking(bookingID)
	if err != nil {
		writeError(w, "could not list service orders", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("service orders", orders))
}

func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionReports) {
		return
	}

	revenue, err := h.Processor.Revenue()
	if err != nil {
		writeError(w, "could not compute revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("revenue", map[string]interface{}{
		"service_revenue": revenue,
	}))
}
