package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-hotel/internal/access"
	"ms-hotel/internal/auth"
	"ms-hotel/internal/booking"
	"ms-hotel/internal/booking/qr"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/utils"
)

type Handler struct {
	BookingService *booking.BookingService
	Policy         *access.Policy
	Passes         *qr.PassGenerator
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

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ---------------- ROOMS ----------------

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	var room models.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.BookingService.AddRoom(&room); err != nil {
		writeError(w, "could not create room", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("room created", room))
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	rooms, err := h.BookingService.ListRooms()
	if err != nil {
		writeError(w, "could not list rooms", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("rooms", rooms))
}

// RoomAvailability reports whether a room is free for the given window.
// Query params: start (RFC3339, required), end (RFC3339, optional).
func (h *Handler) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	roomID, err := pathID(r, "roomId")
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid start time: "+err.Error(), http.StatusBadRequest)
		return
	}
	end := start
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid end time: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	available, err := h.BookingService.IsAvailable(roomID, start, end)
	if err != nil {
		writeError(w, "could not check availability", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("availability", map[string]interface{}{
		"room_id":   roomID,
		"available": available,
	}))
}

// PreviewPrice returns the dynamic nightly rate for a room.
// Query params: weekend (bool), season_factor (float, default 1.0).
func (h *Handler) PreviewPrice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	roomID, err := pathID(r, "roomId")
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	weekend := r.URL.Query().Get("weekend") == "true"
	seasonFactor := 1.0
	if raw := r.URL.Query().Get("season_factor"); raw != "" {
		seasonFactor, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid season factor: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	price, err := h.BookingService.PreviewPrice(roomID, weekend, seasonFactor)
	if err != nil {
		writeError(w, "could not preview price", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("price preview", map[string]interface{}{
		"room_id": roomID,
		"price":   price,
	}))
}

// ---------------- MAINTENANCE ----------------

// ReportMaintenance flags a room for repair; it stays out of the bookable
// pool until the issue is resolved.
func (h *Handler) ReportMaintenance(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	roomID, err := pathID(r, "roomId")
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	var req models.MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Issue == "" {
		http.Error(w, "issue is required", http.StatusBadRequest)
		return
	}

	issue, err := h.BookingService.ReportMaintenance(roomID, req.Issue)
	if err != nil {
		writeError(w, "could not report maintenance", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("maintenance reported", issue))
}

func (h *Handler) ResolveMaintenance(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	issueID, err := pathID(r, "issueId")
	if err != nil {
		http.Error(w, "Invalid issue id", http.StatusBadRequest)
		return
	}

	issue, err := h.BookingService.ResolveMaintenance(issueID)
	if err != nil {
		writeError(w, "could not resolve maintenance", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("maintenance resolved", issue))
}

func (h *Handler) OpenMaintenance(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionRooms) {
		return
	}

	issues, err := h.BookingService.OpenMaintenance()
	if err != nil {
		writeError(w, "could not list maintenance issues", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("open maintenance issues", issues))
}

// ---------------- CUSTOMERS ----------------

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionCustomers) {
		return
	}

	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.BookingService.AddCustomer(&customer); err != nil {
		writeError(w, "could not create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("customer created", customer))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionCustomers) {
		return
	}

	customers, err := h.BookingService.ListCustomers()
	if err != nil {
		writeError(w, "could not list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("customers", customers))
}

// ---------------- BOOKINGS ----------------

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.BookingService.Create(req)
	if err != nil {
		writeError(w, "could not create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("booking created", created))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	id, err := pathID(r, "bookingId")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.BookingService.GetBooking(id)
	if err != nil {
		writeError(w, "booking not found", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("booking", b))
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	bookings, err := h.BookingService.ListBookings()
	if err != nil {
		writeError(w, "could not list bookings", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("bookings", bookings))
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	id, err := pathID(r, "bookingId")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.BookingService.CheckIn(id)
	if err != nil {
		writeError(w, "could not check in", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("checked in", b))
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	id, err := pathID(r, "bookingId")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.BookingService.CheckOut(id)
	if err != nil {
		writeError(w, "could not check out", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("checked out", b))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	id, err := pathID(r, "bookingId")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var req models.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	cancellation, err := h.BookingService.Cancel(id, req.Reason)
	if err != nil {
		writeError(w, "could not cancel booking", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("booking cancelled", cancellation))
}

// CheckInPass renders the booking as an encrypted QR image for the
// front-desk scan station.
func (h *Handler) CheckInPass(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	id, err := pathID(r, "bookingId")
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.BookingService.GetBooking(id)
	if err != nil {
		writeError(w, "booking not found", err)
		return
	}

	png, err := h.Passes.GenerateEncryptedPass(*b)
	if err != nil {
		writeError(w, "could not generate pass", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// VerifyPass decrypts a scanned pass and confirms it matches a live
// booking. The scan station sends the raw pass payload; the scanner's
// identity comes from the bearer token and is logged with the result.
func (h *Handler) VerifyPass(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionBookings) {
		return
	}

	var req struct {
		EncryptedPass string `json:"encrypted_pass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.EncryptedPass == "" {
		http.Error(w, "encrypted_pass is required", http.StatusBadRequest)
		return
	}

	tokenString, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		http.Error(w, "Authorization required: "+err.Error(), http.StatusUnauthorized)
		return
	}
	scanner, err := auth.SessionFromJWT(tokenString)
	if err != nil {
		http.Error(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
		return
	}

	pass, err := h.Passes.DecryptPass(req.EncryptedPass)
	if err != nil {
		http.Error(w, "Invalid pass: "+err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.BookingService.GetBooking(pass.ID)
	if err != nil {
		writeError(w, "booking not found", err)
		return
	}

	valid := b.Status.Active()
	h.Logger.LogSecurity("PASS_SCAN", fmt.Sprintf("booking %d scanned by %s: valid=%t", b.ID, scanner.Username, valid))

	writeJSON(w, http.StatusOK, utils.SuccessResponse("pass verified", map[string]interface{}{
		"booking_id": b.ID,
		"status":     b.Status,
		"valid":      valid,
	}))
}

// ---------------- REPORTS ----------------

func (h *Handler) OccupancyReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionReports) {
		return
	}

	rate, err := h.BookingService.OccupancyRate()
	if err != nil {
		writeError(w, "could not compute occupancy", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("occupancy", map[string]interface{}{
		"occupancy_rate": rate,
	}))
}

func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.SectionReports) {
		return
	}

	revenue, err := h.BookingService.Revenue()
	if err != nil {
		writeError(w, "could not compute revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("revenue", map[string]interface{}{
		"booking_revenue": revenue,
	}))
}
