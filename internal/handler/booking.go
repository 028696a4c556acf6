package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/queue"
	"github.com/frostair/ac-booking/internal/repository"
	"github.com/frostair/ac-booking/internal/schedule"
	queuepublisher "github.com/frostair/ac-booking/internal/service"
)

// BookingHandler exposes the booking surface: public availability
// reads, public booking creation and lookup, and the staff endpoints
// for listing, status updates and technician reassignment.
type BookingHandler struct {
	Availability *schedule.Availability
	Allocator    *schedule.Allocator
	Bookings     *repository.BookingRepo
	Roster       schedule.RosterProvider

	// Publish emits the booking.created event.  Overridable in tests.
	Publish func(context.Context, queue.BookingCreatedEvent) error
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(av *schedule.Availability, al *schedule.Allocator, bookings *repository.BookingRepo, roster schedule.RosterProvider) *BookingHandler {
	if av == nil || al == nil || roster == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		Availability: av,
		Allocator:    al,
		Bookings:     bookings,
		Roster:       roster,
		Publish:      queuepublisher.PublishBookingCreated,
	}
}

// GetTimeSlotAvailability handles GET /v1/bookings/availability/timeslots?date=...
// It returns the slots that still have spare technician capacity on the
// given day together with per-slot booking counts.
func (h *BookingHandler) GetTimeSlotAvailability(c echo.Context) error {
	raw := c.QueryParam("date")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Date is required"})
	}
	date, err := schedule.ParseDate(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date"})
	}
	view, err := h.Availability.AvailableSlots(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error checking availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available_time_slots": view.AvailableSlots,
		"total_technicians":    view.TotalTechnicians,
		"bookings_per_slot":    view.BookingsPerSlot,
	})
}

// GetTechnicianAvailability handles GET /v1/bookings/availability/technicians?date=...&timeSlot=...
// It returns the technicians still free for the exact date and slot.
func (h *BookingHandler) GetTechnicianAvailability(c echo.Context) error {
	rawDate := c.QueryParam("date")
	slot := c.QueryParam("timeSlot")
	if rawDate == "" || slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Date and time slot are required"})
	}
	date, err := schedule.ParseDate(rawDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date"})
	}
	view, err := h.Availability.AvailableTechnicians(c.Request().Context(), date, slot)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown time slot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error checking availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available_technicians": view.AvailableTechnicians,
		"total_technicians":     view.TotalTechnicians,
		"booked_count":          view.BookedCount,
	})
}

type createBookingReq struct {
	ServiceType         string `json:"service_type"`
	MaintenancePlan     string `json:"maintenance_plan"`
	Date                string `json:"date"`
	TimeSlot            string `json:"time_slot"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	Description         string `json:"description"`
	PreferredTechnician string `json:"preferred_technician"`
}

// CreateBooking handles POST /v1/bookings.  Validation failures return
// every offending field; a stale technician choice returns 400 with a
// hint to pick another technician; a fully booked slot returns 400.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Allocator.Create(c.Request().Context(), schedule.CreateInput{
		ServiceType:         req.ServiceType,
		MaintenancePlan:     req.MaintenancePlan,
		Date:                req.Date,
		TimeSlot:            req.TimeSlot,
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		Description:         req.Description,
		PreferredTechnician: req.PreferredTechnician,
	})
	if err != nil {
		var verr *schedule.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": verr.Fields})
		case errors.Is(err, schedule.ErrTechnicianUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": `The selected technician is not available for this time slot. Please choose another technician or select "Any Available".`,
			})
		case errors.Is(err, schedule.ErrNoCapacity):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "No technicians are available for this time slot. Please choose another slot.",
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error during booking creation"})
		}
	}

	h.publishCreated(b)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Booking created successfully",
		"booking": bookingSummary(b),
	})
}

// publishCreated emits the booking.created event.  Publish failures are
// logged and never fail the request; the booking already exists.
func (h *BookingHandler) publishCreated(b *model.Booking) {
	ev := queue.BookingCreatedEvent{
		ReferenceNumber: b.ReferenceNumber,
		ServiceType:     b.ServiceType,
		Date:            b.Date.Format("2006-01-02"),
		TimeSlot:        b.TimeSlot,
		CustomerName:    b.CustomerName,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if b.AssignedTechnicianID != nil {
		ev.TechnicianID = *b.AssignedTechnicianID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("booking: publish created event failed: %v", err)
		}
	}()
}

// ListBookings handles GET /v1/bookings for staff.  Supports status,
// serviceType and date (from) query filters.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	var f repository.ListFilter
	if s := c.QueryParam("status"); s != "" {
		if !model.ValidStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
		}
		f.Status = s
	}
	if s := c.QueryParam("serviceType"); s != "" {
		f.ServiceType = s
	}
	if s := c.QueryParam("date"); s != "" {
		d, err := schedule.ParseDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date"})
		}
		f.DateFrom = d
	}
	bookings, err := h.Bookings.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error fetching bookings"})
	}
	items := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, bookingDetail(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// GetBooking handles GET /v1/bookings/:referenceNumber, the public
// lookup customers use to check their appointment.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	ref := c.Param("referenceNumber")
	b, err := h.Bookings.GetByReference(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error fetching booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": bookingDetail(b)})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/bookings/:id/status for staff.  The
// transition is validated against the workflow state machine; moving a
// booking to cancelled releases its technician's capacity.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
	}

	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error updating booking"})
	}
	if b.Status != req.Status && !model.CanTransition(b.Status, req.Status) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Cannot move booking from " + b.Status + " to " + req.Status,
		})
	}
	if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error updating booking"})
	}
	b.Status = req.Status
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking status updated", "booking": bookingDetail(b)})
}

type assignReq struct {
	TechnicianID uint64 `json:"technician_id"`
}

// AssignTechnician handles PATCH /v1/bookings/:id/assign for staff.
// The technician must be in the current roster; the slot-uniqueness
// constraint rejects a reassignment that would double-book them.
func (h *BookingHandler) AssignTechnician(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.TechnicianID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Technician ID is required"})
	}

	ctx := c.Request().Context()
	techs, err := h.Roster.ListTechnicians(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error assigning technician"})
	}
	inRoster := false
	for _, t := range techs {
		if t.ID == req.TechnicianID {
			inRoster = true
			break
		}
	}
	if !inRoster {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown technician"})
	}

	if err := h.Bookings.AssignTechnician(ctx, id, req.TechnicianID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Technician already booked in this time slot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error assigning technician"})
	}
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error assigning technician"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Technician assigned successfully", "booking": bookingDetail(b)})
}

// bookingSummary is the creation response: just what the customer
// needs to keep.
func bookingSummary(b *model.Booking) echo.Map {
	return echo.Map{
		"reference_number": b.ReferenceNumber,
		"service_type":     b.ServiceType,
		"date":             b.Date.Format("2006-01-02"),
		"time_slot":        b.TimeSlot,
		"status":           b.Status,
	}
}

// bookingDetail is the full staff/lookup view.
func bookingDetail(b *model.Booking) echo.Map {
	m := echo.Map{
		"id":               b.ID,
		"reference_number": b.ReferenceNumber,
		"service_type":     b.ServiceType,
		"maintenance_plan": b.MaintenancePlan,
		"date":             b.Date.Format("2006-01-02"),
		"time_slot":        b.TimeSlot,
		"customer_name":    b.CustomerName,
		"customer_email":   b.CustomerEmail,
		"customer_phone":   b.CustomerPhone,
		"customer_address": b.CustomerAddress,
		"description":      b.Description,
		"status":           b.Status,
		"notes":            b.Notes,
		"created_at":       b.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":       b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if b.AssignedTechnicianID != nil {
		m["assigned_technician_id"] = *b.AssignedTechnicianID
	}
	if b.PreferredTechnicianID != nil {
		m["preferred_technician_id"] = *b.PreferredTechnicianID
	}
	return m
}
