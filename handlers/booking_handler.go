package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/bookings"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// BookingService defines the scheduling operations used by the handler
type BookingService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in bookings.BookingInput) (*models.Booking, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in bookings.BookingInput) (*models.Booking, error)
	Confirm(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingService
	logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(service BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
	}
}

func parseBookingFilter(r *http.Request) (models.BookingFilter, error) {
	var filter models.BookingFilter

	p, err := parsePage(r)
	if err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = p.Limit, p.Offset
	filter.Status = models.BookingStatus(r.URL.Query().Get("status"))

	if filter.PhotographerID, err = queryUUID(r, "photographer_id"); err != nil {
		return filter, err
	}
	if filter.ClientID, err = queryUUID(r, "client_id"); err != nil {
		return filter, err
	}
	if filter.From, err = queryTime(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

// HandleListBookings handles GET /api/v1/bookings
func (h *BookingHandler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	filter, err := parseBookingFilter(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.service.List(r.Context(), orgID, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req bookings.BookingInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	booking, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("booking created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("booking_id", booking.ID.String()))

	_ = utils.WriteCreated(w, booking)
}

// HandleGetBooking handles GET /api/v1/bookings/{bookingID}
func (h *BookingHandler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, booking)
}

// HandleUpdateBooking handles PUT /api/v1/bookings/{bookingID}
func (h *BookingHandler) HandleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "bookingID")
	if !ok {
		return
	}

	var req bookings.BookingInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	booking, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, booking)
}

// HandleConfirmBooking handles POST /api/v1/bookings/{bookingID}/confirm
func (h *BookingHandler) HandleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm)
}

// HandleCancelBooking handles POST /api/v1/bookings/{bookingID}/cancel
func (h *BookingHandler) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

// HandleCompleteBooking handles POST /api/v1/bookings/{bookingID}/complete
func (h *BookingHandler) HandleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error)) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := fn(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("booking status changed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("booking_id", id.String()),
		zap.String("status", string(booking.Status)))

	_ = utils.WriteOK(w, booking)
}
