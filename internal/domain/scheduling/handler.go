package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medoffice/medoffice/internal/platform/auth"
	"github.com/medoffice/medoffice/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("doctor", "desk", "patient"))
	read.GET("/bookings", h.ListBookings)
	read.GET("/bookings/conflicts", h.CheckConflict)
	read.GET("/bookings/:id", h.GetBooking)

	write := api.Group("", auth.RequireRole("doctor", "desk"))
	write.POST("/bookings", h.CreateBooking)
	write.PUT("/bookings/:id", h.UpdateBooking)
	write.POST("/bookings/:id/cancel", h.CancelBooking)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/bookings/:id", h.DeleteBooking)
}

// httpError maps domain errors onto HTTP status codes. Unrecognized errors
// come back as a generic 500 so store details never leak to callers.
func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var b Booking
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBooking(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBookings(c echo.Context) error {
	filter := ListFilter{
		PatientRef: c.QueryParam("patient_ref"),
		DoctorRef:  c.QueryParam("doctor_ref"),
		Status:     c.QueryParam("status"),
	}
	if day := c.QueryParam("day"); day != "" {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "day must be YYYY-MM-DD")
		}
		filter.Day = &d
	}
	page := pagination.FromContext(c)
	items, err := h.svc.ListBookings(c.Request().Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*Booking{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd BookingUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.RescheduleBooking(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBooking(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// conflictCheckResponse is the payload returned by the conflict probe.
type conflictCheckResponse struct {
	Conflict bool     `json:"conflict"`
	Booking  *Booking `json:"booking,omitempty"`
}

func (h *Handler) CheckConflict(c echo.Context) error {
	patientRef := c.QueryParam("patient_ref")
	doctorRef := c.QueryParam("doctor_ref")
	if patientRef == "" || doctorRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_ref and doctor_ref are required")
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("scheduled_at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_at must be RFC 3339")
	}
	duration, err := strconv.Atoi(c.QueryParam("duration_minutes"))
	if err != nil || duration <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be a positive integer")
	}
	excludeID := uuid.Nil
	if ex := c.QueryParam("exclude"); ex != "" {
		excludeID, err = uuid.Parse(ex)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude id")
		}
	}

	conflict, err := h.svc.CheckConflict(c.Request().Context(), patientRef, doctorRef, start, duration, excludeID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conflictCheckResponse{Conflict: conflict != nil, Booking: conflict})
}
