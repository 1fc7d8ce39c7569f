package billing

import (
	"errors"
	"net/http"

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
	read.GET("/bills", h.ListBills)
	read.GET("/bills/:id", h.GetBill)

	write := api.Group("", auth.RequireRole("desk"))
	write.POST("/bills", h.CreateBill)
	write.POST("/bills/:id/items", h.AddItem)
	write.POST("/bills/:id/payments", h.PayBill)
	write.POST("/bills/:id/cancel", h.CancelBill)
}

// validationPayload surfaces the outstanding balance on overpayment
// rejections so front desks can correct the amount without a second
// round trip.
type validationPayload struct {
	Error string   `json:"error"`
	Due   *float64 `json:"due,omitempty"`
}

func (h *Handler) httpError(c echo.Context, err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, validationPayload{Error: ve.Message, Due: ve.Due})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) CreateBill(c echo.Context) error {
	var b Bill
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBill(c.Request().Context(), &b); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBills(c echo.Context) error {
	filter := ListFilter{
		PatientRef: c.QueryParam("patient_ref"),
		Status:     c.QueryParam("status"),
	}
	page := pagination.FromContext(c)
	items, err := h.svc.ListBills(c.Request().Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return h.httpError(c, err)
	}
	if items == nil {
		items = []*Bill{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item BillItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.AddItem(c.Request().Context(), id, item)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type payRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// payResponse carries the updated bill together with the payment that was
// just recorded, so clients get the payment id without refetching.
type payResponse struct {
	Bill    *Bill    `json:"bill"`
	Payment *Payment `json:"payment"`
}

func (h *Handler) PayBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req payRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, p, err := h.svc.PayBill(c.Request().Context(), id, req.Amount, req.Method)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, payResponse{Bill: b, Payment: p})
}

func (h *Handler) CancelBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.CancelBill(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
