package scans

import (
	"errors"
	"fmt"
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
	read.GET("/scans", h.ListScans)
	read.GET("/scans/:id", h.GetScan)
	read.GET("/scans/:id/content", h.DownloadScan)

	write := api.Group("", auth.RequireRole("doctor", "desk"))
	write.POST("/scans", h.UploadScan)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/scans/:id", h.DeleteScan)
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "scan not found")
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) UploadScan(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	uploadedBy := auth.UserIDFromContext(c.Request().Context())
	scan, err := h.svc.Upload(c.Request().Context(),
		c.FormValue("patient_ref"), file.Filename, file.Header.Get("Content-Type"), uploadedBy, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, scan)
}

func (h *Handler) GetScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	scan, err := h.svc.GetScan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, scan)
}

func (h *Handler) DownloadScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	scan, rc, err := h.svc.Download(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, scan.FileName))
	return c.Stream(http.StatusOK, scan.ContentType, rc)
}

func (h *Handler) ListScans(c echo.Context) error {
	page := pagination.FromContext(c)
	items, err := h.svc.ListByPatient(c.Request().Context(), c.QueryParam("patient_ref"), page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*Scan{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
