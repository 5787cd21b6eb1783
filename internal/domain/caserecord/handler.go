package caserecord

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/CodeTanzania/ewea-case/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the case resource on the versioned API group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/cases", h.List)
	g.POST("/cases", h.Create, EnsureReporter)
	g.GET("/cases/schema", h.Schema)
	g.GET("/cases/schema/", h.Schema)
	g.GET("/cases/export", h.Export)
	g.GET("/cases/:id", h.Get)
	g.PATCH("/cases/:id", h.Patch, EnsureResolver)
	g.PUT("/cases/:id", h.Put, EnsureResolver)
	g.DELETE("/cases/:id", h.Delete)
}

func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func caseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

func listOptions(c echo.Context) (ListOptions, pagination.Params) {
	p := pagination.FromContext(c)
	opts := ListOptions{
		Limit:  p.Limit,
		Skip:   p.Skip,
		Search: c.QueryParam("q"),
	}
	if raw := c.QueryParam("stage"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			opts.Stage = &id
		}
	}
	if raw := c.QueryParam("severity"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			opts.Severity = &id
		}
	}
	return opts, p
}

func (h *Handler) List(c echo.Context) error {
	opts, p := listOptions(c)

	items, total, lastModified, err := h.svc.List(c.Request().Context(), opts)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p, lastModified))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	record, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Create(c echo.Context) error {
	record := &Case{}
	if err := c.Bind(record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), record); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *Handler) Patch(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	patch := map[string]interface{}{}
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	record, err := h.svc.Patch(c.Request().Context(), id, patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Put(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	replacement := &Case{}
	if err := c.Bind(replacement); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	record, err := h.svc.Put(c.Request().Context(), id, replacement)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	record, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Schema(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Schema())
}

func (h *Handler) Export(c echo.Context) error {
	opts, _ := listOptions(c)
	opts.Limit = 0
	opts.Skip = 0

	filename := fmt.Sprintf("cases_exports_%d.csv", time.Now().Unix())
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	return h.svc.Export(c.Request().Context(), opts, c.Response())
}
