package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tabprep/internal/config"
	apierrors "tabprep/internal/errors"
	"tabprep/internal/validation"
	"tabprep/pkg/contracts/api/v1"
)

// TableHandler serves the loaded table as JSON
type TableHandler struct {
	service      TableServiceInterface
	validator    *validation.Validator
	pageSize     int
	maxPageSize  int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTableHandler creates a table handler paging with the viewer settings of cfg
func NewTableHandler(service TableServiceInterface, cfg config.ViewerConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TableHandler {
	return &TableHandler{
		service:      service,
		validator:    validation.New(),
		pageSize:     cfg.PageSize,
		maxPageSize:  cfg.MaxPageSize,
		logger:       logger.With(slog.String("component", "table_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the table routes
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/columns", h.GetColumns)
	r.Get("/rows", h.GetRows)
	return r
}

// GetColumns handles GET /columns
func (h *TableHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Columns(r.Context()))
}

// GetRows handles GET /rows?columns=a,2&offset=0&limit=50
func (h *TableHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRowsRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Rows(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "rows served",
		slog.Int("offset", req.Offset),
		slog.Int("returned", len(resp.Rows)),
		slog.Int("total", resp.Total))
	render.JSON(w, r, resp)
}

func (h *TableHandler) parseRowsRequest(r *http.Request) (api.RowsRequest, error) {
	q := r.URL.Query()
	req := api.RowsRequest{
		Columns: q.Get("columns"),
		Limit:   h.pageSize,
	}

	var err error
	if req.Offset, err = intParam(q.Get("offset"), "offset", 0); err != nil {
		return req, err
	}
	if req.Limit, err = intParam(q.Get("limit"), "limit", h.pageSize); err != nil {
		return req, err
	}
	if err := h.validator.Struct(req); err != nil {
		return req, err
	}
	if req.Limit > h.maxPageSize {
		return req, apierrors.NewAppValidationError(
			fmt.Sprintf("limit must be at most %d", h.maxPageSize)).
			WithContext("limit", req.Limit)
	}
	return req, nil
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.NewAppValidationError(fmt.Sprintf("%s must be an integer", name)).
			WithContext(name, raw)
	}
	return v, nil
}
