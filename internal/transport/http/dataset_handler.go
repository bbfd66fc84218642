package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"clinicpulse/internal/dataset"
	apierrors "clinicpulse/internal/errors"
	"clinicpulse/internal/middleware"
	"clinicpulse/internal/services"
)

// DatasetHandler handles dataset-related HTTP requests.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDataset)
	r.Get("/bounds", h.GetBounds)
	r.Get("/range", h.GetRange)
	r.Get("/summary", h.GetSummary)
	r.Post("/upload", h.Upload)

	return r
}

// rangeQuery carries the filter bounds of a range or summary request.
// Bound format is variant-specific and checked by the service; here only
// gross misuse is rejected.
type rangeQuery struct {
	From string `json:"from" validate:"omitempty,max=32"`
	To   string `json:"to" validate:"omitempty,max=32"`
}

func (h *DatasetHandler) rangeQueryFrom(r *http.Request) (rangeQuery, error) {
	q := rangeQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := h.validate.Struct(q); err != nil {
		return q, apierrors.ErrValidation("range", "period bounds must be at most 32 characters")
	}
	return q, nil
}

// GetDataset handles GET /api/dataset. It returns the full normalized
// dataset for table display, including the dropped-row count so clients
// can warn when data loss is significant.
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching dataset",
		slog.String("request_id", reqID),
		slog.String("path", r.URL.Path),
	)

	ds, err := h.service.Current(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"variant":      ds.Variant.String(),
		"data":         h.presentRecords(ds.Records),
		"count":        len(ds.Records),
		"dropped_rows": ds.Dropped,
	})
}

// GetBounds handles GET /api/dataset/bounds. Clients use the bounds to
// initialize the period slider.
func (h *DatasetHandler) GetBounds(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Current(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	min, max, ok := ds.Bounds()
	if !ok {
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"empty":  true,
		})
		return
	}

	variant := h.service.Variant()
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"empty":   false,
		"variant": variant.String(),
		"min_key": variant.FormatKey(min),
		"max_key": variant.FormatKey(max),
	})
}

// GetRange handles GET /api/dataset/range?from=&to=. Omitted bounds
// default to the dataset bounds; an empty result is a valid response,
// not an error.
func (h *DatasetHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	q, err := h.rangeQueryFrom(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.Range(r.Context(), q.From, q.To)
	if err != nil {
		h.handleRangeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.presentRecords(records),
		"count":  len(records),
	})
}

// GetSummary handles GET /api/dataset/summary?from=&to=. The summary is
// computed on pooled totals over the filtered subset.
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, err := h.rangeQueryFrom(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), q.From, q.To)
	if err != nil {
		h.handleRangeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// Upload handles POST /api/dataset/upload (multipart, field "file"). The
// uploaded table becomes the active dataset for subsequent queries.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "request is not valid multipart form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int("bytes", len(content)),
	)

	ds, err := h.service.Upload(r.Context(), header.Filename, content)
	if err != nil {
		if errors.Is(err, services.ErrEmptyUpload) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "uploaded table is empty"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"variant":      ds.Variant.String(),
		"count":        len(ds.Records),
		"dropped_rows": ds.Dropped,
	})
}

// handleRangeError maps bound-parse failures to validation errors; all
// other errors go through the central mapping.
func (h *DatasetHandler) handleRangeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrInvalidPeriodBound) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("range", err.Error()))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// presentRecord is the wire form of one observation: the orderable key is
// rendered in the variant's display format alongside the verbatim label.
type presentRecord struct {
	PeriodLabel string  `json:"period_label"`
	PeriodKey   string  `json:"period_key"`
	BirthsA     float64 `json:"births_a"`
	DeathsA     float64 `json:"deaths_a"`
	BirthsB     float64 `json:"births_b"`
	DeathsB     float64 `json:"deaths_b"`
	RateA       float64 `json:"rate_a"`
	RateB       float64 `json:"rate_b"`
}

func (h *DatasetHandler) presentRecords(records []dataset.ObservationRecord) []presentRecord {
	variant := h.service.Variant()
	out := make([]presentRecord, len(records))
	for i, rec := range records {
		out[i] = presentRecord{
			PeriodLabel: rec.PeriodLabel,
			PeriodKey:   variant.FormatKey(rec.PeriodKey),
			BirthsA:     rec.BirthsA,
			DeathsA:     rec.DeathsA,
			BirthsB:     rec.BirthsB,
			DeathsB:     rec.DeathsB,
			RateA:       rec.RateA,
			RateB:       rec.RateB,
		}
	}
	return out
}
