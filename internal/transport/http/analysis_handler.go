package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finsight/internal/config"
	apierrors "finsight/internal/errors"
	"finsight/internal/infrastructure"
	"finsight/internal/services"
	"finsight/internal/validation"
)

// AnalysisHandler handles workbook analysis HTTP requests
type AnalysisHandler struct {
	service       *services.AnalysisService
	fileValidator *validation.FileValidator
	validate      *validator.Validate
	cfg           *config.Config
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
}

// analysisForm carries the non-file form fields of an analysis request
type analysisForm struct {
	Horizon int `validate:"omitempty,min=1,max=10"`
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, cfg *config.Config, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:       service,
		fileValidator: validation.NewFileValidator(logger),
		validate:      validator.New(),
		cfg:           cfg,
		logger:        logger.With(slog.String("component", "analysis_handler")),
		errorHandler:  errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Create)
	return r
}

// Create handles POST /api/analysis: a multipart upload with the workbook
// under "file" and an optional "horizon" field for the risk projection.
func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := infrastructure.GetTraceID(ctx)
	tracer := otel.Tracer("analysis-handler")
	start := time.Now()

	ctx, span := tracer.Start(ctx, "analysis_handler.create",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/analysis"),
			attribute.String("request_id", reqID),
		),
	)
	defer span.End()

	if err := r.ParseMultipartForm(h.cfg.Upload.MaxFileSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook file is required"))
		return
	}
	defer file.Close()

	if err := h.fileValidator.ValidateWorkbookName(header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", err.Error()))
		return
	}
	if err := h.fileValidator.ValidateUploadSize(header.Size, h.cfg.Upload.MaxFileSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error(), header.Size))
		return
	}

	form, err := h.parseForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.String("upload.filename", header.Filename),
		attribute.Int64("upload.size", header.Size),
		attribute.Int("analysis.horizon", form.Horizon),
	)

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("upload", err))
		return
	}
	defer os.Remove(path)

	report, err := h.service.Analyze(ctx, path, form.Horizon)
	if err != nil {
		span.RecordError(err)
		h.errorHandler.HandleError(w, r, apierrors.LoadFailedError(err))
		return
	}

	h.logger.InfoContext(ctx, "analysis request completed",
		slog.String("request_id", reqID),
		slog.String("report_id", report.ID),
		slog.String("filename", header.Filename),
		slog.Duration("duration", time.Since(start)))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, report)
}

// parseForm reads and validates the optional horizon field
func (h *AnalysisHandler) parseForm(r *http.Request) (analysisForm, error) {
	var form analysisForm
	if raw := r.FormValue("horizon"); raw != "" {
		horizon, err := strconv.Atoi(raw)
		if err != nil {
			return form, apierrors.ErrValidation("horizon", "horizon must be an integer")
		}
		form.Horizon = horizon
	}
	if err := h.validate.Struct(form); err != nil {
		return form, apierrors.ErrValidation("horizon", "horizon must be between 1 and 10")
	}
	return form, nil
}

// saveUpload spools the uploaded workbook to a temp file, keeping the
// original extension so the loader can dispatch on it.
func (h *AnalysisHandler) saveUpload(src io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "finsight-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
