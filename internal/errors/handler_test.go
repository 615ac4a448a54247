package errors

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error load failed",
			err:        LoadFailedError(stderrors.New("bad zip")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeLoadFailed,
		},
		{
			name:       "api error file too large",
			err:        ErrFileTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "api error validation",
			err:        ErrValidation("horizon", "must be between 1 and 10"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unsupported format by message",
			err:        stderrors.New(`unsupported workbook format ".pdf"`),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUnsupportedFormat,
		},
		{
			name:       "load failure by message",
			err:        stderrors.New("failed to load workbook upload.csv: csv file is empty"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeLoadFailed,
		},
		{
			name:       "not found by message",
			err:        stderrors.New("report not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error is internal",
			err:        stderrors.New("kaboom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	h := testHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)

			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/analysis", problem.Instance)
		})
	}
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, LoadFailedError(stderrors.New("bad zip")))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), TypeLoadFailed)
	assert.Contains(t, w.Body.String(), "error_code")
}

func TestNotFoundHandler(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()

	h.NotFound(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), TypeNotFound)
}

func TestValidationErrorDetails(t *testing.T) {
	err := ErrValidation("horizon", "must be between 1 and 10")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	details, ok := err.Details.(ValidationError)
	assert.True(t, ok)
	assert.Equal(t, "horizon", details.Field)
}
