// Package server provides the HTTP API for converting presentations and scenarios into SCORM packages.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/db"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/llm"
	"github.com/jonathan/scorm-packager/internal/pptx"
	"github.com/jonathan/scorm-packager/internal/rendering"
	"github.com/jonathan/scorm-packager/internal/scenarios"
	"github.com/jonathan/scorm-packager/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature whose backing service is not configured
type ErrUnavailable struct {
	Feature string
	Reason  string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Feature, e.Reason)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		unsupported   *container.UnsupportedFileTypeError
		invalidFormat *container.InvalidFormatError
		corrupted     *container.CorruptedArchiveError
		missingPart   *container.MissingPartError
		noSlides      *pptx.EmptyResultError
		noScenarios   *scenarios.EmptyResultError
		noUnits       *rendering.NoUnitsError
		blocked       *llm.BlockedError
		parseErr      *scenarios.ParseError
		schemaErr     *schemas.ValidationError
		badDocument   *schemas.DocumentError
		fieldErrs     validator.ValidationErrors
		validation    *ErrValidation
		emptyUpload   *ingestion.EmptyUploadError
		tooLarge      *ingestion.TooLargeError
		maxBytes      *http.MaxBytesError
		unavailable   *ErrUnavailable
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &invalidFormat), errors.As(err, &corrupted), errors.As(err, &missingPart),
		errors.As(err, &noSlides), errors.As(err, &noScenarios), errors.As(err, &noUnits),
		errors.As(err, &blocked):
		return http.StatusUnprocessableEntity
	case errors.As(err, &parseErr), errors.As(err, &schemaErr), errors.As(err, &badDocument), errors.As(err, &fieldErrs),
		errors.As(err, &validation), errors.As(err, &emptyUpload):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
