package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/project-vitals/internal/api/v1"
	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	httperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidJSON      = "Invalid JSON body"
	msgPersistFailed    = "Failed to persist records"
	msgDuplicateRecord  = "Record already exists"
	msgBatchSizeInvalid = "Batch must contain between 1 and %d items"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

type insertRecordsRequest struct {
	Records []v1.Record `json:"records"`
}

type upsertMedicalResourcesRequest struct {
	Resources []v1.MedicalResource `json:"resources"`
}

// InsertRecordsHandler handles POST /v1/records. The batch is stored
// atomically.
func (s *Service) InsertRecordsHandler(c *gin.Context) {
	var req insertRecordsRequest
	payloadSize, ierr := s.parseBody(c, &req)
	if ierr != nil {
		writeError(c, ierr)
		return
	}
	if ierr := checkBatchSize(len(req.Records)); ierr != nil {
		writeError(c, ierr)
		return
	}

	rows := make([]coreagg.RawRecordRow, 0, len(req.Records))
	for i := range req.Records {
		row, err := req.Records[i].ToRow()
		if err != nil {
			slog.Warn("Record validation failed", "index", i, "record_id", req.Records[i].ID, "error", err)
			writeError(c, validationError(i, err))
			return
		}
		rows = append(rows, row)
	}

	slog.Info("Received Records", "count", len(rows), "payload_size", payloadSize)

	if err := s.records.InsertRecords(c.Request.Context(), rows); err != nil {
		writeError(c, persistError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "created", "count": len(rows)})
}

// UpsertMedicalResourcesHandler handles PUT /v1/medical-resources.
func (s *Service) UpsertMedicalResourcesHandler(c *gin.Context) {
	var req upsertMedicalResourcesRequest
	payloadSize, ierr := s.parseBody(c, &req)
	if ierr != nil {
		writeError(c, ierr)
		return
	}
	if ierr := checkBatchSize(len(req.Resources)); ierr != nil {
		writeError(c, ierr)
		return
	}

	modifiedAt := s.now()
	resources := make([]storage.MedicalResource, 0, len(req.Resources))
	for i := range req.Resources {
		res, err := req.Resources[i].ToResource(modifiedAt)
		if err != nil {
			slog.Warn("Medical resource validation failed", "index", i, "resource_id", req.Resources[i].ID, "error", err)
			writeError(c, validationError(i, err))
			return
		}
		resources = append(resources, res)
	}

	slog.Info("Received Medical Resources", "count", len(resources), "payload_size", payloadSize)

	if err := s.medical.UpsertMedicalResources(c.Request.Context(), resources); err != nil {
		writeError(c, persistError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "upserted", "count": len(resources)})
}

// parseBody reads the raw request body under the size limit and binds it into dst.
// Returns the raw payload size (used for structured logging upstream).
func (s *Service) parseBody(c *gin.Context, dst interface{}) (int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return len(bodyBytes), nil
}

func checkBatchSize(n int) *ingestionError {
	if n == 0 || n > MaxBatchSize {
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    fmt.Sprintf(msgBatchSizeInvalid, MaxBatchSize),
			details:    map[string]interface{}{"count": n},
		}
	}
	return nil
}

func validationError(index int, err error) *ingestionError {
	status, errType := httperr.HTTPStatus(err)
	return &ingestionError{
		statusCode: status,
		errorType:  errType,
		message:    err.Error(),
		details:    map[string]interface{}{"index": index},
	}
}

// persistError maps a writer failure. A duplicate rejects the whole batch.
func persistError(err error) *ingestionError {
	if errors.Is(err, storage.ErrDuplicate) {
		slog.Info("Duplicate record rejected", "error", err)
		return &ingestionError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpDuplicateRecordError,
			message:    msgDuplicateRecord,
			details:    err.Error(),
		}
	}

	slog.Error("Failed to persist batch", "error", err)
	return &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgPersistFailed,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
