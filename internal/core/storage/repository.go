package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/aggregation"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/google/uuid"
)

// ErrDuplicate is returned when a record with the same uuid already exists.
var ErrDuplicate = errors.New("duplicate record")

// RowSource reads stored health records.
type RowSource interface {
	// FetchRows returns every row of recordType whose interval intersects the
	// absolute window. A non-empty origins restricts rows to those data
	// origins. Rows are ordered by start time then row id. An empty result is
	// not an error.
	FetchRows(
		ctx context.Context,
		recordType aggregation.RecordType,
		window aggregation.TimeWindow,
		origins []string,
	) ([]aggregation.RawRecordRow, error)
}

// RecordWriter stores health records.
type RecordWriter interface {
	// InsertRecords stores every row or none. A uuid that is already stored
	// fails the whole batch with ErrDuplicate.
	InsertRecords(ctx context.Context, rows []aggregation.RawRecordRow) error
}

// MedicalResource is one stored medical resource.
type MedicalResource struct {
	RowID        int64                      `json:"-"`
	ID           string                     `json:"id"`
	ResourceType paging.MedicalResourceType `json:"resource_type"`
	DataSourceID string                     `json:"data_source_id"`
	FHIRVersion  string                     `json:"fhir_version"`
	Data         json.RawMessage            `json:"data"`
	LastModified time.Time                  `json:"last_modified"`
}

// MedicalResourceStore serves cursor-paged medical resource reads.
type MedicalResourceStore interface {
	// ReadPage returns up to limit resources matching filter with row id
	// greater than afterRowID, in row id order, and the number of matches
	// left after the returned page.
	ReadPage(ctx context.Context, filter paging.ReadFilter, afterRowID int64, limit int) ([]MedicalResource, int64, error)
}

// MedicalResourceWriter stores medical resources.
type MedicalResourceWriter interface {
	// UpsertMedicalResources inserts or replaces resources keyed by
	// (data source id, resource type, id). A replaced resource keeps its row
	// id and therefore its position in paged reads.
	UpsertMedicalResources(ctx context.Context, resources []MedicalResource) error
}

// AccessOperation is the kind of access being logged.
type AccessOperation string

const AccessOperationRead AccessOperation = "READ"

// AccessLogEntry records that a caller read some record types.
type AccessLogEntry struct {
	ID            uuid.UUID
	CallerPackage string
	RecordTypes   []aggregation.RecordType
	Operation     AccessOperation
	AccessTime    time.Time
	DataOrigins   []string
}

// AccessLogStore persists and expires access log entries.
type AccessLogStore interface {
	RecordReadAccess(ctx context.Context, entries []AccessLogEntry) error

	// PruneBefore deletes at most limit entries older than cutoff and returns
	// how many were removed.
	PruneBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
