package v1

import (
	"encoding/json"
	"strings"
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one health record as written by a client application.
type Record struct {
	// ID is the client-assigned record uuid. Writing the same id twice is
	// rejected, which makes retries idempotent.
	ID string `json:"id"`

	// RecordType is the record family name ("Steps", "HeartRate") or its
	// numeric value.
	RecordType string `json:"record_type"`

	// DataOrigin is the package name of the writing application. Priority
	// orders rank these values.
	DataOrigin string `json:"data_origin"`

	StartTime time.Time `json:"start_time"`

	// EndTime is required for interval records. Sample records may omit it;
	// it then defaults to the last sample time, or StartTime for an instant.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Zone offsets in seconds east of UTC, used by local-time aggregation.
	StartZoneOffsetSeconds int `json:"start_zone_offset_seconds"`
	EndZoneOffsetSeconds   int `json:"end_zone_offset_seconds"`

	// Data holds the record fields, e.g. {"count": 1200} for steps or
	// {"intensity": 2} for activity intensity.
	Data map[string]interface{} `json:"data,omitempty"`

	Segments []Segment `json:"segments,omitempty"`
	Samples  []Sample  `json:"samples,omitempty"`
}

// Segment is a stage or pause within a session record.
type Segment struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Kind      string    `json:"kind"`
}

// Sample is one timestamped value of a series record.
type Sample struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// ToRow validates r and converts it to a storage row.
func (r *Record) ToRow() (coreagg.RawRecordRow, error) {
	if _, err := uuid.Parse(r.ID); err != nil {
		return coreagg.RawRecordRow{}, apperr.Validationf("id", "must be a uuid, got %q", r.ID)
	}
	rt, err := coreagg.ParseRecordType(r.RecordType)
	if err != nil {
		return coreagg.RawRecordRow{}, err
	}
	desc, err := coreagg.DescribeRecordType(rt)
	if err != nil {
		return coreagg.RawRecordRow{}, err
	}
	if strings.TrimSpace(r.DataOrigin) == "" {
		return coreagg.RawRecordRow{}, apperr.Validationf("data_origin", "required")
	}
	if r.StartTime.IsZero() {
		return coreagg.RawRecordRow{}, apperr.Validationf("start_time", "required")
	}

	end, err := r.endTime(desc.Kind)
	if err != nil {
		return coreagg.RawRecordRow{}, err
	}

	row := coreagg.RawRecordRow{
		UUID:            strings.ToLower(r.ID),
		RecordType:      rt,
		DataOrigin:      r.DataOrigin,
		StartTime:       r.StartTime.UTC(),
		EndTime:         end.UTC(),
		StartZoneOffset: r.StartZoneOffsetSeconds,
		EndZoneOffset:   r.EndZoneOffsetSeconds,
		Payload:         r.Data,
	}

	for i, s := range r.Segments {
		if s.EndTime.Before(s.StartTime) {
			return coreagg.RawRecordRow{}, apperr.Validationf("segments", "segment %d ends before it starts", i)
		}
		row.Segments = append(row.Segments, coreagg.Segment{Start: s.StartTime.UTC(), End: s.EndTime.UTC(), Kind: s.Kind})
	}
	for i, s := range r.Samples {
		if s.Time.Before(row.StartTime) || s.Time.After(row.EndTime) {
			return coreagg.RawRecordRow{}, apperr.Validationf("samples", "sample %d lies outside the record interval", i)
		}
		row.Samples = append(row.Samples, coreagg.Sample{Time: s.Time.UTC(), Value: s.Value})
	}
	return row, nil
}

func (r *Record) endTime(kind coreagg.RecordKind) (time.Time, error) {
	if r.EndTime != nil {
		if r.EndTime.Before(r.StartTime) {
			return time.Time{}, apperr.Validationf("end_time", "is before start_time")
		}
		return *r.EndTime, nil
	}
	if kind == coreagg.KindInterval {
		return time.Time{}, apperr.Validationf("end_time", "required for interval records")
	}
	end := r.StartTime
	for _, s := range r.Samples {
		if s.Time.After(end) {
			end = s.Time
		}
	}
	return end, nil
}

// MedicalResource is one FHIR resource as written by a client application.
type MedicalResource struct {
	ID           string          `json:"id"`
	ResourceType string          `json:"resource_type"`
	DataSourceID string          `json:"data_source_id"`
	FHIRVersion  string          `json:"fhir_version"`
	Data         json.RawMessage `json:"data"`
}

// ToResource validates m and converts it to a storage resource stamped with
// modifiedAt.
func (m *MedicalResource) ToResource(modifiedAt time.Time) (storage.MedicalResource, error) {
	if strings.TrimSpace(m.ID) == "" {
		return storage.MedicalResource{}, apperr.Validationf("id", "required")
	}
	rt, err := paging.ParseMedicalResourceType(m.ResourceType)
	if err != nil {
		return storage.MedicalResource{}, err
	}
	sourceID, err := uuid.Parse(m.DataSourceID)
	if err != nil {
		return storage.MedicalResource{}, apperr.Validationf("data_source_id", "must be a uuid, got %q", m.DataSourceID)
	}
	if strings.TrimSpace(m.FHIRVersion) == "" {
		return storage.MedicalResource{}, apperr.Validationf("fhir_version", "required")
	}
	if len(m.Data) == 0 || !json.Valid(m.Data) {
		return storage.MedicalResource{}, apperr.Validationf("data", "must be a JSON document")
	}
	return storage.MedicalResource{
		ID:           m.ID,
		ResourceType: rt,
		DataSourceID: sourceID.String(),
		FHIRVersion:  m.FHIRVersion,
		Data:         m.Data,
		LastModified: modifiedAt.UTC(),
	}, nil
}
