package postgres

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/aggregation"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/shopspring/decimal"
)

// segmentJSON and sampleJSON are the stored shapes of the segments and
// samples columns.
type segmentJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Kind  string    `json:"kind"`
}

type sampleJSON struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans a records row. Payload numbers are decoded as
// json.Number so values keep their stored precision.
func scanRecordRow(row scanner) (aggregation.RawRecordRow, error) {
	var r aggregation.RawRecordRow
	var payloadJSON, segmentsJSON, samplesJSON []byte

	err := row.Scan(
		&r.RowID,
		&r.UUID,
		&r.RecordType,
		&r.DataOrigin,
		&r.StartTime,
		&r.EndTime,
		&r.StartZoneOffset,
		&r.EndZoneOffset,
		&payloadJSON,
		&segmentsJSON,
		&samplesJSON,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan record row: %w", err)
	}

	if len(payloadJSON) > 0 {
		dec := json.NewDecoder(bytes.NewReader(payloadJSON))
		dec.UseNumber()
		if err := dec.Decode(&r.Payload); err != nil {
			return r, fmt.Errorf("failed to unmarshal payload of record %s: %w", r.UUID, err)
		}
	}

	if len(segmentsJSON) > 0 {
		var segments []segmentJSON
		if err := json.Unmarshal(segmentsJSON, &segments); err != nil {
			return r, fmt.Errorf("failed to unmarshal segments of record %s: %w", r.UUID, err)
		}
		for _, s := range segments {
			r.Segments = append(r.Segments, aggregation.Segment{Start: s.Start, End: s.End, Kind: s.Kind})
		}
	}

	if len(samplesJSON) > 0 {
		var samples []sampleJSON
		if err := json.Unmarshal(samplesJSON, &samples); err != nil {
			return r, fmt.Errorf("failed to unmarshal samples of record %s: %w", r.UUID, err)
		}
		for _, s := range samples {
			r.Samples = append(r.Samples, aggregation.Sample{Time: s.Time, Value: s.Value})
		}
	}

	return r, nil
}

// scanMedicalRow scans one medical resource plus the window total column.
func scanMedicalRow(row scanner) (storage.MedicalResource, int64, error) {
	var m storage.MedicalResource
	var data []byte
	var total int64

	err := row.Scan(
		&m.RowID,
		&m.ID,
		&m.ResourceType,
		&m.DataSourceID,
		&m.FHIRVersion,
		&data,
		&m.LastModified,
		&total,
	)
	if err != nil {
		return m, 0, fmt.Errorf("failed to scan medical resource row: %w", err)
	}
	m.Data = json.RawMessage(data)
	return m, total, nil
}

func recordTypeCodes(types []aggregation.RecordType) []int64 {
	out := make([]int64, len(types))
	for i, t := range types {
		out[i] = int64(t)
	}
	return out
}
