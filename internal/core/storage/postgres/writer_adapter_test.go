package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/project-vitals/internal/core/aggregation"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var writeStart = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

func TestWriterAdapter_InsertRecordsCommitsAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	steps := aggregation.RawRecordRow{
		UUID:       "7d1f7b52-0a57-4bd4-9f6e-1b8e0c7c1a10",
		RecordType: aggregation.RecordTypeSteps,
		DataOrigin: "com.example.watch",
		StartTime:  writeStart,
		EndTime:    writeStart.Add(time.Hour),
		Payload:    map[string]interface{}{aggregation.FieldCount: 1200},
	}
	heart := aggregation.RawRecordRow{
		UUID:            "1c9e2a33-5b7d-4e0f-8a21-6d4c3b2a1f00",
		RecordType:      aggregation.RecordTypeHeartRate,
		DataOrigin:      "com.example.strap",
		StartTime:       writeStart,
		EndTime:         writeStart.Add(time.Minute),
		StartZoneOffset: 3600,
		EndZoneOffset:   3600,
		Samples:         []aggregation.Sample{{Time: writeStart, Value: decimal.RequireFromString("72.5")}},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
	prep.ExpectExec().WithArgs(
		steps.UUID, int64(aggregation.RecordTypeSteps), steps.DataOrigin,
		steps.StartTime, steps.EndTime, 0, 0,
		[]byte(`{"count":1200}`), nil, nil,
	).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(
		heart.UUID, int64(aggregation.RecordTypeHeartRate), heart.DataOrigin,
		heart.StartTime, heart.EndTime, 3600, 3600,
		[]byte(`{}`), nil, []byte(`[{"time":"2026-03-01T07:00:00Z","value":"72.5"}]`),
	).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = NewWriterAdapter(db).InsertRecords(context.Background(), []aggregation.RawRecordRow{steps, heart})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterAdapter_InsertRecordsDuplicateRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	row := aggregation.RawRecordRow{
		UUID:       "7d1f7b52-0a57-4bd4-9f6e-1b8e0c7c1a10",
		RecordType: aggregation.RecordTypeSleepSession,
		DataOrigin: "com.example.watch",
		StartTime:  writeStart,
		EndTime:    writeStart.Add(8 * time.Hour),
		Segments: []aggregation.Segment{
			{Start: writeStart.Add(time.Hour), End: writeStart.Add(90 * time.Minute), Kind: aggregation.SleepStageAwake},
		},
	}

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord)).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewWriterAdapter(db).InsertRecords(context.Background(), []aggregation.RawRecordRow{row})
	require.ErrorIs(t, err, storage.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterAdapter_UpsertMedicalResources(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	res := storage.MedicalResource{
		ID:           "immunization-1",
		ResourceType: paging.MedicalResourceTypeVaccines,
		DataSourceID: "6f1b1a44-3c1e-4d0f-9a55-2c8e7b8f0a01",
		FHIRVersion:  "4.0.1",
		Data:         json.RawMessage(`{"resourceType":"Immunization"}`),
		LastModified: writeStart,
	}

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(queryUpsertMedicalResource)).
		ExpectExec().
		WithArgs(res.ID, int64(res.ResourceType), res.DataSourceID, res.FHIRVersion, []byte(res.Data), res.LastModified).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewWriterAdapter(db).UpsertMedicalResources(context.Background(), []storage.MedicalResource{res})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterAdapter_EmptyBatchesSkipDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a := NewWriterAdapter(db)
	require.NoError(t, a.InsertRecords(context.Background(), nil))
	require.NoError(t, a.UpsertMedicalResources(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
