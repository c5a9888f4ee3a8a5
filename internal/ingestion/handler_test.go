package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	httperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage/memory"
	storagemocks "github.com/aevon-lab/project-vitals/internal/mocks/storage"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const stepsBody = `{"records":[{
	"id": "7d1f7b52-0a57-4bd4-9f6e-1b8e0c7c1a10",
	"record_type": "Steps",
	"data_origin": "com.example.watch",
	"start_time": "2026-03-01T07:00:00Z",
	"end_time": "2026-03-01T08:00:00Z",
	"data": {"count": 1200}
}]}`

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func errorType(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.ErrorType
}

func TestInsertRecordsHandler_StoresAndServesRows(t *testing.T) {
	rows := memory.NewRowSource()
	svc := NewService(rows, memory.NewMedicalResourceStore(), 1)

	resp := send(newRouter(svc), http.MethodPost, "/v1/records", stepsBody)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	w, err := coreagg.NewInstantWindow(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	got, err := rows.FetchRows(context.Background(), coreagg.RecordTypeSteps, w, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "com.example.watch", got[0].DataOrigin)
}

func TestInsertRecordsHandler_DuplicateReturnsConflict(t *testing.T) {
	r := newRouter(NewService(memory.NewRowSource(), memory.NewMedicalResourceStore(), 1))

	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/v1/records", stepsBody).Code)

	resp := send(r, http.MethodPost, "/v1/records", stepsBody)
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, httperr.HttpDuplicateRecordError, errorType(t, resp))
}

func TestInsertRecordsHandler_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		status    int
		errorType string
	}{
		{name: "malformed json", body: `{"records": [`, status: http.StatusBadRequest, errorType: httperr.HttpInvalidJsonError},
		{name: "empty batch", body: `{"records": []}`, status: http.StatusBadRequest, errorType: httperr.HttpValidationError},
		{
			name:      "invalid record",
			body:      `{"records":[{"id":"x","record_type":"Steps","data_origin":"a","start_time":"2026-03-01T07:00:00Z"}]}`,
			status:    http.StatusBadRequest,
			errorType: httperr.HttpValidationError,
		},
		{
			name:      "oversized body",
			body:      `{"records":[],"pad":"` + strings.Repeat("x", 1024*1024) + `"}`,
			status:    http.StatusRequestEntityTooLarge,
			errorType: httperr.HttpInvalidJsonError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			writer := storagemocks.NewRecordWriter(t)
			r := newRouter(NewService(writer, storagemocks.NewMedicalResourceWriter(t), 1))

			resp := send(r, http.MethodPost, "/v1/records", tc.body)
			require.Equal(t, tc.status, resp.Code, resp.Body.String())
			require.Equal(t, tc.errorType, errorType(t, resp))
		})
	}
}

func TestInsertRecordsHandler_StoreErrorReturns500(t *testing.T) {
	writer := storagemocks.NewRecordWriter(t)
	writer.EXPECT().
		InsertRecords(mock.Anything, mock.MatchedBy(func(rows []coreagg.RawRecordRow) bool {
			return len(rows) == 1 && rows[0].RecordType == coreagg.RecordTypeSteps
		})).
		Return(errors.New("connection refused")).
		Once()

	r := newRouter(NewService(writer, storagemocks.NewMedicalResourceWriter(t), 1))
	resp := send(r, http.MethodPost, "/v1/records", stepsBody)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Equal(t, httperr.HttpInternalError, errorType(t, resp))
}

func TestUpsertMedicalResourcesHandler(t *testing.T) {
	store := memory.NewMedicalResourceStore()
	svc := NewService(memory.NewRowSource(), store, 1)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	r := newRouter(svc)

	body, err := json.Marshal(map[string]interface{}{
		"resources": []map[string]interface{}{{
			"id":             "immunization-1",
			"resource_type":  "VACCINES",
			"data_source_id": "6f1b1a44-3c1e-4d0f-9a55-2c8e7b8f0a01",
			"fhir_version":   "4.0.1",
			"data":           map[string]string{"resourceType": "Immunization"},
		}},
	})
	require.NoError(t, err)

	resp := send(r, http.MethodPut, "/v1/medical-resources", string(body))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	filter, err := paging.NewReadFilter(paging.MedicalResourceTypeVaccines, nil)
	require.NoError(t, err)
	items, _, err := store.ReadPage(context.Background(), filter, -1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, fixed, items[0].LastModified)
	require.JSONEq(t, `{"resourceType":"Immunization"}`, string(items[0].Data))

	resp = send(r, http.MethodPut, "/v1/medical-resources", `{"resources":[{"id":"a","resource_type":"VACCINES","data_source_id":"nope","fhir_version":"4.0.1","data":{}}]}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, httperr.HttpValidationError, errorType(t, resp))
}

func TestNewService_PanicsOnNilWriters(t *testing.T) {
	require.Panics(t, func() { NewService(nil, memory.NewMedicalResourceStore(), 1) })
	require.Panics(t, func() { NewService(memory.NewRowSource(), nil, 1) })
}
