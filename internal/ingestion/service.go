package ingestion

import (
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// MaxBatchSize bounds the number of items in one write request.
const MaxBatchSize = 1000

type Service struct {
	records          storage.RecordWriter
	medical          storage.MedicalResourceWriter
	maxBodySizeBytes int
	now              func() time.Time
}

func NewService(records storage.RecordWriter, medical storage.MedicalResourceWriter, maxBodySizeMB int) *Service {
	if records == nil {
		panic("ingestion: record writer must not be nil")
	}
	if medical == nil {
		panic("ingestion: medical resource writer must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		records:          records,
		medical:          medical,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		now:              time.Now,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/records", s.InsertRecordsHandler)
	r.PUT("/v1/medical-resources", s.UpsertMedicalResourcesHandler)
}
