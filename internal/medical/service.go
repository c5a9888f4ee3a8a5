package medical

import (
	"context"
	"log/slog"
	"time"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/paging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPageSize = 1000
	MaxPageSize     = 5000
)

var tracer = otel.Tracer("vitals.medical")

var medicalReads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vitals_medical_reads_total",
		Help: "Paged medical resource reads by kind and outcome.",
	},
	[]string{"kind", "status"},
)

// ReadInitialRequest starts a paged read.
type ReadInitialRequest struct {
	Filter   paging.ReadFilter
	PageSize int
}

// ReadPageRequest continues a paged read from a token.
type ReadPageRequest struct {
	PageToken string
	PageSize  int
}

// ServiceOptions bounds page sizes.
type ServiceOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (o ServiceOptions) normalized() ServiceOptions {
	n := o
	if n.MaxPageSize <= 0 {
		n.MaxPageSize = MaxPageSize
	}
	if n.DefaultPageSize <= 0 {
		n.DefaultPageSize = DefaultPageSize
	}
	if n.DefaultPageSize > n.MaxPageSize {
		n.DefaultPageSize = n.MaxPageSize
	}
	return n
}

// Service serves cursor-paged medical resource reads.
type Service struct {
	store storage.MedicalResourceStore
	opts  ServiceOptions
}

// NewService creates a medical read service.
func NewService(store storage.MedicalResourceStore, opts ServiceOptions) *Service {
	return &Service{store: store, opts: opts.normalized()}
}

// Response is one page of medical resources.
type Response = paging.PagedReadResponse[storage.MedicalResource]

// ReadInitial reads the first page for a filter.
func (s *Service) ReadInitial(ctx context.Context, req ReadInitialRequest) (resp Response, err error) {
	ctx, span := tracer.Start(ctx, "medical.read_initial",
		trace.WithAttributes(attribute.String("resource_type", req.Filter.ResourceType().String())))
	defer func() { finish(span, "initial", err) }()

	size, err := s.pageSize(req.PageSize)
	if err != nil {
		return Response{}, err
	}
	if !req.Filter.ResourceType().Valid() {
		return Response{}, apperr.Validationf("resource_type", "a medical resource type is required")
	}
	return s.read(ctx, paging.InitialPageToken(&req.Filter), req.Filter, size)
}

// ReadPage continues from a page token. The token carries the filter of the
// original read; a token that cannot be decoded is rejected, never restarted.
func (s *Service) ReadPage(ctx context.Context, req ReadPageRequest) (resp Response, err error) {
	ctx, span := tracer.Start(ctx, "medical.read_page")
	defer func() { finish(span, "page", err) }()

	size, err := s.pageSize(req.PageSize)
	if err != nil {
		return Response{}, err
	}
	tok, err := paging.DecodePageToken(req.PageToken)
	if err != nil {
		return Response{}, err
	}
	filter, ok := tok.Filter()
	if !ok {
		return Response{}, apperr.CorruptTokenf("token carries no read filter")
	}
	span.SetAttributes(
		attribute.String("resource_type", filter.ResourceType().String()),
		attribute.Int64("last_row_id", tok.LastRowID()),
	)
	return s.read(ctx, tok, filter, size)
}

func (s *Service) read(ctx context.Context, tok paging.PageToken, filter paging.ReadFilter, size int) (Response, error) {
	started := time.Now()
	items, remaining, err := s.store.ReadPage(ctx, filter, tok.LastRowID(), size)
	if err != nil {
		return Response{}, err
	}

	lastRowID := tok.LastRowID()
	if len(items) > 0 {
		lastRowID = items[len(items)-1].RowID
	}

	resp, err := paging.BuildPagedResponse(items, lastRowID, remaining, &filter)
	if err != nil {
		return Response{}, err
	}

	slog.Debug("[Medical] Read page",
		"resource_type", filter.ResourceType().String(),
		"after_row_id", tok.LastRowID(),
		"items", len(items),
		"remaining", remaining,
		"duration", time.Since(started))
	return resp, nil
}

func (s *Service) pageSize(requested int) (int, error) {
	switch {
	case requested == 0:
		return s.opts.DefaultPageSize, nil
	case requested < 1 || requested > s.opts.MaxPageSize:
		return 0, apperr.Validationf("page_size", "must be between 1 and %d, got %d", s.opts.MaxPageSize, requested)
	}
	return requested, nil
}

func finish(span trace.Span, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	medicalReads.WithLabelValues(kind, status).Inc()
	span.End()
}
