package projection

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aevon-lab/project-vitals/internal/aggregation"
	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// Aggregator computes multi-metric aggregates.
type Aggregator interface {
	AggregateRecords(ctx context.Context, req aggregation.AggregateDataRequest) (*aggregation.AggregateDataResponse, error)
}

// Service implements the aggregate query layer. It turns transport DTOs into
// domain requests and names the results.
type Service struct {
	aggregator Aggregator
	registry   *coreagg.Registry
}

// NewService creates a new projection service.
func NewService(aggregator Aggregator, registry *coreagg.Registry) *Service {
	return &Service{aggregator: aggregator, registry: registry}
}

// Aggregate resolves req against the registry and runs it.
func (s *Service) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	dataReq, err := s.toDataRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.aggregator.AggregateRecords(ctx, dataReq)
	if err != nil {
		return nil, fmt.Errorf("aggregate records: %w", err)
	}

	out := &AggregateResponse{
		CallerPackage: req.CallerPackage,
		LocalTime:     dataReq.Window.Local,
		Buckets:       make([]BucketValue, 0, len(resp.Buckets)),
	}
	for _, b := range resp.Buckets {
		named := make(map[string]coreagg.AggregateResult, len(b.Results))
		for id, r := range b.Results {
			t, err := s.registry.Get(id)
			if err != nil {
				return nil, err
			}
			named[t.Name] = r
		}
		out.Buckets = append(out.Buckets, BucketValue{Start: b.Start, End: b.End, Results: named})
	}

	slog.Debug("[Projection] Aggregate served",
		"caller", req.CallerPackage,
		"aggregations", len(dataReq.AggregationIDs),
		"buckets", len(out.Buckets))
	return out, nil
}

// AggregationTypes returns the registry in id order.
func (s *Service) AggregationTypes() AggregationTypesResponse {
	return AggregationTypesResponse{Types: s.registry.All()}
}

func (s *Service) toDataRequest(req AggregateRequest) (aggregation.AggregateDataRequest, error) {
	if strings.TrimSpace(req.CallerPackage) == "" {
		return aggregation.AggregateDataRequest{}, apperr.Validationf("caller_package", "required")
	}

	ids, err := s.resolveAggregations(req.Aggregations)
	if err != nil {
		return aggregation.AggregateDataRequest{}, err
	}

	window, err := parseWindow(req)
	if err != nil {
		return aggregation.AggregateDataRequest{}, err
	}

	groupBy, err := parseGroupBy(req.GroupBy)
	if err != nil {
		return aggregation.AggregateDataRequest{}, err
	}

	return aggregation.AggregateDataRequest{
		CallerPackage:   req.CallerPackage,
		AggregationIDs:  ids,
		Window:          window,
		GroupBy:         groupBy,
		DataOrigins:     req.DataOrigins,
		RecordAccessLog: req.RecordAccessLog,
	}, nil
}

func (s *Service) resolveAggregations(refs []string) ([]coreagg.AggregationID, error) {
	ids := make([]coreagg.AggregationID, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if n, err := strconv.Atoi(ref); err == nil {
			if _, err := s.registry.Get(coreagg.AggregationID(n)); err != nil {
				return nil, err
			}
			ids = append(ids, coreagg.AggregationID(n))
			continue
		}
		t, err := s.registry.ByName(strings.ToUpper(ref))
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func parseWindow(req AggregateRequest) (coreagg.TimeWindow, error) {
	hasInstant := req.Start != nil || req.End != nil
	hasLocal := req.LocalStart != "" || req.LocalEnd != ""

	switch {
	case hasInstant && hasLocal:
		return coreagg.TimeWindow{}, apperr.Validationf("time_range", "start/end and local_start/local_end are mutually exclusive")
	case hasInstant:
		if req.Start == nil || req.End == nil {
			return coreagg.TimeWindow{}, apperr.Validationf("time_range", "start and end are both required")
		}
		return coreagg.NewInstantWindow(*req.Start, *req.End)
	case hasLocal:
		if req.LocalStart == "" || req.LocalEnd == "" {
			return coreagg.TimeWindow{}, apperr.Validationf("time_range", "local_start and local_end are both required")
		}
		start, err := time.Parse(localTimeLayout, req.LocalStart)
		if err != nil {
			return coreagg.TimeWindow{}, apperr.Validationf("local_start", "expected %s: %v", localTimeLayout, err)
		}
		end, err := time.Parse(localTimeLayout, req.LocalEnd)
		if err != nil {
			return coreagg.TimeWindow{}, apperr.Validationf("local_end", "expected %s: %v", localTimeLayout, err)
		}
		return coreagg.NewLocalWindow(start, end)
	default:
		return coreagg.TimeWindow{}, apperr.Validationf("time_range", "one of start/end or local_start/local_end is required")
	}
}

func parseGroupBy(g *GroupByRequest) (*coreagg.GroupBySpec, error) {
	if g == nil {
		return nil, nil
	}

	var (
		spec coreagg.GroupBySpec
		err  error
	)
	switch {
	case g.Period != nil && g.Duration != "":
		return nil, apperr.Validationf("group_by", "period and duration are mutually exclusive")
	case g.Period != nil:
		spec, err = coreagg.NewGroupByPeriod(*g.Period, g.Column, g.Descending)
	case g.Duration != "":
		ws, parseErr := coreagg.ParseWindowSize(g.Duration)
		if parseErr != nil {
			return nil, apperr.Validationf("group_by.duration", "%v", parseErr)
		}
		spec, err = coreagg.NewGroupByDuration(ws.Size, g.Column, g.Descending)
	default:
		return nil, apperr.Validationf("group_by", "one of period or duration is required")
	}
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
