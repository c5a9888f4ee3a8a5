// Package memory holds in-memory storage implementations for tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/aggregation"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/paging"
)

// RowSource is an in-memory storage.RowSource with the same intersection and
// origin filter rules as the postgres adapter.
type RowSource struct {
	mu     sync.RWMutex
	nextID int64
	rows   []aggregation.RawRecordRow
}

// NewRowSource creates an empty row source.
func NewRowSource() *RowSource {
	return &RowSource{}
}

// Add stores rows, assigning row ids to rows that have none.
func (s *RowSource) Add(rows ...aggregation.RawRecordRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r.RowID == 0 {
			s.nextID++
			r.RowID = s.nextID
		} else if r.RowID > s.nextID {
			s.nextID = r.RowID
		}
		s.rows = append(s.rows, r)
	}
}

// InsertRecords stores every row or none. Row ids are assigned in order.
func (s *RowSource) InsertRecords(_ context.Context, rows []aggregation.RawRecordRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.rows)+len(rows))
	for _, r := range s.rows {
		seen[r.UUID] = true
	}
	for _, r := range rows {
		if seen[r.UUID] {
			return fmt.Errorf("record insert %s: %w", r.UUID, storage.ErrDuplicate)
		}
		seen[r.UUID] = true
	}

	for _, r := range rows {
		s.nextID++
		r.RowID = s.nextID
		s.rows = append(s.rows, r)
	}
	return nil
}

func (s *RowSource) FetchRows(
	_ context.Context,
	recordType aggregation.RecordType,
	window aggregation.TimeWindow,
	origins []string,
) ([]aggregation.RawRecordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := toSet(origins)
	bounds := aggregation.Bucket{Start: window.Start, End: window.End}

	var out []aggregation.RawRecordRow
	for _, r := range s.rows {
		if r.RecordType != recordType {
			continue
		}
		if !aggregation.Intersects(r.StartTime, r.EndTime, bounds) {
			continue
		}
		if allowed != nil && !allowed[r.DataOrigin] {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].RowID < out[j].RowID
	})
	return out, nil
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// MedicalResourceStore is an in-memory storage.MedicalResourceStore.
type MedicalResourceStore struct {
	mu        sync.RWMutex
	nextID    int64
	resources []storage.MedicalResource
}

// NewMedicalResourceStore creates an empty store.
func NewMedicalResourceStore() *MedicalResourceStore {
	return &MedicalResourceStore{}
}

// Add stores resources in insertion order, assigning increasing row ids.
func (s *MedicalResourceStore) Add(resources ...storage.MedicalResource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range resources {
		s.nextID++
		m.RowID = s.nextID
		s.resources = append(s.resources, m)
	}
}

// UpsertMedicalResources replaces resources with the same key in place and
// appends the rest.
func (s *MedicalResourceStore) UpsertMedicalResources(_ context.Context, resources []storage.MedicalResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range resources {
		replaced := false
		for i, existing := range s.resources {
			if existing.DataSourceID == m.DataSourceID && existing.ResourceType == m.ResourceType && existing.ID == m.ID {
				m.RowID = existing.RowID
				s.resources[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			s.nextID++
			m.RowID = s.nextID
			s.resources = append(s.resources, m)
		}
	}
	return nil
}

func (s *MedicalResourceStore) ReadPage(
	_ context.Context,
	filter paging.ReadFilter,
	afterRowID int64,
	limit int,
) ([]storage.MedicalResource, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := toSet(filter.DataSourceIDs())

	var (
		items   []storage.MedicalResource
		matches int64
	)
	for _, m := range s.resources {
		if m.ResourceType != filter.ResourceType() || m.RowID <= afterRowID {
			continue
		}
		if len(sources) > 0 && !sources[m.DataSourceID] {
			continue
		}
		matches++
		if len(items) < limit {
			items = append(items, m)
		}
	}
	return items, matches - int64(len(items)), nil
}

// AccessLogStore is an in-memory storage.AccessLogStore.
type AccessLogStore struct {
	mu      sync.Mutex
	entries []storage.AccessLogEntry
}

// NewAccessLogStore creates an empty store.
func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

func (s *AccessLogStore) RecordReadAccess(_ context.Context, entries []storage.AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entries...)
	return nil
}

func (s *AccessLogStore) PruneBefore(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].AccessTime.Before(s.entries[j].AccessTime)
	})

	var pruned int64
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.AccessTime.Before(cutoff) && (limit <= 0 || pruned < int64(limit)) {
			pruned++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return pruned, nil
}

// Entries returns a copy of the stored entries.
func (s *AccessLogStore) Entries() []storage.AccessLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]storage.AccessLogEntry(nil), s.entries...)
}
