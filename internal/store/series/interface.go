package series

import (
	"context"
	"sync"
	"time"

	"github.com/telemetrydev/series-store/internal/util"
	"github.com/telemetrydev/series-store/pkg/db"
	"golang.org/x/sync/errgroup"
)

// SeriesStoreInterface guards the store behind a ready flag so callers
// cannot reach the database before Launch or after Stop. The store itself
// stays single-threaded glue; anything stronger is the driver's business.
type SeriesStoreInterface struct {
	h     *SeriesStore
	mu    *sync.RWMutex
	ready bool
}

func NewSeriesStoreInterface(param SeriesStoreParam, cfg SeriesStoreConfig) (*SeriesStoreInterface, error) {
	h, err := newSeriesStore(param, cfg)
	if err != nil {
		return nil, err
	}
	return &SeriesStoreInterface{
		h:     h,
		mu:    &sync.RWMutex{},
		ready: false,
	}, nil
}

func (s *SeriesStoreInterface) Launch(ctx context.Context, mainEg *errgroup.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.h.connect(ctx); err != nil {
		return err
	}
	s.ready = true
	return nil
}

func (s *SeriesStoreInterface) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	return s.h.disconnect(ctx)
}

func (s *SeriesStoreInterface) EnsureCollection(ctx context.Context, collName string, timeField string, metaField string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return Collection{}, util.ErrSeriesStoreNotReady
	}
	return s.h.ensureCollection(ctx, collName, timeField, metaField)
}

func (s *SeriesStoreInterface) AddReading(ctx context.Context, coll Collection, timestamp time.Time, value float64, tags map[string]any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return util.ErrSeriesStoreNotReady
	}
	return s.h.addReading(ctx, coll, timestamp, value, tags)
}

func (s *SeriesStoreInterface) DumpAll(ctx context.Context, coll Collection) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return 0, util.ErrSeriesStoreNotReady
	}
	return s.h.dumpAll(ctx, coll)
}

func (s *SeriesStoreInterface) DeleteAtTimestamp(ctx context.Context, coll Collection, timestamp time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return 0, util.ErrSeriesStoreNotReady
	}
	return s.h.deleteAtTimestamp(ctx, coll, timestamp)
}

func (s *SeriesStoreInterface) ReadingsBetween(ctx context.Context, coll Collection, start time.Time, end time.Time) (db.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return nil, util.ErrSeriesStoreNotReady
	}
	return s.h.readingsBetween(ctx, coll, start, end)
}

func (s *SeriesStoreInterface) ReadingsByTag(ctx context.Context, coll Collection, tagName string, tagValue any) (db.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return nil, util.ErrSeriesStoreNotReady
	}
	return s.h.readingsByTag(ctx, coll, tagName, tagValue)
}

func (s *SeriesStoreInterface) PurgeValuesOfField(ctx context.Context, coll Collection, field string) ([]PurgeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notReady() {
		return nil, util.ErrSeriesStoreNotReady
	}
	return s.h.purgeValuesOfField(ctx, coll, field)
}

func (s *SeriesStoreInterface) notReady() bool {
	return !s.ready
}
