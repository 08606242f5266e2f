package series

import (
	"context"
	"errors"
	"time"

	"github.com/telemetrydev/series-store/api/structs"
	"github.com/telemetrydev/series-store/internal/util"
	"github.com/telemetrydev/series-store/pkg/db"
	"github.com/telemetrydev/series-store/pkg/db/common"
	mongodb "github.com/telemetrydev/series-store/pkg/db/mongo"
	"github.com/telemetrydev/series-store/pkg/log"
)

// Collection is a value handle for a time series collection. The time and
// meta field configuration is fixed by the engine when the collection is
// first created.
type Collection struct {
	Name      string
	TimeField string
	MetaField string
}

// PurgeResult reports, for one distinct field value, how many documents
// were removed.
type PurgeResult struct {
	Value   any
	Deleted int64
}

type SeriesStoreConfig struct {
	DBName            string
	DefaultColl       string
	ConnectionTimeout time.Duration
	MaxPoolSize       uint64
	ExpireAfter       int64
	Granularity       string
}

func NewSeriesStoreConfig() SeriesStoreConfig {
	return SeriesStoreConfig{
		DBName:            "warehouse",
		DefaultColl:       "readings",
		ConnectionTimeout: 5 * time.Second,
		MaxPoolSize:       10,
	}
}

type SeriesStore struct {
	name   string
	logger log.Logger
	cfg    SeriesStoreConfig
	param  SeriesStoreParam
	db     db.DB
}

func newSeriesStore(param SeriesStoreParam, cfg SeriesStoreConfig) (*SeriesStore, error) {
	if param.ParentLogger == nil {
		return nil, util.ErrParentLoggerNotInited
	}
	name := "series_store"
	logger, err := param.ParentLogger.WithCompName(name)
	if err != nil {
		return nil, err
	}
	return &SeriesStore{
		name:   name,
		logger: logger,
		cfg:    cfg,
		param:  param,
		db:     nil,
	}, nil
}

func (s *SeriesStore) connect(ctx context.Context) error {
	opts := mongodb.MongoOpts{
		DBURI:             s.param.DBURI,
		DBName:            s.cfg.DBName,
		ConnectionTimeout: s.cfg.ConnectionTimeout,
		MaxPoolSize:       s.cfg.MaxPoolSize,
		Logger:            s.logger,
	}
	handle, err := mongodb.NewMongo(opts)
	if err != nil {
		return err
	}
	s.db = handle
	return nil
}

func (s *SeriesStore) disconnect(ctx context.Context) error {
	if s.db == nil {
		return util.ErrSeriesStoreNotInited
	}
	return s.db.Close(ctx)
}

// ensureCollection creates the time series collection, or binds to the
// existing one under the requested name when it already exists. The second
// path touches no data.
func (s *SeriesStore) ensureCollection(ctx context.Context, collName string, timeField string, metaField string) (Collection, error) {
	if collName == "" {
		return Collection{}, util.ErrCollectionNotBound
	}
	coll := Collection{
		Name:      collName,
		TimeField: timeField,
		MetaField: metaField,
	}
	opts := common.TimeSeriesOpts{
		TimeField:   timeField,
		MetaField:   metaField,
		Granularity: s.cfg.Granularity,
		ExpireAfter: s.cfg.ExpireAfter,
	}
	err := s.db.CreateTimeSeriesColl(ctx, collName, opts)
	if err == nil {
		return coll, nil
	}
	if errors.Is(err, common.ErrCollectionAlreadyExists) {
		s.logger.Infof("%v. continuing with the existing collection %v", err, collName)
		return coll, nil
	}
	return Collection{}, err
}

func (s *SeriesStore) addReading(ctx context.Context, coll Collection, timestamp time.Time, value float64, tags map[string]any) error {
	reading := structs.Reading{
		Timestamp: timestamp.UTC(),
		Value:     value,
		Tags:      tags,
	}
	return s.db.Insert(ctx, coll.Name, []any{&reading})
}

// dumpAll logs every document in the collection in the engine's natural
// iteration order, streaming document by document off the cursor.
func (s *SeriesStore) dumpAll(ctx context.Context, coll Collection) (int, error) {
	cursor, err := s.db.Stream(ctx, coll.Name, common.MatchAll())
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)
	count := 0
	for cursor.Next(ctx) {
		var reading structs.Reading
		if err := cursor.Decode(&reading); err != nil {
			return count, err
		}
		s.logger.Infof("%+v", reading)
		count++
	}
	if err := cursor.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// deleteAtTimestamp removes the single document whose time field exactly
// equals the given timestamp. At most one document goes away even when
// duplicates share the timestamp.
func (s *SeriesStore) deleteAtTimestamp(ctx context.Context, coll Collection, timestamp time.Time) (int64, error) {
	selector := common.Selector{
		Op: common.SelectorEq,
		K:  coll.TimeField,
		V:  timestamp.UTC(),
	}
	deleted, err := s.db.DeleteOne(ctx, coll.Name, selector)
	if err != nil {
		return 0, err
	}
	s.logger.Infof("deleted %v document(s)", deleted)
	return deleted, nil
}

// readingsBetween streams documents with start <= time field <= end,
// inclusive on both bounds, in no guaranteed order.
func (s *SeriesStore) readingsBetween(ctx context.Context, coll Collection, start time.Time, end time.Time) (db.Cursor, error) {
	selector := common.Selector{
		Op: common.SelectorAnd,
		Sa: &common.Selector{
			Op: common.SelectorGte,
			K:  coll.TimeField,
			V:  start.UTC(),
		},
		Sb: &common.Selector{
			Op: common.SelectorLte,
			K:  coll.TimeField,
			V:  end.UTC(),
		},
	}
	return s.db.Stream(ctx, coll.Name, selector)
}

// readingsByTag streams documents whose named tag exactly equals the given
// value. One level of the tags map only; no ranges, no patterns.
func (s *SeriesStore) readingsByTag(ctx context.Context, coll Collection, tagName string, tagValue any) (db.Cursor, error) {
	selector := common.Selector{
		Op: common.SelectorEq,
		K:  coll.MetaField + "." + tagName,
		V:  tagValue,
	}
	return s.db.Stream(ctx, coll.Name, selector)
}

// purgeValuesOfField collects the distinct values of the field, then
// deletes every document matching each distinct value. Values that occur
// exactly once are removed along with the duplicated ones, so a field with
// any values at all ends up with zero documents per collected value.
func (s *SeriesStore) purgeValuesOfField(ctx context.Context, coll Collection, field string) ([]PurgeResult, error) {
	values, err := s.db.Distinct(ctx, coll.Name, field)
	if err != nil {
		return nil, err
	}
	results := make([]PurgeResult, 0, len(values))
	for _, value := range values {
		selector := common.Selector{
			Op: common.SelectorEq,
			K:  field,
			V:  value,
		}
		deleted, err := s.db.DeleteMany(ctx, coll.Name, selector)
		if err != nil {
			return results, err
		}
		s.logger.Infof("deleted %v documents with value %v", deleted, value)
		results = append(results, PurgeResult{
			Value:   value,
			Deleted: deleted,
		})
	}
	return results, nil
}
