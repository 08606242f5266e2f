package series

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telemetrydev/series-store/api/structs"
	zaplog "github.com/telemetrydev/series-store/pkg/log/zap"
	"golang.org/x/sync/errgroup"
)

var (
	store *SeriesStoreInterface
)

func requireStore(t *testing.T) {
	if store == nil {
		t.Skip("DB_URI not set; skipping live database test")
	}
}

func getARandomColl(prefix string) string {
	return fmt.Sprintf("%s_%v", prefix, rand.Uint32())
}

// bson datetimes carry millisecond precision
func aTestTimestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func TestNotReadyGuard(t *testing.T) {
	logger, err := zaplog.NewZap(true)
	require.NoError(t, err)
	param := SeriesStoreParam{
		ParentLogger: logger,
		DBURI:        "mongodb://localhost:27017",
	}
	unlaunched, err := NewSeriesStoreInterface(param, NewSeriesStoreConfig())
	require.NoError(t, err)
	ctx := context.Background()
	t.Run("ensure before launch", func(t *testing.T) {
		_, err := unlaunched.EnsureCollection(ctx, "events", structs.ReadingTimeField, structs.ReadingMetaField)
		assert.Error(t, err)
	})
	t.Run("add before launch", func(t *testing.T) {
		err := unlaunched.AddReading(ctx, Collection{Name: "events"}, aTestTimestamp(), 1, nil)
		assert.Error(t, err)
	})
}

func TestMissingParentLogger(t *testing.T) {
	_, err := NewSeriesStoreInterface(SeriesStoreParam{}, NewSeriesStoreConfig())
	assert.Error(t, err)
}

func TestEnsureCollectionIdempotency(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	collName := getARandomColl("ensure")
	ts := aTestTimestamp()
	var coll Collection
	t.Run("first ensure creates", func(t *testing.T) {
		c, err := store.EnsureCollection(ctx, collName, structs.ReadingTimeField, structs.ReadingMetaField)
		if assert.NoError(t, err) {
			assert.Equal(t, collName, c.Name)
		}
		coll = c
	})
	t.Run("insert through the first handle", func(t *testing.T) {
		err := store.AddReading(ctx, coll, ts, 100, map[string]any{"k": "a"})
		assert.NoError(t, err)
	})
	t.Run("second ensure binds the same name and keeps data", func(t *testing.T) {
		c, err := store.EnsureCollection(ctx, collName, structs.ReadingTimeField, structs.ReadingMetaField)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, collName, c.Name)
		count, err := store.DumpAll(ctx, c)
		if assert.NoError(t, err) {
			assert.Equal(t, 1, count)
		}
	})
}

func TestRangeQueryRoundTrip(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	coll, err := store.EnsureCollection(ctx, getARandomColl("range"), structs.ReadingTimeField, structs.ReadingMetaField)
	require.NoError(t, err)
	ts := aTestTimestamp()
	t.Run("insert one reading", func(t *testing.T) {
		err := store.AddReading(ctx, coll, ts, 12345, map[string]any{"location": "xyz"})
		assert.NoError(t, err)
	})
	t.Run("query the degenerate range [T, T]", func(t *testing.T) {
		readings, err := drain(ctx, t, coll, ts, ts)
		if assert.NoError(t, err) && assert.Equal(t, 1, len(readings)) {
			assert.True(t, readings[0].Timestamp.Equal(ts))
			assert.Equal(t, float64(12345), readings[0].Value)
		}
	})
	t.Run("both bounds are inclusive", func(t *testing.T) {
		readings, err := drain(ctx, t, coll, ts.Add(-time.Hour), ts)
		if assert.NoError(t, err) {
			assert.Equal(t, 1, len(readings))
		}
		readings, err = drain(ctx, t, coll, ts, ts.Add(time.Hour))
		if assert.NoError(t, err) {
			assert.Equal(t, 1, len(readings))
		}
	})
	t.Run("a range before the reading is empty", func(t *testing.T) {
		readings, err := drain(ctx, t, coll, ts.Add(-2*time.Hour), ts.Add(-time.Hour))
		if assert.NoError(t, err) {
			assert.Equal(t, 0, len(readings))
		}
	})
}

func TestTagQueryExactness(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	coll, err := store.EnsureCollection(ctx, getARandomColl("tag"), structs.ReadingTimeField, structs.ReadingMetaField)
	require.NoError(t, err)
	t.Run("insert readings with different locations", func(t *testing.T) {
		assert.NoError(t, store.AddReading(ctx, coll, aTestTimestamp(), 1, map[string]any{"location": "xyz"}))
		assert.NoError(t, store.AddReading(ctx, coll, aTestTimestamp(), 2, map[string]any{"location": "abc"}))
	})
	t.Run("query one location", func(t *testing.T) {
		cursor, err := store.ReadingsByTag(ctx, coll, "location", "xyz")
		if !assert.NoError(t, err) {
			return
		}
		defer cursor.Close(ctx)
		count := 0
		for cursor.Next(ctx) {
			var reading structs.Reading
			if assert.NoError(t, cursor.Decode(&reading)) {
				assert.Equal(t, "xyz", reading.Tags["location"])
			}
			count++
		}
		if assert.NoError(t, cursor.Err()) {
			assert.Equal(t, 1, count)
		}
	})
}

func TestSharedTagScenario(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	coll, err := store.EnsureCollection(ctx, "events_"+getARandomColl("shared"), structs.ReadingTimeField, structs.ReadingMetaField)
	require.NoError(t, err)
	t0 := aTestTimestamp().Add(-time.Minute)
	t1 := aTestTimestamp()
	t.Run("insert two readings sharing a tag", func(t *testing.T) {
		assert.NoError(t, store.AddReading(ctx, coll, t0, 100, map[string]any{"k": "a"}))
		assert.NoError(t, store.AddReading(ctx, coll, t1, 200, map[string]any{"k": "a"}))
	})
	t.Run("the tag query returns both, any order", func(t *testing.T) {
		cursor, err := store.ReadingsByTag(ctx, coll, "k", "a")
		if !assert.NoError(t, err) {
			return
		}
		defer cursor.Close(ctx)
		values := map[float64]bool{}
		for cursor.Next(ctx) {
			var reading structs.Reading
			if assert.NoError(t, cursor.Decode(&reading)) {
				values[reading.Value] = true
			}
		}
		if assert.NoError(t, cursor.Err()) {
			assert.Equal(t, map[float64]bool{100: true, 200: true}, values)
		}
	})
}

func TestDeleteAtTimestampExactness(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	coll, err := store.EnsureCollection(ctx, getARandomColl("delete"), structs.ReadingTimeField, structs.ReadingMetaField)
	require.NoError(t, err)
	ts := aTestTimestamp()
	t.Run("insert two readings with the same timestamp", func(t *testing.T) {
		assert.NoError(t, store.AddReading(ctx, coll, ts, 1, map[string]any{"location": "xyz"}))
		assert.NoError(t, store.AddReading(ctx, coll, ts, 2, map[string]any{"location": "abc"}))
	})
	t.Run("delete removes exactly one", func(t *testing.T) {
		deleted, err := store.DeleteAtTimestamp(ctx, coll, ts)
		if assert.NoError(t, err) {
			assert.Equal(t, int64(1), deleted)
		}
	})
	t.Run("one reading survives", func(t *testing.T) {
		count, err := store.DumpAll(ctx, coll)
		if assert.NoError(t, err) {
			assert.Equal(t, 1, count)
		}
	})
	t.Run("deleting a missing timestamp removes nothing", func(t *testing.T) {
		deleted, err := store.DeleteAtTimestamp(ctx, coll, ts.Add(time.Hour))
		if assert.NoError(t, err) {
			assert.Equal(t, int64(0), deleted)
		}
	})
}

func TestPurgeValuesOfField(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	coll, err := store.EnsureCollection(ctx, getARandomColl("purge"), structs.ReadingTimeField, structs.ReadingMetaField)
	require.NoError(t, err)
	t.Run("insert values 1, 1, 2", func(t *testing.T) {
		for _, v := range []float64{1, 1, 2} {
			assert.NoError(t, store.AddReading(ctx, coll, aTestTimestamp(), v, map[string]any{"location": "xyz"}))
		}
	})
	t.Run("purge deletes every document per distinct value", func(t *testing.T) {
		results, err := store.PurgeValuesOfField(ctx, coll, "value")
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, 2, len(results))
		var total int64
		for _, r := range results {
			total += r.Deleted
		}
		assert.Equal(t, int64(3), total)
	})
	t.Run("nothing survives, including the unique value", func(t *testing.T) {
		count, err := store.DumpAll(ctx, coll)
		if assert.NoError(t, err) {
			assert.Equal(t, 0, count)
		}
	})
}

func drain(ctx context.Context, t *testing.T, coll Collection, start time.Time, end time.Time) ([]structs.Reading, error) {
	t.Helper()
	cursor, err := store.ReadingsBetween(ctx, coll, start, end)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var readings []structs.Reading
	for cursor.Next(ctx) {
		var reading structs.Reading
		if err := cursor.Decode(&reading); err != nil {
			return readings, err
		}
		readings = append(readings, reading)
	}
	return readings, cursor.Err()
}

func TestMain(m *testing.M) {
	var dbURI = os.Getenv("DB_URI")
	var dbName = os.Getenv("DB_NAME")
	if dbURI == "" {
		// unit tests only
		os.Exit(m.Run())
	}
	logger, err := zaplog.NewZap(true)
	if err != nil {
		log.Fatalf("cannot init a logger for testing purpose: %v", err)
	}
	cfg := NewSeriesStoreConfig()
	if dbName != "" {
		cfg.DBName = dbName
	}
	param := SeriesStoreParam{
		ParentLogger: logger,
		DBURI:        dbURI,
	}
	s, err := NewSeriesStoreInterface(param, cfg)
	if err != nil {
		logger.Fatalf("cannot init a series store for testing purpose: %v", err)
	}
	eg, ctx := errgroup.WithContext(context.Background())
	if err := s.Launch(ctx, eg); err != nil {
		logger.Fatalf("cannot launch the series store for testing purpose: %v", err)
	}
	store = s
	defer store.Stop(context.TODO())
	os.Exit(m.Run())
}
