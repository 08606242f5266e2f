package db

import (
	"context"

	"github.com/telemetrydev/series-store/pkg/db/common"
)

// Cursor is a lazy, single-pass handle over query results. Results stream
// from the server as Next advances; a cursor is restartable only by
// re-running the query that produced it. The caller owns Close.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(obj any) error
	Err() error
	Close(ctx context.Context) error
}

// DB is the document store contract the series store is built on. Every
// operation blocks until the server responds or the per-call timeout fires;
// no operation retries.
type DB interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	CreateTimeSeriesColl(ctx context.Context, collName string, opts common.TimeSeriesOpts) error
	FindColl(ctx context.Context, collName string) (bool, error)

	Insert(ctx context.Context, collName string, objs []any) error
	GetOne(ctx context.Context, collName string, selector common.Selector, obj any) (bool, error)
	Get(ctx context.Context, collName string, selector common.Selector, objs any, opts common.FindOpts) error
	Stream(ctx context.Context, collName string, selector common.Selector) (Cursor, error)

	DeleteOne(ctx context.Context, collName string, selector common.Selector) (int64, error)
	DeleteMany(ctx context.Context, collName string, selector common.Selector) (int64, error)
	Distinct(ctx context.Context, collName string, field string) ([]any, error)
}
