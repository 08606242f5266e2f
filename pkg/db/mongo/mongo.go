package mongo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/telemetrydev/series-store/pkg/db"
	"github.com/telemetrydev/series-store/pkg/db/common"
	errutil "github.com/telemetrydev/series-store/pkg/errors/util"
	"github.com/telemetrydev/series-store/pkg/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	ErrSelectorConvertFailed = errors.New("unable to convert the selector to a filter. maybe this selector is invalid")
)

var _ db.DB = (*Mongo)(nil)

type MongoOpts struct {
	DBURI             string
	DBName            string
	ConnectionTimeout time.Duration
	MaxPoolSize       uint64
	// a specific ip used for the outgoing connection to mongo. This needs to be set alongside SrcPort
	SrcIP string
	// a specific port used for the outgoing connection to mongo. If it's zero, choose a random one.
	SrcPort uint32
	Logger  log.Logger
}

type Mongo struct {
	logger   log.Logger
	dbClient *mongo.Client
	database *mongo.Database
	opts     MongoOpts
}

// NewMongo builds a handle bound to the named database. The driver dials
// lazily, so an unreachable server surfaces on first use, not here; call
// Ping for an eager check.
func NewMongo(opts MongoOpts) (*Mongo, error) {
	clientOpts := options.Client().ApplyURI(opts.DBURI).SetMaxPoolSize(opts.MaxPoolSize)
	if opts.SrcPort != 0 {
		mongoClientAddr := fmt.Sprintf("%v:%v", opts.SrcIP, opts.SrcPort)
		localAddr, err := net.ResolveTCPAddr("tcp", mongoClientAddr)
		if err != nil {
			return nil, err
		}
		d := net.Dialer{
			LocalAddr: localAddr,
		}
		clientOpts.SetDialer(&d)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	return &Mongo{
		logger:   opts.Logger,
		database: client.Database(opts.DBName),
		dbClient: client,
		opts:     opts,
	}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.dbClient.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	return m.dbClient.Disconnect(_ctx)
}

func (m *Mongo) FindColl(ctx context.Context, collName string) (bool, error) {
	nameOnly := true
	opts := options.ListCollectionsOptions{
		NameOnly: &nameOnly,
	}
	var exists bool = false
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	if names, err := m.database.ListCollectionNames(_ctx, bson.D{}, &opts); err != nil {
		return false, err
	} else {
		for _, name := range names {
			if name == collName {
				exists = true
				break
			}
		}
	}
	return exists, nil
}

func (m *Mongo) CreateTimeSeriesColl(ctx context.Context, collName string, opts common.TimeSeriesOpts) error {
	tsOpts := options.TimeSeriesOptions{
		TimeField: opts.TimeField,
		MetaField: &opts.MetaField,
	}
	if opts.Granularity != "" {
		tsOpts.Granularity = &opts.Granularity
	}
	_opts := options.CreateCollectionOptions{
		TimeSeriesOptions: &tsOpts,
	}
	if opts.ExpireAfter > 0 {
		eas := opts.ExpireAfter
		_opts.ExpireAfterSeconds = &eas
	}
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	err := m.database.CreateCollection(_ctx, collName, &_opts)
	if err == nil {
		return nil
	}
	// check if the error is caused by existing collection
	if exists, findErr := m.FindColl(_ctx, collName); findErr != nil {
		return errutil.Err(common.ErrCollectionCheckFailed, findErr)
	} else if !exists {
		return errutil.Err(common.ErrCollectionCreateFailed, err)
	} else {
		return common.ErrCollectionAlreadyExists
	}
}

func (m *Mongo) Insert(ctx context.Context, collName string, objs []any) error {
	coll := m.getCurColl(collName)
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	opts := options.InsertMany().SetOrdered(false)
	if _, err := coll.InsertMany(_ctx, objs, opts); err != nil {
		return err
	}
	return nil
}

func (m *Mongo) GetOne(ctx context.Context, collName string, selector common.Selector, obj any) (bool, error) {
	coll := m.getCurColl(collName)
	filter, err := ToBSONFilter(&selector)
	if err != nil {
		return false, err
	}
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	if err := coll.FindOne(_ctx, *filter).Decode(obj); err == nil {
		return true, nil
	} else if err == mongo.ErrNoDocuments {
		return false, nil
	} else {
		return false, err
	}
}

func (m *Mongo) Get(ctx context.Context, collName string, selector common.Selector, objs any, opts common.FindOpts) error {
	var mongoOpts *options.FindOptions
	if opts.Size > 0 {
		mongoOpts = options.Find().SetLimit(int64(opts.Size))
	}
	filter, err := ToBSONFilter(&selector)
	if err != nil {
		return err
	}
	coll := m.getCurColl(collName)
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	cursor, err := coll.Find(_ctx, *filter, mongoOpts)
	if err != nil {
		return err
	}
	if err = cursor.All(_ctx, objs); err != nil {
		return err
	}
	return nil
}

// Stream runs the query and hands the raw server cursor to the caller, so
// large result sets never buffer client-side. Iteration runs on the
// caller's context: the per-call timeout only covers establishing the
// cursor, not draining it.
func (m *Mongo) Stream(ctx context.Context, collName string, selector common.Selector) (db.Cursor, error) {
	filter, err := ToBSONFilter(&selector)
	if err != nil {
		return nil, err
	}
	coll := m.getCurColl(collName)
	c, err := coll.Find(ctx, *filter)
	if err != nil {
		return nil, err
	}
	return &cursor{c: c}, nil
}

func (m *Mongo) DeleteOne(ctx context.Context, collName string, selector common.Selector) (int64, error) {
	coll := m.getCurColl(collName)
	filter, err := ToBSONFilter(&selector)
	if err != nil {
		return 0, err
	}
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	result, err := coll.DeleteOne(_ctx, *filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (m *Mongo) DeleteMany(ctx context.Context, collName string, selector common.Selector) (int64, error) {
	coll := m.getCurColl(collName)
	filter, err := ToBSONFilter(&selector)
	if err != nil {
		return 0, err
	}
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	result, err := coll.DeleteMany(_ctx, *filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (m *Mongo) Distinct(ctx context.Context, collName string, field string) ([]any, error) {
	coll := m.getCurColl(collName)
	_ctx, cancel := context.WithTimeout(ctx, m.opts.ConnectionTimeout)
	defer cancel()
	return coll.Distinct(_ctx, field, bson.D{})
}

func (m *Mongo) getCurColl(collName string) *mongo.Collection {
	return m.database.Collection(collName)
}

type cursor struct {
	c *mongo.Cursor
}

func (c *cursor) Next(ctx context.Context) bool {
	return c.c.Next(ctx)
}

func (c *cursor) Decode(obj any) error {
	return c.c.Decode(obj)
}

func (c *cursor) Err() error {
	return c.c.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	return c.c.Close(ctx)
}
