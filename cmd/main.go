package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/telemetrydev/series-store/api/structs"
	"github.com/telemetrydev/series-store/internal/conf"
	"github.com/telemetrydev/series-store/internal/store/series"
	"github.com/telemetrydev/series-store/pkg/db"
	"github.com/telemetrydev/series-store/pkg/log"
	zaplog "github.com/telemetrydev/series-store/pkg/log/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConfigPath = "/etc/series-store/config/config.yml"
	configPathEnv     = "CONFIG_PATH"
	dbURIEnv          = "DB_URI"
)

// a fixed demonstration sequence; the library surface lives under
// internal/store/series and pkg/db
func main() {
	logger, err := zaplog.NewZap(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create the logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}
	globalConfig, err := conf.ReadGlobalConfig(configPath)
	if err != nil {
		logger.Infof("no usable config at %v (%v); continuing with defaults", configPath, err)
	}
	if uri := os.Getenv(dbURIEnv); uri != "" {
		globalConfig.DBURI = uri
	}
	cfg := globalConfig.ParseSeriesStoreConfig()
	cfg.DBName = globalConfig.DBName

	param := series.SeriesStoreParam{
		ParentLogger: logger,
		DBURI:        globalConfig.DBURI,
	}
	store, err := series.NewSeriesStoreInterface(param, cfg)
	if err != nil {
		logger.Errorf("failed to create the series store: %v", err)
		return
	}
	mainEg, ctx := errgroup.WithContext(context.Background())
	if err := store.Launch(ctx, mainEg); err != nil {
		logger.Errorf("failed to launch the series store: %v", err)
		return
	}
	defer store.Stop(context.TODO())

	coll, err := store.EnsureCollection(ctx, cfg.DefaultColl, structs.ReadingTimeField, structs.ReadingMetaField)
	if err != nil {
		logger.Errorf("failed to ensure the collection: %v", err)
		return
	}

	// insert some readings into the collection
	timestamp1 := time.Now().UTC().Add(-24 * time.Hour)
	tags1 := map[string]any{"bounding_box_count": 1, "location": "xyz", "value": 1223}
	if err := store.AddReading(ctx, coll, timestamp1, 12345, tags1); err != nil {
		logger.Errorf("failed to add the first reading: %v", err)
		return
	}
	timestamp2 := time.Now().UTC().Add(-6 * time.Hour)
	tags2 := map[string]any{"bounding_box_count": 2, "location": "abc", "value": 5657}
	if err := store.AddReading(ctx, coll, timestamp2, 67890, tags2); err != nil {
		logger.Errorf("failed to add the second reading: %v", err)
		return
	}

	logger.Info("all documents:")
	if _, err := store.DumpAll(ctx, coll); err != nil {
		logger.Errorf("failed to dump the collection: %v", err)
		return
	}

	logger.Infof("deleting the document with timestamp %v", timestamp1)
	if _, err := store.DeleteAtTimestamp(ctx, coll, timestamp1); err != nil {
		logger.Errorf("failed to delete by timestamp: %v", err)
		return
	}

	now := time.Now().UTC()
	logger.Infof("documents with timestamps between %v and %v:", timestamp2, now)
	between, err := store.ReadingsBetween(ctx, coll, timestamp2, now)
	if err != nil {
		logger.Errorf("failed to query by timestamp range: %v", err)
		return
	}
	if err := dump(ctx, logger, between); err != nil {
		logger.Errorf("failed to iterate the range query: %v", err)
		return
	}

	logger.Info("documents with value=5657:")
	tagged, err := store.ReadingsByTag(ctx, coll, "value", 5657)
	if err != nil {
		logger.Errorf("failed to query by tag: %v", err)
		return
	}
	if err := dump(ctx, logger, tagged); err != nil {
		logger.Errorf("failed to iterate the tag query: %v", err)
		return
	}
}

func dump(ctx context.Context, logger log.Logger, cursor db.Cursor) error {
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var reading structs.Reading
		if err := cursor.Decode(&reading); err != nil {
			return err
		}
		logger.Infof("%+v", reading)
	}
	return cursor.Err()
}
