package conf

import (
	"reflect"
	"time"

	"github.com/telemetrydev/series-store/internal/store/series"
)

type SeriesStoreUserConfig struct {
	DefaultColl             string `koanf:"default_coll"`
	ConnectionTimeoutSecond int    `koanf:"connection_timeout_second"`
	MaxPoolSize             int    `koanf:"max_pool_size"`
	ExpireAfterSecond       int    `koanf:"expire_after_second"`
	Granularity             string `koanf:"granularity"`
}

func (c *SeriesStoreUserConfig) ParseSeriesStoreConfig() series.SeriesStoreConfig {
	cfg := series.NewSeriesStoreConfig()
	if isSet(c.DefaultColl) {
		cfg.DefaultColl = c.DefaultColl
	}
	if isSet(c.ConnectionTimeoutSecond) {
		cfg.ConnectionTimeout = time.Duration(c.ConnectionTimeoutSecond) * time.Second
	}
	if isSet(c.MaxPoolSize) {
		cfg.MaxPoolSize = uint64(c.MaxPoolSize)
	}
	if isSet(c.ExpireAfterSecond) {
		cfg.ExpireAfter = int64(c.ExpireAfterSecond)
	}
	if isSet(c.Granularity) {
		cfg.Granularity = c.Granularity
	}
	return cfg
}

func isSet(_v any) bool {
	v := reflect.ValueOf(_v)
	switch v.Kind() {
	case reflect.Int:
		return v.Int() != 0
	case reflect.String:
		return v.String() != ""
	default:
		return true
	}
}
