package conf

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	k      = koanf.New(".")
	parser = yaml.Parser()
)

const (
	defaultDBURI  = "mongodb://localhost:27017"
	defaultDBName = "warehouse"
)

type GlobalUserConfig struct {
	DBURI                 string `koanf:"db_uri"`
	DBName                string `koanf:"db_name"`
	SeriesStoreUserConfig `koanf:"series_store"`
}

func NewGlobalUserConfig() GlobalUserConfig {
	return GlobalUserConfig{
		DBURI:                 defaultDBURI,
		DBName:                defaultDBName,
		SeriesStoreUserConfig: SeriesStoreUserConfig{},
	}
}

func ReadGlobalConfig(path string) (GlobalUserConfig, error) {
	globalConfig := NewGlobalUserConfig()
	if err := k.Load(file.Provider(path), parser); err != nil {
		return globalConfig, err
	}
	if err := k.Unmarshal("", &globalConfig); err != nil {
		return globalConfig, err
	}
	return globalConfig, nil
}
