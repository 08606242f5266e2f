package series

import (
	"github.com/telemetrydev/series-store/pkg/log"
)

type SeriesStoreParam struct {
	ParentLogger log.Logger
	DBURI        string
}
