package util

import (
	"errors"
)

var (
	ErrParentLoggerNotInited = errors.New("the parent logger is not passed or not initialized")
	ErrLoggerNotInited       = errors.New("the logger is not initialized")

	// store
	ErrSeriesStoreNotInited = errors.New("the series store is not passed or not initialized")
	ErrSeriesStoreNotReady  = errors.New("the series store is not ready")
	ErrCollectionNotBound   = errors.New("the collection handle is not bound to a name")
)
