package models

import "errors"

var (
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrInvalidBar         = errors.New("invalid bar (high < low)")
	ErrInvalidVolume      = errors.New("invalid volume")
	ErrUnsortedSeries     = errors.New("price series is not sorted by timestamp")
	ErrDuplicateTimestamp = errors.New("duplicate timestamp in price series")
	ErrNoData             = errors.New("no price data")
	ErrAnalysisNotFound   = errors.New("analysis not found")
)
