package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure, naming the offending key.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading ISLES_CONFIG, the ISLES_* env
	// layer, or decoding the merged result into Config.
	ErrLoadConfig = errors.New("load config failed")
)
