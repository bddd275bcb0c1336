package missionpool

import "time"

// Same-day signal thresholds
const (
	CarDistanceThresholdKm  = 10.0
	ApplianceHoursThreshold = 6.0
)

// Defaults
const (
	DefaultRecentWindow = 10
	DefaultLRUSize      = 10000
	DefaultLRUTTL       = 24 * time.Hour
)

const (
	redisKeyPrefix     = "missionpool:"
	cacheSchemaVersion = "1"
	minRedisTTL        = time.Second
)

// Log messages
const (
	LogMsgPoolGenerated   = "Daily mission pool generated"
	LogMsgPoolCacheFailed = "Mission pool cache unavailable, serving uncached pool"
	LogMsgPoolStale       = "Cached mission pool references unknown missions, regenerating"
)

// Error messages
const (
	ErrMsgRecentFailed      = "failed to load recent missions"
	ErrMsgSignalFailed      = "failed to load daily signal"
	errMsgRedisEncodeFailed = "failed to encode mission pool"
	errMsgRedisDecodeFailed = "failed to decode cached mission pool"
	errMsgRedisSetNXFailed  = "failed to store mission pool"
	errMsgRedisGetFailed    = "failed to read mission pool"
)
