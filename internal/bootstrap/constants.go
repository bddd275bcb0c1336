package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	LogFileNamePattern = "session_%s.log"
	LogFileExtension   = ".log"

	// LogFileRetentionLimit triggers cleanup; LogFileRetentionCount files survive it
	LogFileRetentionLimit = 10
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting EcoRewards"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file %s: %v\n"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	EventDefaultMaxRetries     = 5
	EventDefaultRetryDelay     = 2 * time.Second
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgMetricsCollectorRegistered     = "Metrics collector registered"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
	ErrMsgFailedRegisterMetrics          = "failed to register metrics collector"
)

// =============================================================================
// Storage, Catalog and Integrations
// =============================================================================

const (
	// PoolCacheSize bounds the in-process daily pool cache
	PoolCacheSize = 10000

	LogMsgMemoryStorage          = "Using in-memory storage; state is lost on restart"
	LogMsgCatalogLoaded          = "Mission catalog loaded"
	LogMsgIntegrationEnabled     = "Integration enabled"
	LogMsgIntegrationCloseFailed = "Failed to close integration client"

	ErrMsgFailedConnectDB   = "failed to connect to database"
	ErrMsgFailedLoadCatalog = "failed to load mission catalog"
)

// =============================================================================
// Workers
// =============================================================================

const (
	WorkerPoolSize  = 2
	WorkerQueueSize = 16

	LogMsgWorkersStarted            = "Background workers started"
	LogMsgSweepWorkerShutdownFailed = "Sweep worker shutdown failed"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
)
