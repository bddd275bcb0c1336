package config

const (
	// Configuration file paths
	ConfigPathMissionCatalog = "configs/missions/catalog.json"
	ConfigPathMissionSchema  = "configs/schemas/mission_catalog.schema.json"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Mission repeat policies
const (
	RepeatPolicyOnce  = "once"
	RepeatPolicyDaily = "daily"
)
