package config

import "time"

// Application constants
const (
	AppName    = "MTA Ridership Pulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. MTA_SERVER_PORT.
	EnvPrefix = "MTA"

	// ConfigFileEnv points at an explicit YAML config file.
	ConfigFileEnv = "MTA_CONFIG_FILE"

	DefaultPort          = 8063
	DefaultDataFile      = "MTA_Daily_Ridership.csv"
	DefaultPandemicStart = "2020-03-01"

	DefaultRateLimit = 100
	DefaultBurstSize = 50

	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute

	DefaultHTTPTimeout = 30 * time.Second
)
