// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// Running with no environment and no file gives the stock dashboard: port 8063 and
// MTA_Daily_Ridership.csv in the working directory.
//
// # Environment Variables
//
// All environment variables use the MTA_ prefix and the section name:
//
//	MTA_SERVER_PORT=8063
//	MTA_DATA_CSV_PATH=/srv/data/MTA_Daily_Ridership.csv
//	MTA_LOGGING_LEVEL=debug
//	MTA_CACHE_SIZE=512
//
// # Configuration File
//
// MTA_CONFIG_FILE names a YAML file. Without it, config.yaml and configs/config.yaml
// are tried in the working directory:
//
//	server:
//	  port: 8063
//	data:
//	  csv_path: MTA_Daily_Ridership.csv
//	logging:
//	  level: info
//	  output: both
package config
