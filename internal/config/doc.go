// Package config loads the taskdown server configuration.
//
// Settings come from a YAML file (by default ~/.taskdown/config.yaml, or the
// file named by TASKDOWN_CONFIG) and are then overridden by TASKDOWN_*
// environment variables:
//
//	TASKDOWN_DB_ENGINE        database.engine
//	TASKDOWN_LOG_LEVEL        logging.level
//	TASKDOWN_LOG_FORMAT       logging.format
//	TASKDOWN_VAULT            vault.path
//	TASKDOWN_MAX_ASSET_BYTES  assets.max_image_bytes
//
// Example config.yaml:
//
//	database:
//	  engine: native
//	  wal_mode: true
//	logging:
//	  level: debug
//	  format: text
//	vault:
//	  last_vault_path: /Users/me/Notes
package config
