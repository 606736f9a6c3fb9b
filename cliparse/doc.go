// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in this order, later sources winning:

 1. Defaults()
 2. YAML file (-c or CONFIG_FILE)
 3. Environment variables (a .env file is loaded first by LoadDotEnv)
 4. CLI flags

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - IdentitySecret: Key for identity hashing (required)
  - AdminKey: Unlocks the bulk simulation endpoint (optional)
  - BackfillLockID: Postgres advisory lock ID (default: 424242)
  - BackfillInterval: In-process hourly backfill timer (default: off)
  - RedisURL: Snapshot cache (optional)
  - SnapshotTTL: Snapshot cache lifetime (default: 5s)
  - TrustedProxies: Proxies allowed to set X-Forwarded-For (default: none)
  - Log: level, file, rotation limits

# CLI Flags

	-c               Config file
	-p               Server port
	-d               Database URL
	-t               Database type
	-identity-secret Identity secret
	-admin-key       Admin key
	-backfill-lock   Advisory lock ID
	-backfill-every  Backfill interval
	-redis           Redis URL
	-trusted-proxies Trusted proxy IPs/CIDRs
	-log-level       Log level
	-log-file        Log file

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, IDENTITY_SECRET, ADMIN_KEY,
	BACKFILL_LOCK_ID, BACKFILL_INTERVAL, REDIS_URL, SNAPSHOT_TTL, TRUSTED_PROXIES,
	LOG_LEVEL, LOG_FILE, CONFIG_FILE

# YAML File

	port: 8080
	database_type: postgres
	database_url: postgres://feels@localhost/feels?sslmode=disable
	backfill_interval: 10m
	log:
	  level: debug
	  file: /var/log/feels/server.log
*/
package cliparse
