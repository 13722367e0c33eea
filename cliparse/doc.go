// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first if present. Values
already in the environment win over the file.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string or sqlite file path (required)
  - DatabaseType: sqlite (default) or postgres
  - AuthSecret: HS256 secret for bearer tokens (required)
  - RedisURL: enables cross-instance live results (optional)
  - LogLevel: debug, info, warn or error (default: info)
  - AllowedOrigin: CORS origin (default: echo request origin)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-redis        Redis URL
	-log-level    Log level
	-origin       Allowed CORS origin
	-auth-secret  Bearer token secret

# Environment Variables

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	REDIS_URL      → -redis
	LOG_LEVEL      → -log-level
	ALLOWED_ORIGIN → -origin
	AUTH_SECRET    → -auth-secret

CLI flags take precedence over environment variables.
*/
package cliparse
