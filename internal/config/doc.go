// Package config loads the server settings (HTTP server, database, JWT
// signing and realtime channel tuning) from defaults, an optional
// config.yaml, a .env file and JOBCHAT_* environment variables, and
// validates them before anything else starts.
package config
