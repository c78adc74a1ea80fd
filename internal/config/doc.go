// Package config loads server, database, auth, CORS and upload settings from
// defaults, an optional YAML file and FLASHCARDS_* environment variables, and
// validates them before the server starts.
package config
