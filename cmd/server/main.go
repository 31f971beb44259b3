/*
main.go - Application entry point

PURPOSE:
  Command-line entry point for the naturalization tracker. Runs the HTTP
  server and offers one-shot commands against the same SQLite database.

COMMANDS:
  serve      Start the HTTP API and the eligibility watcher
  evaluate   Print the eligibility verdict (--as-of, default today)
  import     Append trips from a CSV file
  export     Write the data pack to a file or stdout

CONFIGURATION (flag > env > config file > default):
  --config           Config file (default $HOME/.natz.yaml)
  --db               SQLite database path (default natz.db)
                     Use ":memory:" for an in-memory database
  --loglevel, -l     debug, info, warn, error, fatal
  --port             HTTP server port (serve)
  --watch-interval   Watcher interval, 0 disables (serve)
  --allowed-origins  CORS origins (serve)

  Environment variables use the NATZ_ prefix: NATZ_DB, NATZ_PORT,
  NATZ_WATCH_INTERVAL, ...

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the watcher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server serve --db=./data/natz.db

  # What-if for a future date
  ./server evaluate --as-of=2026-01-15

  # Load trips exported from a spreadsheet
  ./server import trips.csv

SEE ALSO:
  - api/server.go: Router configuration
  - api/watcher.go: Eligibility watcher
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
