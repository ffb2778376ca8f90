// Package commands defines the fpc-bot CLI.
//
// Commands
//
//   - info      Print the vote count of every current nomination
//   - close     Propose result annotations for finished nominations
//   - check     Recount a closed log and compare with the recorded results
//   - sync      Mirror the candidate list into the local database
//   - search    Query evaluated nominations
//   - reindex   Rebuild the search index from the database
//   - stats     Show database and index statistics
//   - serve     Start the read-only web dashboard
//
// # Configuration
//
// Settings come from built-in defaults, the --config TOML file, the --env-file
// (default .env), FPC_* environment variables and flags, later layers winning.
// info, check and close read from the wiki unless --offline is given, in which
// case they read the snapshot written by sync.
package commands
