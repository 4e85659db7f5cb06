// Package whitelist persists the fingerprints of findings the user has
// accepted, so they never resurface in later runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// flat text file. The store stays a flat list of unique fingerprints,
// but SQLite gives us atomic concurrent-safe updates and a literal
// column recording what was whitelisted, without a hand-rolled file
// format. Runs load the whole list into memory once; matching never
// touches the database.
package whitelist
