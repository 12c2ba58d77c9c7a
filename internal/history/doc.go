// Package history records shadow sweeps in a SQLite database.
//
// Every `shadowkit generate` or watch-triggered sweep opens a run with Begin
// and closes it with Finish, which stores the created/skipped totals, the
// cancellation flag, and one row per item error. Runs are identified by
// UUIDs so they can be correlated with the run_id log field.
//
// The store uses the pure-Go modernc.org/sqlite driver in WAL mode and
// retries writes that hit SQLITE_BUSY when several shadowkit processes share
// one state directory.
package history
