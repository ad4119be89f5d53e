// Package history maintains the console's bounded, deduplicated list of
// past submissions with circular cursor navigation and file-backed
// persistence.
//
// Entries are ordered oldest to newest. Pushing a text that already exists
// removes the old occurrence and appends the new one at the tail, so the
// ring never holds duplicates and resubmitting moves an entry to
// most-recent. The size bound keeps the FIRST maxSize entries when
// exceeded: overflow drops the newest entries, not the oldest. That
// prefix-truncation policy reproduces the reference tool's behavior and is
// deliberately left as is; see DESIGN.md before "fixing" it.
//
// Persistence is best effort in both directions. Save skips silently when
// the target is not writable and Load treats a missing or corrupt file as
// empty history; both report what happened through explicit result kinds
// instead of errors, so failures stay observable without ever reaching the
// evaluation flow.
package history
