/*
Package persistence reads and writes campaign drafts.

Controller turns a draft into a JSON record keyed draft-<id> in any
ports.DraftStore, assigning ids on first save. Loading never fails: a
missing, malformed or unreadable record yields a fresh draft.

Autosaver sits between a live draft and the Controller. Every mutation calls
Touch, which replaces the scheduled save, so a burst of edits produces one
write. A gocron job saves periodically as a backstop. Write failures are
logged and retried on the next cycle.
*/
package persistence
