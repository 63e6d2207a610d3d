/*
Package session implements the wizard session: one in-memory draft owned by
one UI, passed by handle to whatever needs it.

A Session serializes edits and cursor moves on its draft, notifies listeners
with a domain.DraftDiff after every change, and hands persistence to a
persistence.Autosaver so that editing never waits on I/O. Several sessions
are simply several values; there is no package-level state.
*/
package session
