// Package repository defines the data access interface for irisdash.
//
// The dashboard persists two things: a history of served callbacks
// (interactions) and metadata about the dataset loaded at startup. The
// dataset itself is never stored; it is fetched once per process.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on modernc.org/sqlite. The
// schema is migrated on open, so a new database file needs no setup. Tests
// use ":memory:" databases.
package repository
