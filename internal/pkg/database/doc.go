// Package database opens the PostgreSQL pool and applies the embedded schema
// migrations.
package database
