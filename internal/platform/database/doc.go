// Package database opens the application's *sql.DB for either supported
// driver and applies the embedded goose migrations for that driver's dialect.
package database
