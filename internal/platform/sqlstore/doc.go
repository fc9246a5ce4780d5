// Package sqlstore implements the store interfaces on database/sql.
//
// The same queries run on PostgreSQL (pgx) and SQLite (modernc). Differences
// are confined to Dialect: how timestamps are bound and how the per-pair
// attempt lock is taken. Driver errors are translated to the store package's
// sentinels by MapError and friends so callers never see driver types.
package sqlstore
