// Package testdb opens migrated databases for tests.
//
// OpenSQLite gives every test its own in-memory database with the real
// migrations applied, so store and service tests need no external server.
// OpenPostgres connects to EXAMPREP_TEST_DB_URL and skips the test when it is
// unset; it is meant for tests built with the integration tag.
package testdb
