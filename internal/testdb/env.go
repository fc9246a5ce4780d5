package testdb

import "os"

// EnvTestDatabaseURL names the variable holding a Postgres URL for integration tests.
const EnvTestDatabaseURL = "EXAMPREP_TEST_DB_URL"

// GetTestDatabaseURL returns the configured Postgres test URL, or "".
func GetTestDatabaseURL() string {
	return os.Getenv(EnvTestDatabaseURL)
}

// ShouldSkipDatabaseTest reports whether Postgres-backed tests must be skipped.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
