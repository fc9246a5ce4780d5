package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	assert.Equal(t, "sqlite", d.String())

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestTimeArg(t *testing.T) {
	local := time.Date(2025, time.March, 5, 10, 30, 0, 1500, time.FixedZone("X", 3600))

	assert.Equal(t, "2025-03-05T09:30:00.000001500Z", SQLite.timeArg(local))
	assert.Equal(t, local.UTC(), Postgres.timeArg(local))
}

func TestTimeScanner(t *testing.T) {
	want := time.Date(2025, time.March, 5, 9, 30, 0, 1500, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{"native time", want.In(time.FixedZone("Y", -7200))},
		{"fixed-width text", "2025-03-05T09:30:00.000001500Z"},
		{"bytes", []byte("2025-03-05T09:30:00.0000015Z")},
		{"sqlite default format", "2025-03-05 09:30:00.0000015+00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Time
			require.NoError(t, scanTime(&got).Scan(tt.src))
			assert.True(t, want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	var got time.Time
	assert.Error(t, scanTime(&got).Scan(nil))
	assert.Error(t, scanTime(&got).Scan("yesterday"))
	assert.Error(t, scanTime(&got).Scan(42))
}

func TestNullTimeScanner(t *testing.T) {
	existing := time.Now()
	dst := &existing
	require.NoError(t, scanNullTime(&dst).Scan(nil))
	assert.Nil(t, dst)

	require.NoError(t, scanNullTime(&dst).Scan("2025-01-02T03:04:05.000000000Z"))
	require.NotNil(t, dst)
	assert.Equal(t, 2025, dst.Year())
}

func TestSQLiteTimeLayoutSortsLexically(t *testing.T) {
	earlier := SQLite.timeArg(time.Date(2025, 1, 1, 0, 0, 0, 900_000_000, time.UTC)).(string)
	later := SQLite.timeArg(time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)).(string)
	assert.Less(t, earlier, later)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(1, 0))
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$2, $3, $4", placeholders(2, 3))
}
