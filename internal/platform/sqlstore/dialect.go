package sqlstore

import (
	"fmt"
	"time"

	"github.com/phrazzld/examprep-api/internal/config"
)

// Dialect selects the SQL variant a store speaks.
type Dialect int

const (
	// Postgres uses native TIMESTAMPTZ columns and advisory locks.
	Postgres Dialect = iota
	// SQLite stores timestamps as fixed-width UTC text and relies on the
	// single-connection pool to serialize writers.
	SQLite
)

// sqliteTimeLayout sorts lexically in time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// DialectFor maps a configured driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	if d == SQLite {
		return config.DriverSQLite
	}
	return config.DriverPostgres
}

// timeArg converts t to the bind value for a timestamp column.
func (d Dialect) timeArg(t time.Time) any {
	if d == SQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

var timeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// timeScanner reads a timestamp column from either driver into UTC.
type timeScanner struct {
	dst *time.Time
}

// Scan implements sql.Scanner.
func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		*s.dst = t
		return nil
	case []byte:
		return s.Scan(string(v))
	case nil:
		return fmt.Errorf("unexpected NULL timestamp")
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

// nullTimeScanner is timeScanner for nullable columns.
type nullTimeScanner struct {
	dst **time.Time
}

// Scan implements sql.Scanner.
func (s nullTimeScanner) Scan(src any) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var t time.Time
	if err := (timeScanner{dst: &t}).Scan(src); err != nil {
		return err
	}
	*s.dst = &t
	return nil
}

func scanTime(dst *time.Time) timeScanner          { return timeScanner{dst: dst} }
func scanNullTime(dst **time.Time) nullTimeScanner { return nullTimeScanner{dst: dst} }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	b := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, fmt.Sprintf("$%d", start+i)...)
	}
	return string(b)
}
