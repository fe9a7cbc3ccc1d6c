package migrate

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	tenxMigrationSource = "modules/tenx/database/postgresql/migrations"
	tenxMigrationTable  = "tenx_schema_migrations"
)

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

type migrateOptions struct {
	DatabaseURL string
	Source      string
	Verbose     bool
}

func (o *migrateOptions) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.DatabaseURL, "database", "", "Database url to run migration on")
	flags.StringVar(&o.Source, "source", tenxMigrationSource, "Path to tenx migrations directory")
	flags.BoolVar(&o.Verbose, "verbose", false, "Print every migration step")
}

// newMigrate opens the tenx migrations against the database, keeping the
// migration version in a table of its own.
func (o *migrateOptions) newMigrate() (*migrate.Migrate, error) {
	if o.DatabaseURL == "" {
		return nil, errors.New("--database is required")
	}
	databaseURL, err := url.Parse(o.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}

	databaseURL = cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {tenxMigrationTable}})
	m, err := migrate.New("file://"+o.Source, databaseURL.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &consoleLogger{prefix: "[tenx] ", verbose: o.Verbose}
	return m, nil
}

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	var n int
	if _, err := fmt.Sscan(args[0], &n); err != nil {
		return 0, errors.Wrap(err, "failed to parse N")
	}
	if n < 0 {
		return 0, errors.New("N must be a positive integer")
	}
	return n, nil
}
