package cliopt

import "flag"

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	Backend      string
	SQLitePath   string
	SQLiteDriver string
	PostgresDSN  string
	PGSchema     string

	RefPath  string
	UserID   int64
	TimeZone string

	Format  string
	Verbose bool
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:      "sqlite",
		SQLitePath:   "queryline.db",
		SQLiteDriver: "sqlite",
		PGSchema:     "queryline",
		Format:       "pretty",
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file path")
	fs.StringVar(&g.SQLiteDriver, "sqlite-driver", g.SQLiteDriver, "registered sqlite driver name (sqlite or sqlite3)")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PGSchema, "pg-schema", g.PGSchema, "postgres schema name")

	fs.StringVar(&g.RefPath, "ref", g.RefPath, "reference data JSON file")
	fs.Int64Var(&g.UserID, "user", g.UserID, "acting user id (0 = anonymous)")
	fs.StringVar(&g.TimeZone, "tz", g.TimeZone, "IANA time zone for relative dates (default: local)")

	fs.StringVar(&g.Format, "format", g.Format, "output format: pretty|json|csv")
	fs.BoolVar(&g.Verbose, "v", g.Verbose, "verbose logging")
}
