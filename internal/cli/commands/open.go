package commands

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/queryline"
	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/storage"
	"github.com/queryline/queryline/queryline/storage/postgres"
	"github.com/queryline/queryline/queryline/storage/sqlite"
)

// adapterFor selects the storage backend from global flags.
func adapterFor(g cliopt.GlobalOptions) storage.Adapter {
	switch strings.ToLower(g.Backend) {
	case "postgres", "pg":
		return postgres.New(g.PostgresDSN, g.PGSchema)
	default:
		return sqlite.NewWithDriver(g.SQLitePath, g.SQLiteDriver)
	}
}

func openStore(ctx context.Context, g cliopt.GlobalOptions, log *logrus.Logger) (*storage.Store, error) {
	return storage.Open(ctx, adapterFor(g), log)
}

// cliPerms is the permission set the CLI operates with. The engine is the
// authorization boundary in a server deployment; a local operator gets the
// full set.
func cliPerms() queryline.Permissions {
	return queryline.Permissions{
		"view_time_entries":           true,
		queryline.ManagePublicQueries: true,
	}
}

func newEngine(ref *entity.RefData, src queryline.Source) *queryline.Engine {
	return &queryline.Engine{
		Ref:    ref,
		Source: src,
		Scoper: &queryline.ProjectScoper{Ref: ref},
	}
}

// multiString is a repeatable string flag.
type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }
func (m *multiString) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
