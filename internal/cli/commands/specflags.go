package commands

import (
	"flag"
	"strings"

	"github.com/queryline/queryline/queryline/query"
)

// specFlags are the query-shaping flags shared by the query and saved-save
// commands. Filters use the short form, "field=expression".
type specFlags struct {
	project int64
	tree    bool
	filters multiString
	sort    string
	groupBy string
	columns string
	totals  string
}

func bindSpecFlags(fs *flag.FlagSet, sf *specFlags) {
	fs.Int64Var(&sf.project, "project", 0, "project scope (0 = global)")
	fs.BoolVar(&sf.tree, "tree", false, "include subprojects in the scope")
	fs.Var(&sf.filters, "filter", "short filter field=expression (repeatable)")
	fs.StringVar(&sf.sort, "sort", "", "sort criteria, e.g. priority:desc,id")
	fs.StringVar(&sf.groupBy, "group-by", "", "group column")
	fs.StringVar(&sf.columns, "columns", "", "columns, comma-separated (or all_inline)")
	fs.StringVar(&sf.totals, "totals", "", "total columns, comma-separated")
}

func (sf *specFlags) scope() query.Scope {
	switch {
	case sf.project == 0:
		return query.Scope{Kind: query.ScopeGlobal}
	case sf.tree:
		return query.Scope{Kind: query.ScopeProjectTree, ProjectID: sf.project}
	default:
		return query.Scope{Kind: query.ScopeProject, ProjectID: sf.project}
	}
}

// params translates the flags into the engine's parameter contract.
func (sf *specFlags) params() query.Params {
	p := query.Params{}
	if len(sf.filters) > 0 {
		p["set_filter"] = []string{"1"}
		for _, f := range sf.filters {
			name, expr, found := strings.Cut(f, "=")
			if !found {
				name, expr = f, "*"
			}
			p[name] = append(p[name], expr)
		}
	}
	if sf.sort != "" {
		p["sort"] = []string{sf.sort}
	}
	if sf.groupBy != "" {
		p["group_by"] = []string{sf.groupBy}
	}
	if cols := splitList(sf.columns); len(cols) > 0 {
		p["c[]"] = cols
	}
	if totals := splitList(sf.totals); len(totals) > 0 {
		p["t[]"] = totals
	}
	return p
}
