package commands

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/internal/cliutil"
	"github.com/queryline/queryline/queryline"
	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/query"
)

// RunQuery evaluates a query and prints the result. With --query-id the spec
// starts from a saved query and the other flags refine it.
func RunQuery(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var sf specFlags
	var queryID string
	bindSpecFlags(fs, &sf)
	fs.StringVar(&queryID, "query-id", "", "saved query id to start from")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	log := cliutil.NewLogger(g.Verbose)
	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	loc, err := cliutil.Location(g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)

	store, err := openStore(ctx, g, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	scope := sf.scope()
	var base *query.Spec
	if queryID != "" {
		id, err := uuid.Parse(queryID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid --query-id:", err)
			return 2
		}
		sq, err := queryline.LoadSavedQuery(ctx, store.SavedQueries(), id, user, ref)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		base = &sq.Spec
		if scope.Kind == query.ScopeGlobal && sq.Spec.Scope.Kind != query.ScopeGlobal {
			scope = sq.Spec.Scope
		}
	}

	av := query.BuildAvailable(ref, scope, user)
	spec, err := query.BuildSpec(sf.params(), av, scope, base)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	eng := newEngine(ref, store)
	result, err := eng.Run(ctx, spec, queryline.Options{
		User:     user,
		Perms:    cliPerms(),
		Location: loc,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	printResult(cliutil.ParseOutputFormat(g.Format), result, ref)
	return 0
}

func printResult(format cliutil.OutputFormat, result *queryline.Result, ref *entity.RefData) {
	switch format {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(os.Stdout, resultJSON(result, ref))
	case cliutil.FormatCSV:
		w := csv.NewWriter(os.Stdout)
		header := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			header[i] = c.Caption
		}
		_ = w.Write(header)
		for _, e := range result.Entities {
			row := make([]string, len(result.Columns))
			for i, c := range result.Columns {
				row[i] = cliutil.CellValue(e, c, ref)
			}
			_ = w.Write(row)
		}
		w.Flush()
	default:
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for i, c := range result.Columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c.Caption)
		}
		fmt.Fprintln(tw)
		for _, e := range result.Entities {
			for i, c := range result.Columns {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, cliutil.CellValue(e, c, ref))
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()

		if len(result.Groups) > 0 {
			fmt.Fprintln(os.Stdout)
			for _, grp := range result.Groups {
				fmt.Fprintf(os.Stdout, "%s: %d", grp.Label, grp.Count)
				for col, total := range grp.Totals {
					fmt.Fprintf(os.Stdout, "  %s=%s", col, total.String())
				}
				fmt.Fprintln(os.Stdout)
			}
		}
		fmt.Fprintf(os.Stdout, "\n%d entities", result.Count)
		for col, total := range result.Totals {
			fmt.Fprintf(os.Stdout, "  %s=%s", col, total.String())
		}
		fmt.Fprintln(os.Stdout)
	}
}

type groupJSON struct {
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Totals map[string]string `json:"totals,omitempty"`
}

type queryJSON struct {
	Count   int                 `json:"count"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Groups  []groupJSON         `json:"groups,omitempty"`
	Totals  map[string]string   `json:"totals,omitempty"`
}

func resultJSON(result *queryline.Result, ref *entity.RefData) queryJSON {
	out := queryJSON{Count: result.Count}
	for _, c := range result.Columns {
		out.Columns = append(out.Columns, c.Name)
	}
	for _, e := range result.Entities {
		row := make(map[string]string, len(result.Columns))
		for _, c := range result.Columns {
			row[c.Name] = cliutil.CellValue(e, c, ref)
		}
		out.Rows = append(out.Rows, row)
	}
	for _, grp := range result.Groups {
		out.Groups = append(out.Groups, groupJSON{
			Label:  grp.Label,
			Count:  grp.Count,
			Totals: totalsJSON(grp.Totals),
		})
	}
	out.Totals = totalsJSON(result.Totals)
	return out
}

func totalsJSON(totals queryline.Totals) map[string]string {
	if len(totals) == 0 {
		return nil
	}
	out := make(map[string]string, len(totals))
	for col, total := range totals {
		out[col] = total.String()
	}
	return out
}
