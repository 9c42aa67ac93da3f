package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/internal/cliutil"
	"github.com/queryline/queryline/queryline/query"
)

// RunFilters prints the filters available in a scope, with their operators
// and enumerated values.
func RunFilters(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("filters", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var sf specFlags
	bindSpecFlags(fs, &sf)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)
	av := query.BuildAvailable(ref, sf.scope(), user)

	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, av.Ordered())
		return 0
	}
	for _, def := range av.Ordered() {
		fmt.Fprintf(os.Stdout, "%s (%s)\n", def.Field, def.Type)
		fmt.Fprintf(os.Stdout, "  operators:")
		for _, op := range def.Type.Operators() {
			fmt.Fprintf(os.Stdout, " %s", op)
		}
		fmt.Fprintln(os.Stdout)
		if len(def.Values) > 0 {
			fmt.Fprintf(os.Stdout, "  values:")
			for _, v := range def.Values {
				fmt.Fprintf(os.Stdout, " %s=%s", v.Value, v.Label)
			}
			fmt.Fprintln(os.Stdout)
		}
	}
	return 0
}
