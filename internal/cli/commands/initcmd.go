package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/internal/cliutil"
)

// RunInit creates the database schema and, when --ref is given, mirrors the
// project and membership reference data into it.
func RunInit(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	log := cliutil.NewLogger(g.Verbose)
	store, err := openStore(ctx, g, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if g.RefPath != "" {
		ref, err := cliutil.LoadRefData(g.RefPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := store.SeedRef(ctx, ref); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "initialized (%d projects)\n", len(ref.Projects))
		return 0
	}
	fmt.Fprintln(os.Stdout, "initialized")
	return 0
}
