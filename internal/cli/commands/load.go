package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/internal/cliutil"
	"github.com/queryline/queryline/queryline/entity"
)

// RunLoad imports entities from a JSONL stream, one entity object per line.
func RunLoad(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var importPath string
	fs.StringVar(&importPath, "import", "", "JSONL file (default: stdin)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	r := os.Stdin
	if importPath != "" {
		f, err := os.Open(importPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		r = f
	}

	var entities []*entity.Entity
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e entity.Entity
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		entities = append(entities, &e)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := context.Background()
	log := cliutil.NewLogger(g.Verbose)
	store, err := openStore(ctx, g, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if err := store.PutEntities(ctx, entities); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "loaded %d\n", len(entities))
	return 0
}
