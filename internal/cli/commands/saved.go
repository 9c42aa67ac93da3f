package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/internal/cliutil"
	"github.com/queryline/queryline/queryline"
	"github.com/queryline/queryline/queryline/query"
)

// RunSaved manages saved queries: list, show, save, delete.
func RunSaved(g cliopt.GlobalOptions, argv []string) int {
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queryline saved <list|show|save|delete>")
		return 2
	}
	switch argv[0] {
	case "list":
		return runSavedList(g, argv[1:])
	case "show":
		return runSavedShow(g, argv[1:])
	case "save":
		return runSavedSave(g, argv[1:])
	case "delete":
		return runSavedDelete(g, argv[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown saved command: %s\n", argv[0])
		return 2
	}
}

func runSavedList(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("saved list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var projectID int64
	fs.Int64Var(&projectID, "project", 0, "project (0 = global only)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)
	store, err := openStore(ctx, g, cliutil.NewLogger(g.Verbose))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	all, err := store.SavedQueries().List(ctx, projectID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	var visible []*queryline.SavedQuery
	for _, sq := range all {
		if sq.VisibleTo(user, ref) {
			visible = append(visible, sq)
		}
	}

	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, visible)
		return 0
	}
	for _, sq := range visible {
		scope := "global"
		if sq.ProjectID != 0 {
			scope = fmt.Sprintf("project %d", sq.ProjectID)
		}
		fmt.Fprintf(os.Stdout, "%s  %-24s %-8s %s\n", sq.ID, sq.Name, sq.Visibility, scope)
	}
	return 0
}

func runSavedShow(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("saved show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var idStr string
	fs.StringVar(&idStr, "id", "", "saved query id (required)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if idStr == "" {
		fmt.Fprintln(os.Stderr, "missing --id")
		return 2
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid --id:", err)
		return 2
	}

	ctx := context.Background()
	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)
	store, err := openStore(ctx, g, cliutil.NewLogger(g.Verbose))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	sq, err := queryline.LoadSavedQuery(ctx, store.SavedQueries(), id, user, ref)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cliutil.PrintJSON(os.Stdout, sq)
	return 0
}

func runSavedSave(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("saved save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var sf specFlags
	var name, visibility, roles string
	bindSpecFlags(fs, &sf)
	fs.StringVar(&name, "name", "", "query name (required)")
	fs.StringVar(&visibility, "visibility", "private", "visibility: private|roles|public")
	fs.StringVar(&roles, "roles", "", "role ids for roles visibility, comma-separated")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(os.Stderr, "missing --name")
		return 2
	}

	ctx := context.Background()
	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)
	if user == nil {
		fmt.Fprintln(os.Stderr, "saving requires --user")
		return 2
	}

	scope := sf.scope()
	av := query.BuildAvailable(ref, scope, user)
	spec, err := query.BuildSpec(sf.params(), av, scope, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := query.Validate(spec, av); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var roleIDs []int64
	for _, s := range splitList(roles) {
		var id int64
		if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
			fmt.Fprintln(os.Stderr, "invalid --roles:", s)
			return 2
		}
		roleIDs = append(roleIDs, id)
	}

	sq := &queryline.SavedQuery{
		ID:         uuid.New(),
		Name:       name,
		ProjectID:  sf.project,
		UserID:     user.ID,
		Visibility: queryline.Visibility(visibility),
		RoleIDs:    roleIDs,
		Spec:       *spec,
	}
	sq.Sanitize(cliPerms())

	store, err := openStore(ctx, g, cliutil.NewLogger(g.Verbose))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if err := store.SavedQueries().Put(ctx, sq); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stdout, sq.ID)
	return 0
}

func runSavedDelete(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("saved delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var idStr string
	fs.StringVar(&idStr, "id", "", "saved query id (required)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if idStr == "" {
		fmt.Fprintln(os.Stderr, "missing --id")
		return 2
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid --id:", err)
		return 2
	}

	ctx := context.Background()
	ref, err := cliutil.LoadRefData(g.RefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	user := cliutil.CurrentUser(g, ref)
	store, err := openStore(ctx, g, cliutil.NewLogger(g.Verbose))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	sq, err := queryline.LoadSavedQuery(ctx, store.SavedQueries(), id, user, ref)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !sq.EditableBy(user, cliPerms()) {
		fmt.Fprintln(os.Stderr, "not allowed to delete this query")
		return 1
	}
	if err := store.SavedQueries().Delete(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stdout, "deleted")
	return 0
}
