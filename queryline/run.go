package queryline

import (
	"context"
	"time"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
	"github.com/queryline/queryline/queryline/query"
)

// Scoper is the authorization collaborator. The predicate it returns wraps
// every evaluation, whatever the output format and whatever the filters, so a
// crafted filter can never widen visibility.
type Scoper interface {
	VisiblePredicate(u *entity.User) planner.Node
}

// ScoperFunc adapts a function to the Scoper interface.
type ScoperFunc func(u *entity.User) planner.Node

func (f ScoperFunc) VisiblePredicate(u *entity.User) planner.Node {
	return f(u)
}

// Source supplies candidate entities for a compiled predicate. A source may
// over-approximate (return a superset); the engine re-checks every entity
// against the full predicate before anything downstream sees it.
type Source interface {
	Fetch(ctx context.Context, pred planner.Node) ([]*entity.Entity, error)
}

// Options are the per-request inputs: caller identity, permissions and time
// zone. Now is overridable for tests.
type Options struct {
	User     *entity.User
	Perms    Permissions
	Location *time.Location
	Now      func() time.Time
}

// Result is the engine's format-independent output: ordered entities, the
// resolved projection, groups and totals. Renderers consume it as-is.
type Result struct {
	Entities []*entity.Entity
	Columns  []Column
	Groups   []Group
	Totals   Totals
	Count    int
}

// Engine evaluates query specs against a source under a visibility scope. It
// holds only read-only reference data and is safe for concurrent use.
type Engine struct {
	Ref    *entity.RefData
	Source Source
	Scoper Scoper
}

// Run validates, compiles and evaluates a spec. Validation failure aborts
// before any row is touched; the spec keeps its filters for re-display.
func (eng *Engine) Run(ctx context.Context, spec *query.Spec, opts Options) (*Result, error) {
	av := query.BuildAvailable(eng.Ref, spec.Scope, opts.User)
	if err := query.Validate(spec, av); err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	dctx := query.NewDateContext(now().In(loc), eng.Ref.FirstDayOfWeek)

	cctx := &planner.Context{
		Today:     dctx.Today,
		WeekStart: dctx.WeekStart,
		User:      opts.User,
		Ref:       eng.Ref,
	}
	pred, err := planner.CompileSpec(spec, av, cctx)
	if err != nil {
		return nil, err
	}
	if eng.Scoper != nil {
		pred = planner.And{Children: []planner.Node{eng.Scoper.VisiblePredicate(opts.User), pred}}
	}

	fetched, err := eng.Source.Fetch(ctx, pred)
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Entity, 0, len(fetched))
	for _, e := range fetched {
		if planner.Eval(pred, e, eng.Ref) {
			entities = append(entities, e)
		}
	}

	available := AvailableColumns(eng.Ref, spec.Scope)
	columns := ResolveColumns(spec.Columns, available, spec.Scope, opts.Perms)

	groupBy := ""
	var groupCol *Column
	if spec.GroupBy != "" {
		if c, ok := GroupableColumn(spec.GroupBy, available); ok {
			groupBy = c.Name
			groupCol = &c
		}
	}

	plan := planner.BuildPlan(spec.Sort, groupBy, eng.Ref)
	plan.Sort(entities)

	totalCols := SummableColumns(spec.Totals, available, opts.Perms)
	groups, totals := GroupAndTotal(entities, groupCol, totalCols, eng.Ref)

	return &Result{
		Entities: entities,
		Columns:  columns,
		Groups:   groups,
		Totals:   totals,
		Count:    len(entities),
	}, nil
}
