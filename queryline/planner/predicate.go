package planner

import "time"

// Node is a storage-agnostic boolean condition over entity fields. A tree of
// nodes is what the condition compiler emits; it can be evaluated in memory
// or translated to a store's native query language.
type Node interface {
	isNode()
}

// True matches everything. An empty filter set compiles to it.
type True struct{}

func (True) isNode() {}

// False matches nothing, e.g. a custom field filter outside its scope.
type False struct{}

func (False) isNode() {}

// And is the conjunction of its children.
type And struct {
	Children []Node
}

func (And) isNode() {}

// Or is the disjunction of its children.
type Or struct {
	Children []Node
}

func (Or) isNode() {}

// Not negates its inner node.
type Not struct {
	Inner Node
}

func (Not) isNode() {}

// Ref addresses a field: a built-in attribute, a custom field value, or an
// attribute of the entity's owning project.
type Ref struct {
	Field         string
	CustomFieldID int64
	OnProject     bool
}

// In tests set membership against raw string values. With Negate, an unset
// field also matches (NULL OR NOT IN semantics). For multi-valued custom
// fields, membership means at least one stored value is in the set.
type In struct {
	Ref    Ref
	Values []string
	Negate bool
}

func (In) isNode() {}

// Blank matches entities with no value for the field; for multi-valued custom
// fields, all stored values must be blank.
type Blank struct {
	Ref Ref
}

func (Blank) isNode() {}

// Present matches entities with at least one non-blank value for the field.
type Present struct {
	Ref Ref
}

func (Present) isNode() {}

// Substr is a case-insensitive substring match.
type Substr struct {
	Ref    Ref
	Term   string
	Negate bool
}

func (Substr) isNode() {}

// CmpOp is a numeric comparison direction.
type CmpOp int

const (
	CmpGte CmpOp = iota
	CmpLte
)

func (op CmpOp) String() string {
	if op == CmpLte {
		return "<="
	}
	return ">="
}

// NumCmp is an open-ended numeric comparison.
type NumCmp struct {
	Ref   Ref
	Op    CmpOp
	Value float64
}

func (NumCmp) isNode() {}

// NumRange is an inclusive numeric range.
type NumRange struct {
	Ref Ref
	Lo  float64
	Hi  float64
}

func (NumRange) isNode() {}

// NumEq is numeric equality within a tolerance band. Tolerance 0 is exact.
type NumEq struct {
	Ref       Ref
	Value     float64
	Tolerance float64
}

func (NumEq) isNode() {}

// BoolEq matches a boolean field.
type BoolEq struct {
	Ref   Ref
	Value bool
}

func (BoolEq) isNode() {}

// DateRange is an inclusive day window. Nil bounds are open-ended. Datetime
// fields match when their date part falls inside the window.
type DateRange struct {
	Ref  Ref
	From *time.Time
	To   *time.Time
}

func (DateRange) isNode() {}

// ProjectIn scopes entities to a resolved set of project ids.
type ProjectIn struct {
	IDs []int64
}

func (ProjectIn) isNode() {}

// WatchedBy matches entities watched by any of the users.
type WatchedBy struct {
	UserIDs []int64
	Negate  bool
}

func (WatchedBy) isNode() {}

// AssignedToRole matches entities whose assignee holds one of the roles in
// the entity's project. AnyMember ignores roles and tests mere membership.
// With Negate, unassigned entities match.
type AssignedToRole struct {
	RoleIDs   []int64
	AnyMember bool
	Negate    bool
}

func (AssignedToRole) isNode() {}
