package field

// Type specifies how a filterable field parses values and compiles conditions.
type Type string

const (
	Status       Type = "status"       // open/closed-aware status enumeration
	List         Type = "list"         // required selection from an enumerated set
	ListOptional Type = "list_optional" // selection that may also be blank/any
	Subprojects  Type = "subprojects"  // subproject scope selection
	UserRef      Type = "user"         // reference to a principal
	VersionRef   Type = "version"      // reference to a version
	Bool         Type = "bool"
	Integer      Type = "int"
	Float        Type = "float"
	String       Type = "string"
	Text         Type = "text"
	Date         Type = "date"
	DateTime     Type = "datetime" // timestamp field, past-oriented operators
)

// Operator is a filter operator tag.
type Operator string

const (
	OpEquals      Operator = "="
	OpNot         Operator = "!"
	OpOpen        Operator = "o"
	OpClosed      Operator = "c"
	OpNone        Operator = "!*"
	OpAny         Operator = "*"
	OpGte         Operator = ">="
	OpLte         Operator = "<="
	OpBetween     Operator = "><"
	OpInLessThan  Operator = "<t+"
	OpInMoreThan  Operator = ">t+"
	OpInDays      Operator = "t+"
	OpToday       Operator = "t"
	OpThisWeek    Operator = "w"
	OpAgoLessThan Operator = ">t-"
	OpAgoMoreThan Operator = "<t-"
	OpAgoDays     Operator = "t-"
	OpContains    Operator = "~"
	OpNotContains Operator = "!~"
)

var operatorsByType = map[Type][]Operator{
	Status:       {OpOpen, OpEquals, OpNot, OpClosed, OpAny},
	List:         {OpEquals, OpNot},
	ListOptional: {OpEquals, OpNot, OpNone, OpAny},
	Subprojects:  {OpAny, OpNone, OpEquals},
	UserRef:      {OpEquals, OpNot, OpNone, OpAny},
	VersionRef:   {OpEquals, OpNot, OpNone, OpAny},
	Bool:         {OpEquals, OpNot},
	Date: {
		OpEquals, OpGte, OpLte, OpBetween,
		OpInLessThan, OpInMoreThan, OpInDays,
		OpToday, OpThisWeek,
		OpAgoLessThan, OpAgoMoreThan, OpAgoDays,
		OpNone, OpAny,
	},
	DateTime: {
		OpEquals, OpGte, OpLte, OpBetween,
		OpAgoLessThan, OpAgoMoreThan, OpAgoDays,
		OpToday, OpThisWeek,
		OpNone, OpAny,
	},
	String:  {OpEquals, OpContains, OpNot, OpNotContains},
	Text:    {OpContains, OpNotContains},
	Integer: {OpEquals, OpGte, OpLte, OpBetween, OpNone, OpAny},
	Float:   {OpEquals, OpGte, OpLte, OpBetween, OpNone, OpAny},
}

// noValueOperators are complete without any user-supplied value.
var noValueOperators = map[Operator]bool{
	OpOpen:     true,
	OpClosed:   true,
	OpNone:     true,
	OpAny:      true,
	OpToday:    true,
	OpThisWeek: true,
}

// relativeDateOperators take an integer day offset as their value.
var relativeDateOperators = map[Operator]bool{
	OpInLessThan:  true,
	OpInMoreThan:  true,
	OpInDays:      true,
	OpAgoLessThan: true,
	OpAgoMoreThan: true,
	OpAgoDays:     true,
}

// Valid reports whether t is a known field type.
func (t Type) Valid() bool {
	_, ok := operatorsByType[t]
	return ok
}

// Operators returns the legal operator set for the type.
func (t Type) Operators() []Operator {
	ops := operatorsByType[t]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// Allows reports whether op is legal for the type.
func (t Type) Allows(op Operator) bool {
	for _, o := range operatorsByType[t] {
		if o == op {
			return true
		}
	}
	return false
}

// Enumerated reports whether the type selects from an enumerated value set.
func (t Type) Enumerated() bool {
	switch t {
	case Status, List, ListOptional, Subprojects, UserRef, VersionRef, Bool:
		return true
	}
	return false
}

// RequiresValues reports whether op needs at least one non-blank value.
func (op Operator) RequiresValues() bool {
	return !noValueOperators[op]
}

// RelativeDate reports whether op takes a day-offset value resolved against today.
func (op Operator) RelativeDate() bool {
	return relativeDateOperators[op]
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNot, OpOpen, OpClosed, OpNone, OpAny,
		OpGte, OpLte, OpBetween,
		OpInLessThan, OpInMoreThan, OpInDays, OpToday, OpThisWeek,
		OpAgoLessThan, OpAgoMoreThan, OpAgoDays,
		OpContains, OpNotContains:
		return true
	}
	return false
}
