package filter

import "strings"

// And matches when every child filter matches.
type And struct{ Filters []Filter }

// NewAnd creates a conjunction of filters.
func NewAnd(filters ...Filter) *And { return &And{Filters: filters} }

func (f *And) Match(metadata map[string]interface{}) bool {
	for _, child := range f.Filters {
		if !child.Match(metadata) {
			return false
		}
	}
	return true
}

func (f *And) Validate() error {
	if len(f.Filters) == 0 {
		return newError("and", "", "must have at least one child filter")
	}
	for _, child := range f.Filters {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *And) String() string { return join("AND", f.Filters) }

// Or matches when any child filter matches.
type Or struct{ Filters []Filter }

// NewOr creates a disjunction of filters.
func NewOr(filters ...Filter) *Or { return &Or{Filters: filters} }

func (f *Or) Match(metadata map[string]interface{}) bool {
	for _, child := range f.Filters {
		if child.Match(metadata) {
			return true
		}
	}
	return false
}

func (f *Or) Validate() error {
	if len(f.Filters) == 0 {
		return newError("or", "", "must have at least one child filter")
	}
	for _, child := range f.Filters {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Or) String() string { return join("OR", f.Filters) }

// Not inverts a single child filter.
type Not struct{ Filter Filter }

// NewNot creates a negation of a filter.
func NewNot(filter Filter) *Not { return &Not{Filter: filter} }

func (f *Not) Match(metadata map[string]interface{}) bool {
	return !f.Filter.Match(metadata)
}

func (f *Not) Validate() error {
	if f.Filter == nil {
		return newError("not", "", "must have exactly one child filter")
	}
	return f.Filter.Validate()
}

func (f *Not) String() string { return "NOT (" + f.Filter.String() + ")" }

func join(op string, filters []Filter) string {
	if len(filters) == 0 {
		return "EMPTY"
	}
	parts := make([]string, len(filters))
	for i, child := range filters {
		parts[i] = "(" + child.String() + ")"
	}
	return strings.Join(parts, " "+op+" ")
}
