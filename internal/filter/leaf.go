package filter

import "fmt"

// Eq matches records whose metadata at Path equals Value.
type Eq struct {
	Path  string
	Value interface{}
}

// NewEq creates an equality filter.
func NewEq(path string, value interface{}) *Eq { return &Eq{Path: path, Value: value} }

func (f *Eq) Match(metadata map[string]interface{}) bool {
	v, ok := lookup(metadata, f.Path)
	if !ok {
		return false
	}
	return valuesEqual(v, f.Value)
}

func (f *Eq) Validate() error {
	if f.Path == "" {
		return newError("eq", f.Path, "path cannot be empty")
	}
	return nil
}

func (f *Eq) String() string { return fmt.Sprintf("%s == %v", f.Path, f.Value) }

// In matches records whose metadata at Path equals any of Values.
type In struct {
	Path   string
	Values []interface{}
}

// NewIn creates a membership filter.
func NewIn(path string, values []interface{}) *In { return &In{Path: path, Values: values} }

func (f *In) Match(metadata map[string]interface{}) bool {
	v, ok := lookup(metadata, f.Path)
	if !ok {
		return false
	}
	for _, candidate := range f.Values {
		if valuesEqual(v, candidate) {
			return true
		}
	}
	return false
}

func (f *In) Validate() error {
	if f.Path == "" {
		return newError("in", f.Path, "path cannot be empty")
	}
	if len(f.Values) == 0 {
		return newError("in", f.Path, "values cannot be empty")
	}
	return nil
}

func (f *In) String() string { return fmt.Sprintf("%s IN %v", f.Path, f.Values) }

// Range matches records whose metadata at Path falls within [Gte,Lte] /
// (Gt,Lt) bounds. A nil bound means unbounded on that side.
type Range struct {
	Path string
	Gt   interface{}
	Gte  interface{}
	Lt   interface{}
	Lte  interface{}
}

// NewRange creates a range filter.
func NewRange(path string, gt, gte, lt, lte interface{}) *Range {
	return &Range{Path: path, Gt: gt, Gte: gte, Lt: lt, Lte: lte}
}

func (f *Range) Match(metadata map[string]interface{}) bool {
	v, ok := lookup(metadata, f.Path)
	if !ok {
		return false
	}

	if f.Gt != nil {
		c, comparable := compare(v, f.Gt)
		if !comparable || c <= 0 {
			return false
		}
	}
	if f.Gte != nil {
		c, comparable := compare(v, f.Gte)
		if !comparable || c < 0 {
			return false
		}
	}
	if f.Lt != nil {
		c, comparable := compare(v, f.Lt)
		if !comparable || c >= 0 {
			return false
		}
	}
	if f.Lte != nil {
		c, comparable := compare(v, f.Lte)
		if !comparable || c > 0 {
			return false
		}
	}
	return true
}

func (f *Range) Validate() error {
	if f.Path == "" {
		return newError("range", f.Path, "path cannot be empty")
	}
	if f.Gt == nil && f.Gte == nil && f.Lt == nil && f.Lte == nil {
		return newError("range", f.Path, "at least one bound must be specified")
	}
	return nil
}

func (f *Range) String() string {
	return fmt.Sprintf("%s RANGE{gt=%v,gte=%v,lt=%v,lte=%v}", f.Path, f.Gt, f.Gte, f.Lt, f.Lte)
}

// Exists matches records that have a value at Path, regardless of its value.
type Exists struct {
	Path string
}

// NewExists creates an existence filter.
func NewExists(path string) *Exists { return &Exists{Path: path} }

func (f *Exists) Match(metadata map[string]interface{}) bool {
	_, ok := lookup(metadata, f.Path)
	return ok
}

func (f *Exists) Validate() error {
	if f.Path == "" {
		return newError("exists", f.Path, "path cannot be empty")
	}
	return nil
}

func (f *Exists) String() string { return fmt.Sprintf("EXISTS(%s)", f.Path) }
