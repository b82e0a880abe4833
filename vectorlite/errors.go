package vectorlite

import "fmt"

// Kind enumerates the structured error conditions a Database or Collection
// can return.
type Kind int

const (
	// DimensionMismatch: a vector's length doesn't match its collection's configured dimension.
	DimensionMismatch Kind = iota
	// VectorNotFound: a delete target id doesn't exist.
	VectorNotFound
	// DuplicateID: insert was called with an id already present in the collection.
	DuplicateID
	// EmptyIndex: search was called against a collection with no vectors.
	EmptyIndex
	// InvalidConfig: a database or collection option failed validation.
	InvalidConfig
	// CollectionNotFound: the named collection doesn't exist in the database.
	CollectionNotFound
	// DuplicateCollection: create_collection was called with a name already in use.
	DuplicateCollection
	// StorageIO: the underlying store or graph reported an unexpected internal error.
	StorageIO
)

func (k Kind) String() string {
	switch k {
	case DimensionMismatch:
		return "dimension_mismatch"
	case VectorNotFound:
		return "vector_not_found"
	case DuplicateID:
		return "duplicate_id"
	case EmptyIndex:
		return "empty_index"
	case InvalidConfig:
		return "invalid_config"
	case CollectionNotFound:
		return "collection_not_found"
	case DuplicateCollection:
		return "duplicate_collection"
	case StorageIO:
		return "storage_io"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by every vectorlite operation
// that can fail for a reason callers might want to branch on.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vectorlite: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("vectorlite: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
