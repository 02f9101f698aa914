package collection

import (
	"fmt"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
)

var (
	// ErrItemNotFound is returned when a key or position that must be present
	// is absent.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemExists is returned when an insertion would duplicate an
	// identifier in a Pile (or a name in a Flow).
	ErrItemExists = errors.New("item already exists")

	// ErrTypeMismatch is matched by *TypeMismatchError.
	ErrTypeMismatch = errors.New("incompatible item")

	// ErrInvalidOrder is returned when an explicit order is not a permutation
	// of the contained identifiers.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidKey is returned for malformed keys: empty, containing empty
	// identifiers, or of the wrong shape for the call.
	ErrInvalidKey = errors.New("invalid key")

	// ErrIndexOutOfRange is returned by position-aware insertions and slicing.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// TypeMismatchError reports an entity whose kind is not admitted by a Pile.
type TypeMismatchError struct {
	Expected []*entity.Kind
	Actual   *entity.Kind
	Strict   bool
}

// Error implements error.
func (e *TypeMismatchError) Error() string {
	mode := "or a specialization"
	if e.Strict {
		mode = "exactly"
	}
	return fmt.Sprintf("incompatible item: kind %s is not %s of %v", e.Actual.Name(), mode, e.Expected)
}

// Is makes errors.Is(err, ErrTypeMismatch) hold.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func notFound(format string, args ...any) error {
	return errors.WrapSentinel(ErrItemNotFound, format, args...)
}

func invalidKey(format string, args ...any) error {
	return errors.WrapSentinel(ErrInvalidKey, format, args...)
}

func outOfRange(index, length int) error {
	return errors.WrapSentinel(ErrIndexOutOfRange, "index %d, length %d", index, length)
}

func invalidOrder(format string, args ...any) error {
	return errors.WrapSentinel(ErrInvalidOrder, format, args...)
}

func exists(id ident.ID) error {
	return errors.WrapSentinel(ErrItemExists, "identifier %s", id)
}

func errExistsName(name string) error {
	return errors.WrapSentinel(ErrItemExists, "name %q", name)
}
