package document

import "github.com/juju/errors"

// Local validation errors. They are returned synchronously from the call
// that caused them and never affect other objects.
const (
	ErrTypeMismatch   = errors.ConstError("type mismatch")
	ErrReadOnly       = errors.ConstError("property is read-only")
	ErrInvalidLink    = errors.ConstError("invalid link")
	ErrAlreadyGrouped = errors.ConstError("object already belongs to a container")
	ErrNotAMember     = errors.ConstError("object is not a member of the container")
	ErrUnknownType    = errors.ConstError("unknown type")
	ErrDuplicateName  = errors.ConstError("duplicate name")
	ErrNotContainer   = errors.ConstError("object is not a container")
	ErrRecomputing    = errors.ConstError("document is recomputing")
)

// ErrDependencyCycle is the reason recorded on every object found on a
// dependency cycle during a recompute pass.
const ErrDependencyCycle = errors.ConstError("dependency cycle")
