package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any part of the system. These codes provide the foundation
// layer of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations: reading or
	// writing segment files, metadata files, or the id counter.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents caller-side errors where the provided
	// configuration or argument doesn't meet the system's requirements.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected failures that don't fit into
	// other categories. These indicate bugs or broken invariants that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base taxonomy with the failure
// modes of the on-disk container layout.
const (
	// ErrorCodeCorruptDatabase indicates that the persisted metadata vectors
	// (filenames, lens, mins) disagree with each other, or that a persisted
	// file cannot be decoded. The engine does not attempt automatic repair.
	ErrorCodeCorruptDatabase ErrorCode = "CORRUPT_DATABASE"

	// ErrorCodeInconsistentRootSet indicates that a striped container was
	// opened over a set of roots that doesn't match the set the roots
	// themselves were initialised with.
	ErrorCodeInconsistentRootSet ErrorCode = "INCONSISTENT_ROOT_SET"
)

// Lookup error codes categorize the recoverable "not there" outcomes of
// container operations.
const (
	// ErrorCodeKeyNotFound indicates a key lookup against a map container
	// found no entry for the key.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeNotFound indicates an exact-mode search for a value in a
	// sorted container found no equal element.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeIndexOutOfRange indicates a positional access outside [-N, N).
	ErrorCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrorCodeUnsupported indicates an operation the container deliberately
	// does not implement, such as indexed assignment into a sorted list.
	ErrorCodeUnsupported ErrorCode = "UNSUPPORTED"
)
