package errors

// ValidationError is a specialized error type for configuration and argument
// validation failures. It captures which field failed, what rule was violated,
// and what was provided, so callers can correct their input.
type ValidationError struct {
	*baseError
	field    string // The configuration field or argument that failed validation.
	rule     string // The rule that was violated, e.g. "required" or "min".
	provided any    // The value that was provided.
	expected any    // What would have been acceptable.
}

// NewValidationError creates a new validation-specific error.
func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *ValidationError instead of
// *baseError, so builder chains keep the domain type.

// WithMessage updates the error message while maintaining the ValidationError type.
func (ve *ValidationError) WithMessage(msg string) *ValidationError {
	ve.baseError.WithMessage(msg)
	return ve
}

// WithCode sets the error code while preserving the ValidationError type.
func (ve *ValidationError) WithCode(code ErrorCode) *ValidationError {
	ve.baseError.WithCode(code)
	return ve
}

// WithDetail adds contextual information while maintaining the ValidationError type.
func (ve *ValidationError) WithDetail(key string, value any) *ValidationError {
	ve.baseError.WithDetail(key, value)
	return ve
}

// WithField records which field failed validation.
func (ve *ValidationError) WithField(field string) *ValidationError {
	ve.field = field
	return ve
}

// WithRule records the validation rule that was violated.
func (ve *ValidationError) WithRule(rule string) *ValidationError {
	ve.rule = rule
	return ve
}

// WithProvided records the value that was provided.
func (ve *ValidationError) WithProvided(provided any) *ValidationError {
	ve.provided = provided
	return ve
}

// WithExpected records what would have been acceptable.
func (ve *ValidationError) WithExpected(expected any) *ValidationError {
	ve.expected = expected
	return ve
}

// Field returns the field that failed validation.
func (ve *ValidationError) Field() string {
	return ve.field
}

// Rule returns the rule that was violated.
func (ve *ValidationError) Rule() string {
	return ve.rule
}

// Provided returns the value that was provided.
func (ve *ValidationError) Provided() any {
	return ve.provided
}

// Expected returns what would have been acceptable.
func (ve *ValidationError) Expected() any {
	return ve.expected
}
