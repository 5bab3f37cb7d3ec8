package timeline

import (
	"errors"
	"fmt"
)

// Document-level failures returned by Converter.Assemble.
var (
	ErrNoData        = errors.New("no data")
	ErrNoValidEvents = errors.New("no valid events")

	// ErrNoCandidateRows and ErrNoSurvivingEvents both match ErrNoValidEvents with errors.Is.
	ErrNoCandidateRows   = fmt.Errorf("%w: no row has a year", ErrNoValidEvents)
	ErrNoSurvivingEvents = fmt.Errorf("%w: all candidate rows were unusable", ErrNoValidEvents)
)

// Row-level failures. They never reach the caller of Assemble; they are logged
// and passed to Converter.OnReject.
var (
	ErrMissingYear = errors.New("missing or blank year")
	ErrInvalidYear = errors.New("year is not an integer")
)

// ConversionError reports an unexpected failure caught at the assembler boundary.
type ConversionError struct {
	Detail string
	Cause  error
}

func (e *ConversionError) Error() string {
	return "conversion error: " + e.Detail
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// newConversionError builds a ConversionError from a recovered panic value.
func newConversionError(recovered any) *ConversionError {
	if err, ok := recovered.(error); ok {
		return &ConversionError{Detail: err.Error(), Cause: err}
	}
	return &ConversionError{Detail: fmt.Sprint(recovered)}
}
