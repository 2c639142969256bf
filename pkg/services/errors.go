package services

import (
	"errors"
	"fmt"
)

var (
	ErrTransport          = errors.New("upstream call failed")
	ErrMissingIdentifier  = errors.New("missing identifier")
	ErrUpstreamValidation = errors.New("upstream validation failed")
	ErrInvalidPayment     = errors.New("invalid payment data")
)

// ErrorKind classifies why a submission step failed
type ErrorKind string

const (
	KindTransport          ErrorKind = "transport"
	KindMissingIdentifier  ErrorKind = "missing_identifier"
	KindUpstreamValidation ErrorKind = "upstream_validation"
	KindInvalidPayment     ErrorKind = "invalid_payment"
)

var kindSentinels = map[ErrorKind]error{
	KindTransport:          ErrTransport,
	KindMissingIdentifier:  ErrMissingIdentifier,
	KindUpstreamValidation: ErrUpstreamValidation,
	KindInvalidPayment:     ErrInvalidPayment,
}

// StepError is the single error a failed submission returns.
// Message is what the caller is shown.
type StepError struct {
	Step    string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StepError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %s", e.Step, e.Kind, e.Message)
}

func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *StepError) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinels[e.Kind] == target
}

// IsKind reports whether err is a StepError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func transportError(step string, err error) *StepError {
	return &StepError{Step: step, Kind: KindTransport, Message: upstreamMessage(err), Err: err}
}

func missingIdentifier(step, what string) *StepError {
	return &StepError{
		Step:    step,
		Kind:    KindMissingIdentifier,
		Message: fmt.Sprintf("missing %s in response", what),
	}
}

func upstreamValidation(step, message string) *StepError {
	if message == "" {
		message = "request rejected by upstream"
	}
	return &StepError{Step: step, Kind: KindUpstreamValidation, Message: message}
}

func invalidPayment(message string) *StepError {
	return &StepError{Step: StepValidatePayment, Kind: KindInvalidPayment, Message: message}
}
