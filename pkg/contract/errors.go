package contract

import (
	"context"

	"github.com/pkg/errors"

	"github.com/taker-protocol/taker-client/pkg/config"
	"github.com/taker-protocol/taker-client/pkg/solana"
	"github.com/taker-protocol/taker-client/pkg/solana/taker"
)

var (
	ErrConfigMissing  = errors.New("configuration missing")
	ErrConfigInvalid  = errors.New("configuration invalid")
	ErrDerivation     = errors.New("address derivation failed")
	ErrMissingAccount = errors.New("instruction account missing")
	ErrSubmission     = errors.New("transaction submission failed")
	ErrNetwork        = errors.New("network failure")
)

// ErrorClass is the category a failed run is reported under.
type ErrorClass int

const (
	ErrorClassUnknown ErrorClass = iota
	ErrorClassConfigMissing
	ErrorClassConfigInvalid
	ErrorClassDerivation
	ErrorClassMissingAccount
	ErrorClassSubmission
	ErrorClassNetwork
	ErrorClassCanceled
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassConfigMissing:
		return "config_missing"
	case ErrorClassConfigInvalid:
		return "config_invalid"
	case ErrorClassDerivation:
		return "derivation"
	case ErrorClassMissingAccount:
		return "missing_account"
	case ErrorClassSubmission:
		return "submission"
	case ErrorClassNetwork:
		return "network"
	case ErrorClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify reports the class of an error returned by this package. Errors from
// lower layers are classified by their cause.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ErrorClassUnknown
	case errors.Is(err, ErrConfigMissing):
		return ErrorClassConfigMissing
	case errors.Is(err, ErrConfigInvalid):
		return ErrorClassConfigInvalid
	case errors.Is(err, ErrMissingAccount):
		return ErrorClassMissingAccount
	case errors.Is(err, ErrDerivation):
		return ErrorClassDerivation
	case errors.Is(err, ErrSubmission):
		return ErrorClassSubmission
	case errors.Is(err, ErrNetwork):
		return ErrorClassNetwork
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassCanceled
	case errors.Is(err, config.ErrNoValue):
		return ErrorClassConfigMissing
	case errors.Is(err, taker.ErrMissingAccount):
		return ErrorClassMissingAccount
	case solana.IsTransportError(err):
		return ErrorClassNetwork
	}

	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		return ErrorClassSubmission
	}
	return ErrorClassUnknown
}

// classifiedError tags err with one of the class sentinels while keeping the
// original chain inspectable.
type classifiedError struct {
	class error
	err   error
}

func (e *classifiedError) Error() string {
	return e.class.Error() + ": " + e.err.Error()
}

func (e *classifiedError) Unwrap() []error {
	return []error{e.class, e.err}
}

func classify(class, err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{class: class, err: err}
}

func classifyf(class error, format string, args ...interface{}) error {
	return &classifiedError{class: class, err: errors.Errorf(format, args...)}
}

// networkOr classifies transport failures as network errors, and anything else
// as class.
func networkOr(class, err error) error {
	if solana.IsTransportError(err) {
		return classify(ErrNetwork, err)
	}
	return classify(class, err)
}
