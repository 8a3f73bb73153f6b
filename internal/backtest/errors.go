package backtest

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// InvalidStrategyError reports a strategy that cannot be simulated: an unknown
// type or a parameter outside its allowed range.
type InvalidStrategyError struct {
	Field  string
	Reason string
}

func (e *InvalidStrategyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid strategy: %s", e.Reason)
	}
	return fmt.Sprintf("invalid strategy: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string, args ...interface{}) error {
	return &InvalidStrategyError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}

// IsInvalidStrategy reports whether err wraps an InvalidStrategyError.
func IsInvalidStrategy(err error) bool {
	var target *InvalidStrategyError
	return errors.As(err, &target)
}

// fromValidation converts the first validator failure into an
// InvalidStrategyError keyed by the parameter name.
func fromValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidStrategyError{Reason: err.Error()}
	}
	fe := verrs[0]
	field := paramNameByField[fe.StructField()]
	if field == "" {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "gte":
		return invalid(field, "must be >= %s", fe.Param())
	case "lte":
		return invalid(field, "must be <= %s", fe.Param())
	case "gtfield":
		return invalid(field, "must be greater than %s", paramNameByField[fe.Param()])
	case "oneof":
		return invalid(field, "must be one of [%s]", fe.Param())
	default:
		return invalid(field, "failed %q validation", fe.Tag())
	}
}
