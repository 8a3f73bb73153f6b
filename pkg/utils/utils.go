package utils

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"zahaam/pkg/logger"
)

// GoSafe runs fn in a new goroutine. A panic is logged with its stack and
// does not take the process down.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered in background task",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())),
				)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// ShouldContinue reports whether ctx is still live, logging the caller when
// it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	if ctx.Err() == nil {
		return true
	}

	caller := "unknown"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			caller = name[strings.LastIndex(name, "/")+1:]
		}
	}
	log.Warn("Context cancelled",
		logger.StringField("caller", caller),
		logger.ErrorField(ctx.Err()),
	)
	return false
}

// FormatPercentage renders a signed percentage with two decimals.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}
