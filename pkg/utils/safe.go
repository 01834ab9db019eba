package utils

import (
	"context"
	"log"
	"runtime/debug"

	"golang-market-intel/pkg/logger"
)

// GoSafe runs fn in a new goroutine and recovers any panic, so one
// misbehaving task cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// RunSafe invokes fn on the current goroutine and converts a panic into the
// returned recovered value. A nil return means fn completed normally.
func RunSafe(fn func()) (recovered interface{}) {
	defer func() {
		recovered = recover()
	}()
	fn()
	return nil
}

// ShouldContinue reports whether work should proceed, logging once when the
// context has been canceled.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("context canceled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
