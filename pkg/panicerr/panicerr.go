// Package panicerr turns panics in background work into errors so a single
// misbehaving goroutine fails its pool instead of the whole process.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps fn so that a panic is returned as an error.
func Safe(fn func() error) func() error {
	return func() error {
		return try(fn)
	}
}

// SafeContext is Safe for functions that take a context, the shape used by
// conc's ContextPool.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return try(func() error { return fn(ctx) })
	}
}

func try(fn func() error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = fn()
	})
	if err != nil {
		return err
	}
	return catcher.Recovered().AsError()
}
