// Package safecall runs a single upstream call and turns recognized operational failures
// into a value the caller can inspect later, so one failing AWS query never aborts a page.
package safecall

import (
	"context"

	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
)

// Outcome is the result of one call: either the raw upstream value, or the fallback
// value together with the error that replaced it
type Outcome[T any] struct {
	Value T
	Err   error
}

// Failed reports whether the call was absorbed
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// Message is the error text of a failed call, empty on success
func (o Outcome[T]) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Call executes op once. A recognized failure (see awsutil.IsRecognized) yields an
// Outcome carrying fallback and the error; any other error is returned as is.
func Call[T any](ctx context.Context, op func(context.Context) (T, error), fallback T) (Outcome[T], error) {
	value, err := op(ctx)
	if err == nil {
		return Outcome[T]{Value: value}, nil
	}

	if !awsutil.IsRecognized(err) {
		return Outcome[T]{}, err
	}

	return Outcome[T]{Value: fallback, Err: err}, nil
}
