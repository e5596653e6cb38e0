package pipeline

import "context"

// Step is one pipeline stage. A step whose ShouldExecute returns false leaves
// the context unchanged and is recorded as skipped.
type Step struct {
	Name          string
	ShouldExecute func(rc RequestContext) bool
	Execute       func(ctx context.Context, rc RequestContext) (RequestContext, error)
}

func always(RequestContext) bool { return true }
