package meridian

import (
	"context"
	"fmt"
)

// PipelineRunner executes a route's resolved plugin list around a
// handler. The teacher's onion-model MiddlewareFunc func(HandlerFunc)
// HandlerFunc (fasthttpadapter/middleware.go) cannot express spec.md
// §4.4's two-phase call/call_response contract with an unconditional
// forward-order response phase, so this is a redesign per spec.md §9:
// a flat slice walked forward twice, grounded on the *shape* of the
// teacher's ErrorHandlerMiddleware/RecoveryMiddleware defer/recover
// pattern rather than its nested-closure structure.
type PipelineRunner struct {
	logger *Logger
}

// NewPipelineRunner builds a runner that logs short-circuit/panic events
// through logger.
func NewPipelineRunner(logger *Logger) *PipelineRunner {
	return &PipelineRunner{logger: logger}
}

// Run executes plugins' request phase in order, stopping at the first
// short-circuit, then invokes handler (skipped if short-circuited), then
// runs every plugin's response phase in forward order regardless of
// short-circuit (spec.md §4.4's fixed rule). A panic inside a plugin or
// the handler is recovered and converted to the server-error handler's
// Result, grounded on the teacher's RecoveryMiddleware.
func (pr *PipelineRunner) Run(ctx context.Context, req *Request, plugins []Plugin, handler HandlerFunc, onServerError func(*Request, error) Result) *Response {
	resp := NewResponse()

	shortCircuited := false
	shortCircuitAt := len(plugins)

	func() {
		defer pr.recoverInto(req, resp, onServerError)

		for i, p := range plugins {
			decision := p.Call(ctx, req, resp)
			if decision.ShortCircuit {
				shortCircuited = true
				shortCircuitAt = i
				if decision.Response != nil {
					*resp = *decision.Response
				}
				break
			}
		}

		if !shortCircuited {
			result := handler(req)
			if err := result.normalize(resp); err != nil {
				pr.fail(req, resp, onServerError, err)
				return
			}
		}
	}()

	func() {
		defer pr.recoverInto(req, resp, onServerError)
		for _, p := range plugins {
			p.CallResponse(ctx, req, resp)
		}
	}()

	if pr.logger != nil && shortCircuited {
		pr.logger.Debug("pipeline short-circuited",
			"route", req.RouteName, "plugin_index", shortCircuitAt, "status", resp.Status)
	}

	return resp
}

func (pr *PipelineRunner) recoverInto(req *Request, resp *Response, onServerError func(*Request, error) Result) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", r)
		}
		pr.fail(req, resp, onServerError, err)
	}
}

func (pr *PipelineRunner) fail(req *Request, resp *Response, onServerError func(*Request, error) Result, err error) {
	if pr.logger != nil {
		pr.logger.Error("runtime error in pipeline", "route", req.RouteName, "error", err)
	}
	var result Result
	if onServerError != nil {
		result = onServerError(req, err)
	} else {
		result = DefaultServerErrorHandler(req, err)
	}
	_ = result.normalize(resp)
}
