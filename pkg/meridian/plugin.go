package meridian

import "context"

// Decision is what a plugin's request-phase Call returns (spec.md §4.4).
type Decision struct {
	// ShortCircuit, when true, stops the pipeline from advancing: the
	// handler is skipped and no further plugins' Call methods run. The
	// response phase still runs for every plugin per spec.md's fixed rule
	// (see PipelineRunner.Run).
	ShortCircuit bool

	// Response is the response value to adopt when ShortCircuit is true.
	// Ignored otherwise.
	Response *Response
}

// Continue is the zero-value "advance to next plugin" decision.
var Continue = Decision{}

// ShortCircuitWith builds a Decision that stops the pipeline and adopts resp as
// the response, per spec.md §4.4.
func ShortCircuitWith(resp *Response) Decision {
	return Decision{ShortCircuit: true, Response: resp}
}

// Plugin is the protocol every pipeline entry implements (spec.md §4.4,
// §9 "tagged return shapes" / "call_response existence check via runtime
// reflection" redesign note). A plugin that only needs the request phase
// embeds BasePlugin to get a no-op CallResponse for free; a composite
// plugin (e.g. CSRF's generator + protection pair, spec.md §4.1/§4.6)
// registers two independent Plugin values under one registry symbol rather
// than implementing both phases in one value.
type Plugin interface {
	// Call runs the request phase. req/resp are mutable; a plugin that
	// wants to pass data to the handler or later plugins writes to
	// req.SetAttr.
	Call(ctx context.Context, req *Request, resp *Response) Decision

	// CallResponse runs the response phase, after the handler (or after a
	// short-circuit — spec.md's fixed rule runs this unconditionally,
	// forward order, for every plugin that appeared in the resolved list).
	CallResponse(ctx context.Context, req *Request, resp *Response)
}

// BasePlugin is embedded by plugins that don't need a response-phase hook,
// giving them a no-op CallResponse (spec.md §9's "default no-op for the
// return-path hook").
type BasePlugin struct{}

// CallResponse is a no-op. Plugins needing response-phase behavior
// override it by defining their own method: under Go's method promotion
// rules a plugin type's own CallResponse shadows this one even when the
// type embeds BasePlugin.
func (BasePlugin) CallResponse(ctx context.Context, req *Request, resp *Response) {}

// PluginFunc adapts a plain function to a request-only Plugin, for the
// common case of a plugin with no response-phase behavior.
type PluginFunc struct {
	BasePlugin
	fn func(ctx context.Context, req *Request, resp *Response) Decision
}

// NewPluginFunc wraps fn as a Plugin.
func NewPluginFunc(fn func(ctx context.Context, req *Request, resp *Response) Decision) Plugin {
	return &PluginFunc{fn: fn}
}

// Call invokes the wrapped function.
func (p *PluginFunc) Call(ctx context.Context, req *Request, resp *Response) Decision {
	return p.fn(ctx, req, resp)
}
