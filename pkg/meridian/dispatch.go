package meridian

// Dispatcher ties together normalization, matching, and the pipeline
// runner into the single request lifecycle spec.md §2 describes:
// adapter → static-file check (adapter's own concern, not here) →
// trailing-slash normalization → route match → locale injection →
// pipeline request phase → handler → pipeline response phase → serialize.
// Grounded on the teacher's App request lifecycle (fasthttpadapter/app.go:
// middleware chain + handler invocation), generalized to the full
// control flow above.
type Dispatcher struct {
	Router        *Router
	Pipeline      *PipelineRunner
	NotFound      HandlerFunc
	OnServerError func(*Request, error) Result
}

// NewDispatcher wires a Router and PipelineRunner into a Dispatcher with
// spec.md §6's default not-found/server-error handlers.
func NewDispatcher(router *Router, logger *Logger) *Dispatcher {
	return &Dispatcher{
		Router:        router,
		Pipeline:      NewPipelineRunner(logger),
		NotFound:      DefaultNotFoundHandler,
		OnServerError: DefaultServerErrorHandler,
	}
}

// Dispatch runs the full per-request control flow and returns the
// response to serialize. The adapter is responsible for the current-
// domain context's set/clear discipline at the request boundary (spec.md
// §3 "Current-domain context", §5 "must clear it on every exit path");
// Dispatch sets req's domain once a match succeeds and lets the Request
// fall out of scope on return — it is never reused across requests.
func (d *Dispatcher) Dispatch(req *Request) *Response {
	norm := Normalize(req.Path, d.Router.config)
	if norm.Redirect != nil {
		return norm.Redirect
	}

	if domain := d.Router.DomainConfigFor(req.Host); domain != nil {
		if redirect := RootLocaleRedirect(norm.Path, domain); redirect != nil {
			return redirect
		}
	}

	match, ok := d.Router.Match(req.Host, req.Method, norm.Path, norm.CasePath)
	if !ok {
		resp := NewResponse()
		result := d.NotFound(req)
		_ = result.normalize(resp)
		return resp
	}

	req.Params = match.Params
	req.Locale = match.Locale
	req.Subdomain = match.Subdomain
	req.RouteName = match.Name
	req.setDomain(match.Domain)

	return d.Pipeline.Run(req.Context(), req, match.Use, match.Handler, d.OnServerError)
}
