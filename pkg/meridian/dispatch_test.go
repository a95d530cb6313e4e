package meridian

import (
	"context"
	"testing"
)

// orderPlugin records its own name into the response body on both phases,
// letting a test assert exact call order.
type orderPlugin struct {
	BasePlugin
	name         string
	shortCircuit bool
}

func (p *orderPlugin) Call(ctx context.Context, req *Request, resp *Response) Decision {
	resp.Write([]byte("call:" + p.name + ";"))
	if p.shortCircuit {
		short := NewResponse()
		short.Status = 403
		short.SetBody([]byte("blocked"))
		return ShortCircuitWith(short)
	}
	return Continue
}

func (p *orderPlugin) CallResponse(ctx context.Context, req *Request, resp *Response) {
	resp.Write([]byte("resp:" + p.name + ";"))
}

func TestPipelineRunsResponsePhaseForEveryPluginEvenAfterShortCircuit(t *testing.T) {
	runner := NewPipelineRunner(nil)
	plugins := []Plugin{
		&orderPlugin{name: "a"},
		&orderPlugin{name: "b", shortCircuit: true},
		&orderPlugin{name: "c"},
	}
	handlerCalled := false
	handler := func(req *Request) Result {
		handlerCalled = true
		return Text("handled")
	}

	req := NewRequest(context.Background(), "GET", "example.com", "/", "", nil, nil)
	resp := runner.Run(context.Background(), req, plugins, handler, nil)

	if handlerCalled {
		t.Fatalf("handler must be skipped once a plugin short-circuits")
	}
	if resp.Status != 403 {
		t.Errorf("got status %d, want 403 from the short-circuit response", resp.Status)
	}

	// CallResponse must still run, forward order, for a, b, and c, appending
	// to the adopted short-circuit response's "blocked" body.
	body := string(resp.BodyBytes())
	wantOrder := "blockedresp:a;resp:b;resp:c;"
	if body != wantOrder {
		t.Errorf("got response-phase body %q, want %q", body, wantOrder)
	}
}

func TestPipelineRunsHandlerWhenNoShortCircuit(t *testing.T) {
	runner := NewPipelineRunner(nil)
	plugins := []Plugin{&orderPlugin{name: "a"}, &orderPlugin{name: "b"}}
	handler := func(req *Request) Result { return Text("handled") }

	req := NewRequest(context.Background(), "GET", "example.com", "/", "", nil, nil)
	resp := runner.Run(context.Background(), req, plugins, handler, nil)

	if resp.Status != 200 {
		t.Errorf("got status %d, want 200", resp.Status)
	}
	if string(resp.BodyBytes()) != "handled" {
		t.Errorf("got body %q, want handled", string(resp.BodyBytes()))
	}
}

func TestPipelineRecoversPanicIntoServerError(t *testing.T) {
	runner := NewPipelineRunner(nil)
	handler := func(req *Request) Result { panic("boom") }

	req := NewRequest(context.Background(), "GET", "example.com", "/", "", nil, nil)
	resp := runner.Run(context.Background(), req, nil, handler, nil)

	if resp.Status != 500 {
		t.Errorf("got status %d, want 500 from the default server error handler", resp.Status)
	}
}

func TestDispatchReturns404OnNoMatch(t *testing.T) {
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(Host("api.example.com").Build()); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	d := NewDispatcher(r, nil)

	req := NewRequest(context.Background(), "GET", "api.example.com", "/nope", "", nil, nil)
	resp := d.Dispatch(req)
	if resp.Status != 404 {
		t.Errorf("got status %d, want 404", resp.Status)
	}
}

func TestDispatchRunsMatchedRouteThroughItsPlugins(t *testing.T) {
	seen := &orderPlugin{name: "only"}
	api := Host("api.example.com")
	api.Path("ping").Get(func(req *Request) Result { return Text("pong") }, As("ping"), Use(seen))
	r := NewRouter(DefaultConfig(), nil)
	if err := r.Define(api.Build()); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	d := NewDispatcher(r, nil)

	req := NewRequest(context.Background(), "GET", "api.example.com", "/ping", "", nil, nil)
	resp := d.Dispatch(req)
	if resp.Status != 200 {
		t.Fatalf("got status %d, want 200", resp.Status)
	}
	// Text("pong")'s Result.normalize replaces the body wholesale
	// (SetBody), which wipes out whatever the Call phase wrote; only the
	// response phase's Write (which appends) survives alongside it.
	body := string(resp.BodyBytes())
	if body != "pongresp:only;" {
		t.Errorf("got body %q, want %q", body, "pongresp:only;")
	}
	if req.RouteName != "ping" {
		t.Errorf("got route name %q, want ping", req.RouteName)
	}
}
