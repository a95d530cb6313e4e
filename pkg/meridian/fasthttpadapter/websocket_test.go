package fasthttpadapter

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestWebSocketMountInterceptsBeforeDispatch(t *testing.T) {
	a := New(nil)
	called := false
	a.WebSocket("/ws", func(conn *WebSocketConnection) { called = true })

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/ws/chat")
	ctx.Request.Header.SetMethod("GET")

	a.handle(&ctx)

	if called {
		t.Error("expected the handshake to fail without proper upgrade headers, so the handler should never run")
	}
}

func TestWebSocketMountRegistersPrefix(t *testing.T) {
	a := New(nil)
	a.WebSocket("/ws", func(conn *WebSocketConnection) {})

	if len(a.wsMounts) != 1 {
		t.Fatalf("expected exactly one ws mount to be registered, got %d", len(a.wsMounts))
	}
	if a.wsMounts[0].prefix != "/ws" {
		t.Errorf("got prefix %q, want /ws", a.wsMounts[0].prefix)
	}
}
