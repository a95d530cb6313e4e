// Package fasthttpadapter binds the transport-neutral meridian core (router,
// pipeline, dispatcher) to a concrete valyala/fasthttp server, translating
// *fasthttp.RequestCtx to meridian.Request/meridian.Response and back. It is
// grounded on the teacher's App/Config/Server/TLSConfig/HTTP2Config
// lifecycle (app.go, server.go, tls.go, http2.go), generalized from "App
// owns its own router and middleware stack" to "Adapter owns a
// meridian.Dispatcher built elsewhere and only serves it".
package fasthttpadapter

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/meridian-http/meridian"
	"github.com/valyala/fasthttp"
)

// Adapter serves a meridian.Dispatcher over fasthttp, owning the
// fasthttp.Server/HTTP2Server/TLS lifecycle the way the teacher's App did,
// but with routing and plugin resolution delegated entirely to the
// dispatcher (spec.md's router and pipeline are transport-neutral; this is
// the one package that knows about fasthttp).
type Adapter struct {
	dispatcher  *meridian.Dispatcher
	server      *Server
	config      *Config
	tlsConfig   *TLSConfig
	http2Config *HTTP2Config
	http2Server *HTTP2Server

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	shutdownWg     sync.WaitGroup
	shutdownOnce   sync.Once
	isShuttingDown bool
	mu             sync.RWMutex

	staticMounts []staticMount
	wsMounts     []wsMount
}

// staticMount pairs a URL prefix with the static handler serving it. Static
// assets are served before the request ever reaches the dispatcher, the same
// way the teacher's app.go let StaticFS handlers short-circuit routing.
type staticMount struct {
	prefix  string
	handler fasthttp.RequestHandler
}

// Static mounts a static file handler at prefix, checked before dispatcher
// routing on every request whose path starts with prefix.
func (a *Adapter) Static(prefix string, config StaticConfig) *Adapter {
	a.staticMounts = append(a.staticMounts, staticMount{prefix: prefix, handler: StaticHandler(config)})
	return a
}

// wsMount pairs a URL prefix with the upgrader/handler serving it. Like
// staticMounts, a WebSocket mount short-circuits dispatcher routing: an
// upgraded connection has no meridian.Request/Response to run through the
// plugin pipeline, so it is handled entirely within this package.
type wsMount struct {
	prefix   string
	upgrader *WebSocketUpgrader
	handler  WebSocketHandler
}

// WebSocket mounts a WebSocket upgrade handler at prefix, checked before
// dispatcher routing (after static mounts) on every request whose path
// starts with prefix. config is optional; DefaultWebSocketConfig is used
// when omitted.
func (a *Adapter) WebSocket(prefix string, handler WebSocketHandler, config ...*WebSocketConfig) *Adapter {
	a.wsMounts = append(a.wsMounts, wsMount{
		prefix:   prefix,
		upgrader: NewWebSocketUpgrader(config...),
		handler:  handler,
	})
	return a
}

// Config holds fasthttp-level server configuration: binding, timeouts,
// resource limits, and protocol flags (mirrors the teacher's app.go Config,
// stripped of the routing-specific fields that no longer live here).
type Config struct {
	Host    string
	Port    int
	TLSPort int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxRequestBodySize int
	Concurrency        int

	EnableHTTP2       bool
	EnableTLS         bool
	RedirectHTTPToTLS bool

	Development bool
}

// DefaultConfig mirrors the teacher's localhost/8080 development-friendly default.
func DefaultConfig() *Config {
	return &Config{
		Host:               "127.0.0.1",
		Port:               8080,
		TLSPort:            8443,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		MaxRequestBodySize: 4 * 1024 * 1024,
		Concurrency:        256 * 1024,
	}
}

// ProductionConfig mirrors the teacher's all-interfaces, TLS+HTTP/2 default.
func ProductionConfig() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               80,
		TLSPort:            443,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024,
		Concurrency:        256 * 1024,
		EnableHTTP2:        true,
		EnableTLS:          true,
		RedirectHTTPToTLS:  true,
	}
}

// DevelopmentConfig mirrors the teacher's localhost, non-standard-port default.
func DevelopmentConfig() *Config {
	return &Config{
		Host:               "127.0.0.1",
		Port:               3000,
		TLSPort:            3443,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		MaxRequestBodySize: 4 * 1024 * 1024,
		Concurrency:        256 * 1024,
		Development:        true,
	}
}

// New wraps dispatcher in an Adapter with DefaultConfig.
func New(dispatcher *meridian.Dispatcher) *Adapter {
	return NewWithConfig(dispatcher, DefaultConfig())
}

// NewWithConfig wraps dispatcher in an Adapter with the given config,
// wiring TLS/HTTP2 sub-servers the same way NewWithConfig did in the
// teacher's app.go.
func NewWithConfig(dispatcher *meridian.Dispatcher, config *Config) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Adapter{
		dispatcher:     dispatcher,
		config:         config,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	if config.EnableTLS {
		if config.Development {
			a.tlsConfig = DevelopmentTLSConfig()
		} else {
			a.tlsConfig = DefaultTLSConfig()
		}
	}

	if config.EnableHTTP2 {
		if config.Development {
			a.http2Config = DevelopmentHTTP2Config()
		} else {
			a.http2Config = DefaultHTTP2Config()
		}
		a.http2Server = NewHTTP2Server(a.http2Config, a.tlsConfig)
	}

	return a
}

// SetTLSConfig applies a custom TLS configuration, updating the HTTP/2
// server in step if one exists.
func (a *Adapter) SetTLSConfig(config *TLSConfig) *Adapter {
	a.tlsConfig = config
	a.config.EnableTLS = config != nil
	if a.http2Server != nil {
		a.http2Server = NewHTTP2Server(a.http2Config, a.tlsConfig)
	}
	return a
}

// SetHTTP2Config applies a custom HTTP/2 configuration.
func (a *Adapter) SetHTTP2Config(config *HTTP2Config) *Adapter {
	a.http2Config = config
	a.config.EnableHTTP2 = config != nil
	if config != nil {
		a.http2Server = NewHTTP2Server(a.http2Config, a.tlsConfig)
	}
	return a
}

// IsShuttingDown reports whether graceful shutdown has begun.
func (a *Adapter) IsShuttingDown() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.isShuttingDown
}

func (a *Adapter) setShuttingDown(state bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.isShuttingDown = state
}

// GetShutdownContext returns a context cancelled when graceful shutdown begins.
func (a *Adapter) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

// RegisterGracefulTask registers a cleanup task to run, with a 30s timeout,
// once shutdown begins.
func (a *Adapter) RegisterGracefulTask(task func(ctx context.Context) error) {
	a.shutdownWg.Add(1)
	go func() {
		defer a.shutdownWg.Done()
		<-a.shutdownCtx.Done()

		taskCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := task(taskCtx); err != nil {
			log.Printf("graceful task error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP/2 and fasthttp servers, waiting for
// registered graceful tasks first, forcing a shutdown if ctx expires.
func (a *Adapter) Shutdown(ctx context.Context) error {
	var shutdownErr error

	a.shutdownOnce.Do(func() {
		a.setShuttingDown(true)
		a.shutdownCancel()

		done := make(chan error, 1)
		go func() {
			a.shutdownWg.Wait()

			if a.http2Server != nil {
				if err := a.http2Server.Shutdown(context.Background()); err != nil {
					log.Printf("http2 server shutdown error: %v", err)
				}
			}
			if a.server != nil {
				if err := a.server.Shutdown(); err != nil {
					done <- fmt.Errorf("server shutdown error: %w", err)
					return
				}
			}
			done <- nil
		}()

		select {
		case shutdownErr = <-done:
		case <-ctx.Done():
			shutdownErr = ctx.Err()
			if a.http2Server != nil {
				a.http2Server.Close()
			}
			if a.server != nil {
				a.server.Shutdown()
			}
		}
	})

	return shutdownErr
}

func (a *Adapter) startHTTPRedirectServer() {
	if !a.config.RedirectHTTPToTLS || !a.config.EnableTLS {
		return
	}

	redirectHandler := func(ctx *fasthttp.RequestCtx) {
		httpsURL := fmt.Sprintf("https://%s:%d%s", a.config.Host, a.config.TLSPort, string(ctx.RequestURI()))
		ctx.Redirect(httpsURL, fasthttp.StatusMovedPermanently)
	}

	redirectServer := &fasthttp.Server{
		Handler:            redirectHandler,
		ReadTimeout:        a.config.ReadTimeout,
		WriteTimeout:       a.config.WriteTimeout,
		MaxRequestBodySize: a.config.MaxRequestBodySize,
	}

	httpAddr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	go func() {
		log.Printf("http redirect server starting on http://%s", httpAddr)
		if err := redirectServer.ListenAndServe(httpAddr); err != nil {
			log.Printf("http redirect server error: %v", err)
		}
	}()
}

// ListenAndServe starts the appropriate server combination for the current
// config (HTTP/2+TLS, h2c, TLS, or plain HTTP/1.1), same selection logic as
// the teacher's app.go.
func (a *Adapter) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	tlsAddr := fmt.Sprintf("%s:%d", a.config.Host, a.config.TLSPort)

	a.server = NewServer(a.config)
	a.server.SetHandler(a.handle)

	if a.config.RedirectHTTPToTLS && a.config.EnableTLS {
		a.startHTTPRedirectServer()
		addr = tlsAddr
	}

	if a.config.EnableHTTP2 && a.http2Server != nil {
		a.http2Server.SetFastHTTPHandler(a.handle)
		if a.config.EnableTLS && a.tlsConfig != nil {
			log.Printf("meridian HTTP/2 server starting with TLS on https://%s", addr)
			return a.http2Server.ListenAndServe(addr)
		} else if a.http2Config.H2C {
			log.Printf("meridian HTTP/2 (h2c) server starting on http://%s", addr)
			return a.http2Server.ListenAndServe(addr)
		}
	}

	if a.config.EnableTLS && a.tlsConfig != nil {
		if err := a.tlsConfig.ConfigureFastHTTPTLS(a.server.Server); err != nil {
			return fmt.Errorf("failed to configure tls: %w", err)
		}
		log.Printf("meridian server starting with TLS on https://%s", addr)
		return a.server.Server.ListenAndServeTLS(addr, a.tlsConfig.CertFile, a.tlsConfig.KeyFile)
	}

	log.Printf("meridian server starting on http://%s", addr)
	return a.server.Server.ListenAndServe(addr)
}

// ListenAndServeGraceful runs ListenAndServe and initiates graceful
// Shutdown on SIGINT/SIGTERM (or the signals passed), exactly as the
// teacher's ListenAndServeGraceful did.
func (a *Adapter) ListenAndServeGraceful(signals ...os.Signal) error {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	serverError := make(chan error, 1)
	go func() {
		if err := a.ListenAndServe(); err != nil && !a.IsShuttingDown() {
			serverError <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, signals...)

	select {
	case err := <-serverError:
		return fmt.Errorf("server error: %w", err)
	case sig := <-signalChan:
		log.Printf("received shutdown signal: %v", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// handle translates one fasthttp.RequestCtx into a meridian.Request,
// dispatches it, and writes the resulting meridian.Response back. This
// replaces the teacher's handler()+Context+router.FindRoute triad: routing,
// locale, and plugin resolution all happen inside Dispatcher.Dispatch now.
func (a *Adapter) handle(ctx *fasthttp.RequestCtx) {
	if a.IsShuttingDown() {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		ctx.SetBodyString("server is shutting down")
		return
	}

	path := string(ctx.Path())
	for _, mount := range a.staticMounts {
		if strings.HasPrefix(path, mount.prefix) {
			mount.handler(ctx)
			return
		}
	}
	for _, mount := range a.wsMounts {
		if strings.HasPrefix(path, mount.prefix) {
			if err := mount.upgrader.Upgrade(ctx, mount.handler); err != nil {
				log.Printf("websocket upgrade failed: %v", err)
			}
			return
		}
	}

	req := toMeridianRequest(ctx, a.shutdownCtx)
	resp := a.dispatcher.Dispatch(req)
	writeMeridianResponse(ctx, resp)
}

// toMeridianRequest copies everything meridian.Request needs out of ctx.
// The copy is required: ctx and its buffers are only valid for the
// duration of the fasthttp handler call, while meridian.Request may be
// read by plugins running after the handler returns.
func toMeridianRequest(ctx *fasthttp.RequestCtx, shutdownCtx context.Context) *meridian.Request {
	header := make(meridian.Header)
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		header.Set(string(k), string(v))
	})
	header.Set("X-Forwarded-For", string(ctx.Request.Header.Peek("X-Forwarded-For")))
	if ip := GetRealIP(ctx); ip != "" {
		header.Set("X-Real-IP", ip)
	}

	body := make([]byte, len(ctx.PostBody()))
	copy(body, ctx.PostBody())

	return meridian.NewRequest(
		shutdownCtx,
		string(ctx.Method()),
		string(ctx.Host()),
		string(ctx.Path()),
		string(ctx.QueryArgs().QueryString()),
		header,
		body,
	)
}

// writeMeridianResponse serializes resp onto ctx.
func writeMeridianResponse(ctx *fasthttp.RequestCtx, resp *meridian.Response) {
	ctx.SetStatusCode(resp.Status)
	for k, v := range resp.Header {
		ctx.Response.Header.Set(k, v)
	}
	ctx.SetBody(resp.BodyBytes())
}

// ServerInfo reports the adapter's effective TLS/HTTP2/config state, as the
// teacher's GetServerInfo did.
type ServerInfo struct {
	Host        string            `json:"host"`
	Port        int               `json:"port"`
	TLSPort     int               `json:"tls_port,omitempty"`
	EnableTLS   bool              `json:"enable_tls"`
	EnableHTTP2 bool              `json:"enable_http2"`
	Development bool              `json:"development"`
	TLS         *TLSHealthCheck   `json:"tls,omitempty"`
	HTTP2       *HTTP2HealthCheck `json:"http2,omitempty"`
}

// GetServerInfo returns the adapter's current server info.
func (a *Adapter) GetServerInfo() *ServerInfo {
	info := &ServerInfo{
		Host:        a.config.Host,
		Port:        a.config.Port,
		TLSPort:     a.config.TLSPort,
		EnableTLS:   a.config.EnableTLS,
		EnableHTTP2: a.config.EnableHTTP2,
		Development: a.config.Development,
	}
	if a.tlsConfig != nil {
		info.TLS = a.tlsConfig.GetTLSHealthCheck()
	}
	if a.http2Server != nil {
		info.HTTP2 = a.http2Server.GetHTTP2HealthCheck()
	}
	return info
}
