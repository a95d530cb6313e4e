package plugins

import (
	"context"

	"github.com/meridian-http/meridian"
)

// FlashAttr is the Request.Attr key a handler reads flash messages through.
const FlashAttr = "flash"

const flashSessionKey = "_flash"

// Flash holds messages queued for the current request (read from the
// previous request's session) and messages queued for the next one.
type Flash struct {
	Messages []string
	queued   []string
}

// Get returns and clears the messages carried over from the previous
// request (the classic "flash" read-once semantics).
func (f *Flash) Get() []string {
	msgs := f.Messages
	f.Messages = nil
	return msgs
}

// Add queues a message to be shown on the *next* request.
func (f *Flash) Add(message string) {
	f.queued = append(f.queued, message)
}

// FlashMessages returns a Plugin that rides on top of a Session plugin
// registered earlier in the same route's plugin list: flash data is stored
// as a JSON-encoded list under a reserved session key, read once per
// request and re-queued for the next one. There is no teacher equivalent
// for this (flash messages are a Rails/Sinatra convention, not something
// fasthttp-blaze implements); it is built fresh on top of the Session
// plugin's cookie/signing machinery rather than inventing a second cookie.
func FlashMessages() meridian.Plugin {
	return &flashPlugin{}
}

type flashPlugin struct{}

func (p *flashPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	sess, _ := req.Attr(SessionAttr).(*Session)
	flash := &Flash{}
	if sess != nil {
		if raw := sess.Get(flashSessionKey); raw != "" {
			flash.Messages = decodeFlash(raw)
			sess.Delete(flashSessionKey)
		}
	}
	req.SetAttr(FlashAttr, flash)
	return meridian.Continue
}

func (p *flashPlugin) CallResponse(ctx context.Context, req *meridian.Request, resp *meridian.Response) {
	flash, _ := req.Attr(FlashAttr).(*Flash)
	sess, _ := req.Attr(SessionAttr).(*Session)
	if flash == nil || sess == nil || len(flash.queued) == 0 {
		return
	}
	sess.Set(flashSessionKey, encodeFlash(flash.queued))
}

func encodeFlash(msgs []string) string {
	encoded, _ := sessionJSON.MarshalToString(msgs)
	return encoded
}

func decodeFlash(raw string) []string {
	var msgs []string
	sessionJSON.UnmarshalFromString(raw, &msgs)
	return msgs
}
