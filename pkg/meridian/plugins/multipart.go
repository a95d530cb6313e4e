package plugins

import (
	"context"

	"github.com/meridian-http/meridian"
)

// MultipartFormAttr is the attribute key the parsed *meridian.MultipartForm
// is stored under, for handlers to read via req.Attr(MultipartFormAttr).
const MultipartFormAttr = "multipart_form"

// MultipartForm returns a Plugin that parses a multipart/form-data body into
// a *meridian.MultipartForm, short-circuiting with 400 on malformed input or
// a violated limit (file too large, too many files, disallowed type). Routes
// that do not expect file uploads should not register this plugin.
//
// Grounded on the teacher's MultipartMiddleware (multipart_middleware.go),
// generalized from a Context-bound onion-model middleware to a two-phase
// Plugin whose Call only needs the request body.
func MultipartForm(config *meridian.MultipartConfig) meridian.Plugin {
	if config == nil {
		config = meridian.DefaultMultipartConfig()
	}
	return &multipartPlugin{config: config}
}

type multipartPlugin struct {
	meridian.BasePlugin
	config *meridian.MultipartConfig
}

func (p *multipartPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	contentType := req.Header.Get("Content-Type")
	form, err := meridian.ParseMultipartForm(req.Body, contentType, p.config)
	if err != nil {
		resp.Status = 400
		resp.Header.Set("Content-Type", "application/json")
		resp.SetBody([]byte(`{"error":"` + err.Error() + `"}`))
		return meridian.ShortCircuitWith(resp)
	}
	req.SetAttr(MultipartFormAttr, form)
	return meridian.Continue
}
