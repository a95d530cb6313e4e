package plugins

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/go-playground/validator/v10"
	"github.com/meridian-http/meridian"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// BodyAttr is the Request.Attr key under which the decoded-and-validated
// body is stored for handlers (mirrors the teacher's validation_middleware.go
// convention of stashing the parsed struct in Context locals).
const BodyAttr = "validated_body"

// ValidationError mirrors fasthttpadapter.ValidationError (validator.go).
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type validationPlugin struct {
	meridian.BasePlugin
	validate *validator.Validate
	newBody  func() any
}

// JSONBody returns a Plugin that decodes the request body into a fresh
// value produced by newBody, validates it with go-playground/validator/v10
// struct tags, and either stores the result under BodyAttr or short-circuits
// with a 400 describing every failed field (spec.md §9 "arbitrary
// per-request attribute bag lets plugins pass parsed/validated data to
// handlers" is exactly this pattern).
func JSONBody(newBody func() any) meridian.Plugin {
	return &validationPlugin{validate: validator.New(), newBody: newBody}
}

func (p *validationPlugin) Call(ctx context.Context, req *meridian.Request, resp *meridian.Response) meridian.Decision {
	body := p.newBody()
	if len(req.Body) > 0 {
		if err := jsonAPI.Unmarshal(req.Body, body); err != nil {
			return badRequest(resp, []ValidationError{{Message: "malformed json: " + err.Error()}})
		}
	}

	if err := p.validate.Struct(body); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return badRequest(resp, []ValidationError{{Message: err.Error()}})
		}
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: friendlyMessage(fe),
			})
		}
		return badRequest(resp, out)
	}

	req.SetAttr(BodyAttr, body)
	return meridian.Continue
}

func badRequest(resp *meridian.Response, errs []ValidationError) meridian.Decision {
	resp.Status = 400
	resp.Header.Set("Content-Type", "application/json")
	payload, _ := jsonAPI.Marshal(map[string]any{"errors": errs})
	resp.SetBody(payload)
	return meridian.ShortCircuitWith(resp)
}

func friendlyMessage(fe validator.FieldError) string {
	var b strings.Builder
	b.WriteString(fe.Field())
	b.WriteString(" failed validation: ")
	b.WriteString(fe.Tag())
	return b.String()
}
