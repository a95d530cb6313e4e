package meridian

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// resultKind tags which variant of the handler-result sum type a Result
// holds (spec.md §4.4 "Result normalization", §9 "tagged return shapes").
type resultKind uint8

const (
	resultNone resultKind = iota
	resultResponse
	resultJSON
	resultText
)

// Result is the handler-return sum type, replacing the teacher's
// subtyped Context.JSON/.Text/.HTML response builders (§9 "dynamic module
// mixin for response helpers") with a plain value the dispatch seam folds
// into a *Response.
type Result struct {
	kind resultKind

	status  int
	headers Header
	body    []byte

	json any
	text string

	resp *Response
}

// JSON folds into a JSON body with status 200 and
// content-type: application/json (spec.md §4.4 "A mapping → JSON-serialized
// body").
func JSON(v any) Result {
	return Result{kind: resultJSON, json: v, status: 200}
}

// Text folds into a plain-text body with status 200 and
// content-type: text/plain (spec.md §4.4 "A string → plain text body").
func Text(s string) Result {
	return Result{kind: resultText, text: s, status: 200}
}

// Triple folds into `{status, headers, body}`, merging headers onto the
// response and substituting the body (spec.md §4.4 "A triple → replaces
// the response").
func Triple(status int, headers Header, body []byte) Result {
	return Result{kind: resultResponse, status: status, headers: headers, body: body}
}

// FromResponse wraps an already response-shaped value, used directly
// (spec.md §4.4 "A response-shaped object → used directly").
func FromResponse(resp *Response) Result {
	return Result{kind: resultResponse, resp: resp}
}

// None produces an empty 200 response; used by handlers with nothing to
// say beyond status/headers already set on the in-flight Response.
func None() Result {
	return Result{kind: resultNone}
}

// normalize folds r into resp, per spec.md §4.4's four cases.
func (r Result) normalize(resp *Response) error {
	switch r.kind {
	case resultResponse:
		if r.resp != nil {
			*resp = *r.resp
			return nil
		}
		resp.Status = r.status
		resp.MergeHeader(r.headers)
		resp.SetBody(r.body)
		return nil
	case resultJSON:
		body, err := jsonAPI.Marshal(r.json)
		if err != nil {
			return &HTTPError{Kind: ErrRuntime, Message: "failed to marshal JSON result", Cause: err}
		}
		resp.Status = r.status
		resp.Header.Set("Content-Type", "application/json")
		resp.SetBody(body)
		return nil
	case resultText:
		resp.Status = r.status
		resp.Header.Set("Content-Type", "text/plain")
		resp.SetBody([]byte(r.text))
		return nil
	default:
		return nil
	}
}
