package meridian

import (
	"errors"
	"testing"
)

func TestDuplicateNameErrorNamesBothCallSites(t *testing.T) {
	err := NewDuplicateNameError("about", "/about", "/company/about")
	if err.Kind != ErrConfiguration {
		t.Errorf("got kind %v, want ErrConfiguration", err.Kind)
	}
	if err.ConfigSite != "/about" || err.ConfigOther != "/company/about" {
		t.Errorf("got sites %q/%q, want /about and /company/about", err.ConfigSite, err.ConfigOther)
	}
}

func TestRuntimeErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewRuntimeError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the wrapped cause")
	}
	if err.Status != 500 {
		t.Errorf("got status %d, want 500", err.Status)
	}
}

func TestDefaultNotFoundHandlerProducesTriple(t *testing.T) {
	resp := NewResponse()
	result := DefaultNotFoundHandler(nil)
	if err := result.normalize(resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 404 {
		t.Errorf("got status %d, want 404", resp.Status)
	}
}
