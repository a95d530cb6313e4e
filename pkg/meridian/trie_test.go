package meridian

import (
	"regexp"
	"testing"
)

func TestClassifySegmentIdentifiesKinds(t *testing.T) {
	cases := []struct {
		seg      string
		wantKind segKind
		wantName string
	}{
		{"users", segLiteral, ""},
		{":id", segParam, "id"},
		{"*path", segWildcard, "path"},
		{"*", segWildcard, "path"},
	}
	for _, c := range cases {
		kind, name := classifySegment(c.seg)
		if kind != c.wantKind || name != c.wantName {
			t.Errorf("classifySegment(%q) = (%v, %q), want (%v, %q)", c.seg, kind, name, c.wantKind, c.wantName)
		}
	}
}

func TestTrieInsertPanicsOnParamNameMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on conflicting param names at the same trie position")
		}
	}()
	root := newTrieNode()
	root.insert([]string{"users", ":id"})
	root.insert([]string{"users", ":userID"})
}

func TestTrieInsertPanicsOnWildcardNameMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on conflicting wildcard names at the same trie position")
		}
	}()
	root := newTrieNode()
	root.insert([]string{"files", "*path"})
	root.insert([]string{"files", "*rest"})
}

func TestTrieMatchUndoesCaptureOnFailedBacktrack(t *testing.T) {
	root := newTrieNode()
	// :id has no handlers at all, so any method fails there and the
	// matcher must backtrack out of the param branch having made no
	// lasting capture.
	root.insert([]string{"items", ":id"})

	params := map[string]string{}
	_, ok := root.match([]string{"items", "new"}, []string{"items", "new"}, "GET", params)
	if ok {
		t.Fatal("expected no match: the only candidate leaf has no GET handler")
	}
	if len(params) != 0 {
		t.Errorf("expected the failed param capture to be undone, got %+v", params)
	}
}

func TestConstraintSetRejectsNonMatchingCapturedValue(t *testing.T) {
	cs := constraintSet{"id": regexp.MustCompile(`^\d+$`)}
	if cs.check(map[string]string{"id": "abc"}) {
		t.Error("expected non-numeric id to fail the constraint")
	}
	if !cs.check(map[string]string{"id": "42"}) {
		t.Error("expected numeric id to satisfy the constraint")
	}
}

func TestConstraintSetIgnoresAbsentParam(t *testing.T) {
	cs := constraintSet{"id": regexp.MustCompile(`^\d+$`)}
	if !cs.check(map[string]string{}) {
		t.Error("a constraint on a param that was never captured should not fail the match")
	}
}
