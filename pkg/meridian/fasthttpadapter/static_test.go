package fasthttpadapter

import (
	"os"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
)

func TestIsExcludedMatchesSubstringOfBaseName(t *testing.T) {
	if !isExcluded("/var/www/.gitignore", []string{".git"}) {
		t.Error("expected a path whose base name contains an excluded substring to be excluded")
	}
}

func TestIsExcludedOnlyLooksAtBaseName(t *testing.T) {
	// "config" itself is not excluded even though an ancestor directory
	// (".git") is, since isExcluded checks only the final path segment.
	if isExcluded("/var/www/.git/config", []string{".git"}) {
		t.Error("expected a pattern matching only an ancestor directory to not exclude the file")
	}
}

func TestIsExcludedAllowsNonMatchingFile(t *testing.T) {
	if isExcluded("/var/www/index.html", []string{".git", ".svn"}) {
		t.Error("expected an ordinary file to not be excluded")
	}
}

func TestFormatFileSizeHumanizesAcrossUnits(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{500, "500 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, c := range cases {
		got := formatFileSize(c.size)
		if got != c.want {
			t.Errorf("formatFileSize(%d) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestGenerateFileETagReflectsModTimeAndSize(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "etag-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Close()

	info, err := os.Stat(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	etag := generateFileETag(info)
	if etag == "" || etag[0] != '"' {
		t.Errorf("expected a quoted ETag, got %q", etag)
	}

	// Rewriting the same content without changing size produces the same
	// ETag only if mtime is unchanged; here we just assert determinism for
	// the same FileInfo value.
	if generateFileETag(info) != etag {
		t.Error("expected generateFileETag to be deterministic for the same FileInfo")
	}
}

func TestCheckETagMatchesIfNoneMatchHeader(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("If-None-Match", `"abc123"`)
	if !checkETag(&ctx, `"abc123"`) {
		t.Error("expected a matching If-None-Match to report true")
	}
	if checkETag(&ctx, `"different"`) {
		t.Error("expected a non-matching ETag to report false")
	}
}

func TestCheckModifiedSinceHonorsRFC1123(t *testing.T) {
	var ctx fasthttp.RequestCtx
	modTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx.Request.Header.Set("If-Modified-Since", modTime.Format(time.RFC1123))

	if !checkModifiedSince(&ctx, modTime) {
		t.Error("expected an unchanged file to report not-modified")
	}
	if !checkModifiedSince(&ctx, modTime.Add(-time.Hour)) {
		t.Error("expected an older mod time than If-Modified-Since to report not-modified")
	}
	if checkModifiedSince(&ctx, modTime.Add(time.Hour)) {
		t.Error("expected a newer mod time than If-Modified-Since to report modified")
	}
}

func TestCheckModifiedSinceWithoutHeaderReportsModified(t *testing.T) {
	var ctx fasthttp.RequestCtx
	if checkModifiedSince(&ctx, time.Now()) {
		t.Error("expected a missing If-Modified-Since header to report modified")
	}
}
