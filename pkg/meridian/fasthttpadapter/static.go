package fasthttpadapter

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/valyala/fasthttp"
)

// StaticConfig controls how StaticHandler serves files from a directory.
// Mirrors the teacher's StaticConfig (static.go) but operates directly on
// fasthttp.RequestCtx instead of the removed Context type, since static
// file serving sits outside the meridian.Request/Response pipeline and
// benefits from fasthttp's zero-copy SendFile and range support.
type StaticConfig struct {
	// Root is the directory to serve files from.
	Root string

	// Index is the file served for directory requests. Default: "index.html".
	Index string

	// Browse enables directory listing when no index file is present.
	Browse bool

	// ByteRange enables HTTP range request support.
	ByteRange bool

	// CacheDuration sets Cache-Control max-age. Zero disables caching headers.
	CacheDuration time.Duration

	// GenerateETag enables ETag generation from modification time and size.
	GenerateETag bool

	// Exclude lists substrings matched against the file's base name to deny.
	// Default: [".git", ".svn", ".DS_Store"].
	Exclude []string

	// NotFound is called when a requested file does not exist. If nil, a
	// plain 404 is written.
	NotFound fasthttp.RequestHandler
}

// DefaultStaticConfig returns secure, production-ready defaults.
func DefaultStaticConfig(root string) StaticConfig {
	return StaticConfig{
		Root:          root,
		Index:         "index.html",
		Browse:        false,
		ByteRange:     true,
		CacheDuration: time.Hour,
		GenerateETag:  true,
		Exclude:       []string{".git", ".svn", ".DS_Store"},
	}
}

// StaticHandler builds a fasthttp.RequestHandler serving files under config.Root.
// The handler validates the resolved path stays within Root, rejects excluded
// files, serves directory indexes or listings, and honors conditional and
// range requests.
func StaticHandler(config StaticConfig) fasthttp.RequestHandler {
	if config.Root == "" {
		panic("static root directory cannot be empty")
	}

	absRoot, err := filepath.Abs(config.Root)
	if err != nil {
		panic(fmt.Sprintf("invalid static root directory: %v", err))
	}
	if _, err := os.Stat(absRoot); os.IsNotExist(err) {
		panic(fmt.Sprintf("static root directory does not exist: %s", absRoot))
	}
	config.Root = absRoot
	if config.Index == "" {
		config.Index = "index.html"
	}

	return func(ctx *fasthttp.RequestCtx) {
		urlPath := string(ctx.Path())

		cleanPath := path.Clean(urlPath)
		if !strings.HasPrefix(cleanPath, "/") {
			cleanPath = "/" + cleanPath
		}

		fsPath := filepath.Join(config.Root, filepath.FromSlash(cleanPath))
		if !strings.HasPrefix(fsPath, config.Root) {
			ctx.Error("access denied", fasthttp.StatusForbidden)
			return
		}

		if isExcluded(fsPath, config.Exclude) {
			writeNotFound(ctx, config)
			return
		}

		fileInfo, err := os.Stat(fsPath)
		if err != nil {
			writeNotFound(ctx, config)
			return
		}

		if fileInfo.IsDir() {
			handleDirectory(ctx, fsPath, cleanPath, config)
			return
		}

		serveFile(ctx, fsPath, fileInfo, config)
	}
}

// Static is a convenience wrapper around StaticHandler using default config.
func Static(root string) fasthttp.RequestHandler {
	return StaticHandler(DefaultStaticConfig(root))
}

func writeNotFound(ctx *fasthttp.RequestCtx, config StaticConfig) {
	if config.NotFound != nil {
		config.NotFound(ctx)
		return
	}
	ctx.Error("file not found", fasthttp.StatusNotFound)
}

func serveFile(ctx *fasthttp.RequestCtx, fsPath string, fileInfo os.FileInfo, config StaticConfig) {
	contentType := detectContentType(fsPath)
	ctx.Response.Header.Set("Content-Type", contentType)

	if config.CacheDuration > 0 {
		ctx.Response.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(config.CacheDuration.Seconds())))
		ctx.Response.Header.Set("Expires", time.Now().Add(config.CacheDuration).UTC().Format(time.RFC1123))
	}

	lastModified := fileInfo.ModTime().UTC().Format(time.RFC1123)
	ctx.Response.Header.Set("Last-Modified", lastModified)

	if config.GenerateETag {
		etag := generateFileETag(fileInfo)
		ctx.Response.Header.Set("ETag", etag)

		if checkETag(ctx, etag) || checkModifiedSince(ctx, fileInfo.ModTime()) {
			ctx.SetStatusCode(fasthttp.StatusNotModified)
			return
		}
	}

	if config.ByteRange {
		ctx.Response.Header.Set("Accept-Ranges", "bytes")
	}

	rangeHeader := string(ctx.Request.Header.Peek("Range"))
	if config.ByteRange && rangeHeader != "" {
		serveFileRange(ctx, fsPath, fileInfo, rangeHeader)
		return
	}

	ctx.SendFile(fsPath)
}

func handleDirectory(ctx *fasthttp.RequestCtx, fsPath, urlPath string, config StaticConfig) {
	indexPath := filepath.Join(fsPath, config.Index)
	if indexInfo, err := os.Stat(indexPath); err == nil && !indexInfo.IsDir() {
		serveFile(ctx, indexPath, indexInfo, config)
		return
	}

	if !config.Browse {
		ctx.Error("directory listing is disabled", fasthttp.StatusForbidden)
		return
	}

	generateDirectoryListing(ctx, fsPath, urlPath)
}

func generateDirectoryListing(ctx *fasthttp.RequestCtx, fsPath, urlPath string) {
	dir, err := os.Open(fsPath)
	if err != nil {
		ctx.Error("failed to open directory", fasthttp.StatusInternalServerError)
		return
	}
	defer dir.Close()

	entries, err := dir.Readdir(-1)
	if err != nil {
		ctx.Error("failed to read directory", fasthttp.StatusInternalServerError)
		return
	}

	var dirs, files []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Index of %s</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; padding: 20px; }
		h1 { border-bottom: 1px solid #ddd; padding-bottom: 10px; }
		table { width: 100%%; border-collapse: collapse; }
		th { text-align: left; padding: 10px; border-bottom: 2px solid #ddd; background: #f5f5f5; }
		td { padding: 10px; border-bottom: 1px solid #eee; }
		a { color: #0066cc; text-decoration: none; }
		.size { text-align: right; }
		.modified { text-align: right; color: #666; }
		.dir { font-weight: bold; }
	</style>
</head>
<body>
	<h1>Index of %s</h1>
	<table>
		<thead><tr><th>Name</th><th class="size">Size</th><th class="modified">Last Modified</th></tr></thead>
		<tbody>`, urlPath, urlPath)

	if urlPath != "/" {
		fmt.Fprintf(&b, `<tr><td class="dir"><a href="%s">..</a></td><td class="size">-</td><td class="modified">-</td></tr>`, path.Dir(urlPath))
	}
	for _, entry := range dirs {
		href := path.Join(urlPath, entry.Name()) + "/"
		fmt.Fprintf(&b, `<tr><td class="dir"><a href="%s">%s/</a></td><td class="size">-</td><td class="modified">%s</td></tr>`,
			href, entry.Name(), entry.ModTime().Format("2006-01-02 15:04:05"))
	}
	for _, entry := range files {
		href := path.Join(urlPath, entry.Name())
		fmt.Fprintf(&b, `<tr><td><a href="%s">%s</a></td><td class="size">%s</td><td class="modified">%s</td></tr>`,
			href, entry.Name(), formatFileSize(entry.Size()), entry.ModTime().Format("2006-01-02 15:04:05"))
	}
	b.WriteString(`</tbody></table></body></html>`)

	ctx.Response.Header.Set("Content-Type", "text/html; charset=utf-8")
	ctx.SetBodyString(b.String())
}

func serveFileRange(ctx *fasthttp.RequestCtx, fsPath string, fileInfo os.FileInfo, rangeHeader string) {
	file, err := os.Open(fsPath)
	if err != nil {
		ctx.Error("failed to open file", fasthttp.StatusInternalServerError)
		return
	}
	defer file.Close()

	fileSize := fileInfo.Size()

	if !strings.HasPrefix(rangeHeader, "bytes=") {
		ctx.Error("invalid range header", fasthttp.StatusBadRequest)
		return
	}

	parts := strings.Split(rangeHeader[len("bytes="):], "-")
	if len(parts) != 2 {
		ctx.Error("invalid range format", fasthttp.StatusBadRequest)
		return
	}

	var start, end int64
	if parts[0] != "" {
		start, _ = strconv.ParseInt(parts[0], 10, 64)
	}
	if parts[1] != "" {
		end, _ = strconv.ParseInt(parts[1], 10, 64)
	} else {
		end = fileSize - 1
	}

	if start < 0 || end >= fileSize || start > end {
		ctx.Response.Header.Set("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		ctx.SetStatusCode(fasthttp.StatusRequestedRangeNotSatisfiable)
		return
	}

	contentLength := end - start + 1

	ctx.SetStatusCode(fasthttp.StatusPartialContent)
	ctx.Response.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	ctx.Response.Header.Set("Content-Type", detectContentType(fsPath))

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		ctx.Error("failed to seek file", fasthttp.StatusInternalServerError)
		return
	}
	io.CopyN(ctx.Response.BodyWriter(), file, contentLength)
}

func isExcluded(p string, excludePatterns []string) bool {
	base := filepath.Base(p)
	for _, pattern := range excludePatterns {
		if strings.Contains(base, pattern) {
			return true
		}
	}
	return false
}

// detectContentType sniffs the content type from the file's bytes,
// returning application/octet-stream when the file cannot be read.
func detectContentType(filePath string) string {
	mt, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

func generateFileETag(fileInfo os.FileInfo) string {
	return fmt.Sprintf(`"%x-%x"`, fileInfo.ModTime().Unix(), fileInfo.Size())
}

func checkETag(ctx *fasthttp.RequestCtx, etag string) bool {
	return string(ctx.Request.Header.Peek("If-None-Match")) == etag
}

func checkModifiedSince(ctx *fasthttp.RequestCtx, modTime time.Time) bool {
	ifModifiedSince := string(ctx.Request.Header.Peek("If-Modified-Since"))
	if ifModifiedSince == "" {
		return false
	}
	clientTime, err := time.Parse(time.RFC1123, ifModifiedSince)
	if err != nil {
		return false
	}
	return !modTime.Truncate(time.Second).After(clientTime)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
