package polaris

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

func init() {
	mime.AddExtensionType(".gmi", GeminiMIME)
	mime.AddExtensionType(".gemini", GeminiMIME)
}

// ServeDir returns a handler serving files below root. Directories
// prefer an index.gmi or index.gemini file and otherwise get a
// generated link listing; a directory requested without a trailing
// slash redirects permanently to the slashed form. Hidden and
// non-world-readable entries are never served.
func ServeDir(root string) Handler {
	return &dirHandler{root: root}
}

type dirHandler struct {
	root string
}

func (d *dirHandler) ServeGemini(ctx context.Context, r *Request) (*Response, error) {
	upath := r.URL.Path
	if upath == "" {
		upath = "/"
	}
	if strings.Contains(upath, "..") {
		return PermanentFailure("Dots in path, assuming bad faith"), nil
	}
	selector := filepath.Join(d.root, filepath.FromSlash(upath))

	fi, err := os.Stat(selector)
	switch {
	case err != nil:
		return NotFound("Couldn't find file"), nil
	case isNotWorldReadable(fi):
		return TemporaryFailure("Unable to access file"), nil
	case fi.IsDir():
		if !strings.HasSuffix(upath, "/") {
			u := *r.URL
			u.Path = upath + "/"
			return RedirectPermanent(u.String()), nil
		}
		return d.serveDirectory(selector)
	default:
		return serveFile(selector)
	}
}

func serveFile(selector string) (*Response, error) {
	meta := mime.TypeByExtension(filepath.Ext(selector))
	if meta == "" {
		// Assume plain UTF-8 text.
		meta = GeminiMIME + "; charset=utf-8"
	}
	file, err := os.Open(selector)
	if err != nil {
		return TemporaryFailure("Unable to access file"), nil
	}
	// The writer closes the file after draining it.
	return SuccessReader(meta, file), nil
}

func (d *dirHandler) serveDirectory(selector string) (*Response, error) {
	entries, err := os.ReadDir(selector)
	if err != nil {
		return TemporaryFailure("Unable to show directory listing"), nil
	}
	doc := NewDocument().AddHeading(H1, "Directory Contents")
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil || isNotWorldReadable(fi) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.Name() == "index.gmi" || entry.Name() == "index.gemini" {
			// Found an index file, serve that instead.
			return serveFile(filepath.Join(selector, entry.Name()))
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		doc.AddLink(name, name)
	}
	return doc.Response(), nil
}

func isNotWorldReadable(fi os.FileInfo) bool {
	return fi.Mode().Perm()&0444 != 0444
}

// ServeFile returns a handler that always serves the named file,
// whatever the request path.
func ServeFile(name string) Handler {
	return HandlerFunc(func(ctx context.Context, r *Request) (*Response, error) {
		fi, err := os.Stat(name)
		if err != nil {
			return NotFound("Couldn't find file"), nil
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("gemini: ServeFile on directory %v", name)
		}
		return serveFile(name)
	})
}
