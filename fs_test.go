package polaris

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fsRequest(t *testing.T, path string) *Request {
	t.Helper()
	return muxRequest(t, "gemini://example.org"+path)
}

func serveFS(t *testing.T, h Handler, path string) (*Response, string) {
	t.Helper()
	res, err := h.ServeGemini(context.Background(), fsRequest(t, path))
	if err != nil {
		t.Fatalf("ServeGemini(%q): %v", path, err)
	}
	if !res.Status.HasBody() || res.Body == nil {
		return res, ""
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if c, ok := res.Body.(io.Closer); ok {
		c.Close()
	}
	return res, string(body)
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
		t.Fatalf("writing %v: %v", name, err)
	}
}

func TestServeDirFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "page.gmi", "# Page\r\n")

	res, body := serveFS(t, ServeDir(root), "/page.gmi")
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v %v", res.Status, res.Meta)
	}
	if !strings.HasPrefix(res.Meta, "text/gemini") {
		t.Errorf("Meta = %q, want text/gemini", res.Meta)
	}
	if body != "# Page\r\n" {
		t.Errorf("body = %q", body)
	}
}

func TestServeDirUnknownExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.xyzzy", "plain enough")

	res, _ := serveFS(t, ServeDir(root), "/notes.xyzzy")
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v %v", res.Status, res.Meta)
	}
	if res.Meta != "text/gemini; charset=utf-8" {
		t.Errorf("Meta = %q", res.Meta)
	}
}

func TestServeDirMissingFile(t *testing.T) {
	res, _ := serveFS(t, ServeDir(t.TempDir()), "/nope.gmi")
	if res.Status != StatusNotFound {
		t.Errorf("Status = %v, want %v", res.Status, StatusNotFound)
	}
}

func TestServeDirDotDot(t *testing.T) {
	res, _ := serveFS(t, ServeDir(t.TempDir()), "/../../etc/passwd")
	if res.Status.Class() != ClassPermanentFailure {
		t.Errorf("Status = %v, want permanent failure", res.Status)
	}
}

func TestServeDirRedirectsToSlash(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	res, _ := serveFS(t, ServeDir(root), "/sub")
	if res.Status != StatusRedirectPermanent {
		t.Fatalf("Status = %v, want %v", res.Status, StatusRedirectPermanent)
	}
	if res.Meta != "gemini://example.org/sub/" {
		t.Errorf("redirect target = %q", res.Meta)
	}
}

func TestServeDirListing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "alpha.gmi", "a")
	writeFile(t, root, ".hidden", "h")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	res, body := serveFS(t, ServeDir(root), "/")
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v %v", res.Status, res.Meta)
	}
	if !strings.Contains(body, "=> alpha.gmi") {
		t.Errorf("listing misses alpha.gmi:\n%v", body)
	}
	if !strings.Contains(body, "=> sub/") {
		t.Errorf("listing misses sub/:\n%v", body)
	}
	if strings.Contains(body, ".hidden") {
		t.Errorf("listing shows hidden file:\n%v", body)
	}
}

func TestServeDirIndexPreferred(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.gmi", "# Welcome\r\n")
	writeFile(t, root, "other.gmi", "other")

	res, body := serveFS(t, ServeDir(root), "/")
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v %v", res.Status, res.Meta)
	}
	if body != "# Welcome\r\n" {
		t.Errorf("body = %q, want index contents", body)
	}
}

func TestServeFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "only.gmi", "# Only\r\n")

	res, body := serveFS(t, ServeFile(filepath.Join(root, "only.gmi")), "/whatever/path")
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v %v", res.Status, res.Meta)
	}
	if body != "# Only\r\n" {
		t.Errorf("body = %q", body)
	}
}
