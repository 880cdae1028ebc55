package icons

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cbegin/pitchpad-go/internal/api"
	"github.com/cbegin/pitchpad-go/internal/geometry"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type failing struct{ bad geometry.Button }

func (failing) Name() string { return "failing" }

func (f failing) Load(ctx context.Context, b geometry.Button) (image.Image, error) {
	if b == f.bad {
		return nil, errors.New("404")
	}
	return Builtin{Size: 8}.Load(ctx, b)
}

func TestBuiltinBecomesReady(t *testing.T) {
	s := NewSet(WithLogger(quiet()))
	var fired atomic.Int32
	s.OnReady(func() { fired.Add(1) })
	s.Load(context.Background(), Builtin{Size: 32})
	s.Wait()

	if !s.Ready() {
		t.Fatalf("set should be ready")
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("ready callbacks = %d, want 1", got)
	}
	for _, b := range geometry.Buttons {
		img := s.Image(b)
		if img == nil {
			t.Fatalf("%s icon missing", b)
		}
		if got := img.Bounds().Dx(); got != 32 {
			t.Fatalf("%s icon width = %d, want 32", b, got)
		}
	}
	late := false
	s.OnReady(func() { late = true })
	if !late {
		t.Fatalf("OnReady after ready should run immediately")
	}
}

func TestLoadFailureKeepsSetNotReady(t *testing.T) {
	s := NewSet(WithLogger(quiet()))
	fired := false
	s.OnReady(func() { fired = true })
	s.Load(context.Background(), failing{bad: geometry.Cyan})
	s.Wait()

	if s.Ready() || fired {
		t.Fatalf("set should not be ready after a failed icon")
	}
	if s.Image(geometry.Cyan) != nil {
		t.Fatalf("failed icon should be nil")
	}
	if s.Image(geometry.Green) == nil {
		t.Fatalf("other icons should still load")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	for _, b := range geometry.Buttons {
		writePNG(t, filepath.Join(dir, FileName(b)))
	}
	s := NewSet(WithLogger(quiet()))
	s.Load(context.Background(), Dir(dir))
	s.Wait()
	if !s.Ready() {
		t.Fatalf("dir icons should load")
	}
}

func TestRemoteLoader(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	pngBytes := buf.Bytes()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/api/get-icon/") {
			http.NotFound(w, r)
			return
		}
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL + "/api")
	s := NewSet(WithLogger(quiet()))
	s.Load(context.Background(), Remote{Fetch: c, URL: c.IconURL})
	s.Wait()
	if !s.Ready() {
		t.Fatalf("remote icons should load")
	}
	if got := hits.Load(); got != 4 {
		t.Fatalf("requests = %d, want 4", got)
	}
}
