package opendoc

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageInspect(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "wide.png")
	writeTestPNG(t, pngPath, 40, 20)

	tests := []struct {
		name       string
		source     string
		props      Props
		wantWidth  int
		wantHeight int
		wantMime   string
		wantExt    string
	}{
		{
			name:       "png file",
			source:     pngPath,
			wantWidth:  40,
			wantHeight: 20,
			wantMime:   "image/png",
			wantExt:    "png",
		},
		{
			name:       "file url",
			source:     "file://" + filepath.ToSlash(pngPath),
			wantWidth:  40,
			wantHeight: 20,
			wantMime:   "image/png",
			wantExt:    "png",
		},
		{
			name:       "gif data uri",
			source:     gifPixel,
			wantWidth:  1,
			wantHeight: 1,
			wantMime:   "image/gif",
			wantExt:    "gif",
		},
		{
			name:       "width and height override",
			source:     pngPath,
			props:      Props{"width": 100, "height": "30px"},
			wantWidth:  100,
			wantHeight: 30,
			wantMime:   "image/png",
			wantExt:    "png",
		},
		{
			name:       "width alone scales height",
			source:     pngPath,
			props:      Props{"width": 80},
			wantWidth:  80,
			wantHeight: 40,
			wantMime:   "image/png",
			wantExt:    "png",
		},
		{
			name:       "height alone scales width",
			source:     pngPath,
			props:      Props{"height": 10.0},
			wantWidth:  20,
			wantHeight: 10,
			wantMime:   "image/png",
			wantExt:    "png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.source, tt.props)
			w, err := img.Width(true)
			if err != nil {
				t.Fatalf("Width() error = %v", err)
			}
			h, err := img.Height(true)
			if err != nil {
				t.Fatalf("Height() error = %v", err)
			}
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			mime, _ := img.ContentType()
			ext, _ := img.Extension()
			if mime != tt.wantMime || ext != tt.wantExt {
				t.Errorf("type = %s/%s, want %s/%s", mime, ext, tt.wantMime, tt.wantExt)
			}
		})
	}
}

func TestImageIntrinsicSizeIgnoresOverride(t *testing.T) {
	img := NewImage(gifPixel, Props{"width": 300})
	w, err := img.Width(false)
	if err != nil {
		t.Fatal(err)
	}
	if w != 1 {
		t.Errorf("Width(false) = %d, want the detected 1", w)
	}
}

func TestImageJPEGExtension(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2)), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "photo.jpeg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	ext, err := NewImage(path, nil).Extension()
	if err != nil {
		t.Fatal(err)
	}
	if ext != "jpg" {
		t.Errorf("Extension() = %q, want jpg", ext)
	}
}

func TestImageSourceKinds(t *testing.T) {
	tests := []struct {
		source string
		file   bool
		remote bool
	}{
		{"logo.png", true, false},
		{"file:///srv/logo.png", true, false},
		{"https://example.com/logo.png", true, true},
		{"ftp://example.com/logo.png", true, true},
		{gifPixel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.source[:min(len(tt.source), 24)], func(t *testing.T) {
			img := NewImage(tt.source, nil)
			if img.IsFile() != tt.file || img.IsRemote() != tt.remote {
				t.Errorf("IsFile/IsRemote = %v/%v, want %v/%v", img.IsFile(), img.IsRemote(), tt.file, tt.remote)
			}
		})
	}
}

func TestImageSourceKey(t *testing.T) {
	a := NewImage(gifPixel, nil).sourceKey()
	b := NewImage(gifPixel, Props{"width": 5}).sourceKey()
	if a != b {
		t.Error("identical data URIs produced different keys")
	}
	if !strings.HasPrefix(a, "data:") || strings.Contains(a, "base64") {
		t.Errorf("data key = %q, want a digest", a)
	}
	if key := NewImage("logo.png", nil).sourceKey(); key != "logo.png" {
		t.Errorf("file key = %q, want the path", key)
	}
}

func TestImageResourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.png")},
		{"bad base64", "data:image/png;base64,!!!"},
		{"empty payload", "data:image/png;base64,"},
		{"unknown encoding", "data:image/png;rot13,abc"},
		{"not an image", "data:text/plain,hello"},
		{"unsupported scheme", "ftp://example.com/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImage(tt.source, nil).Width(false)
			if !IsResourceError(err) {
				t.Errorf("Width() error = %v, want resource error", err)
			}
		})
	}
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{uri: "data:text/plain;base64,aGVsbG8=", want: "hello"},
		{uri: "data:,hello%20world", want: "hello world"},
		{uri: "data:text/plain;charset=utf-8,a%2Cb", want: "a,b"},
		{uri: "data:text/plain", wantErr: true},
		{uri: "image.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := decodeDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeDataURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("decodeDataURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageRemote(t *testing.T) {
	pngPath := filepath.Join(t.TempDir(), "remote.png")
	writeTestPNG(t, pngPath, 7, 5)
	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/remote.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	img := NewImage(srv.URL+"/remote.png", nil)
	w, err := img.Width(false)
	if err != nil {
		t.Fatalf("Width() error = %v", err)
	}
	if w != 7 {
		t.Errorf("Width() = %d, want 7", w)
	}

	dest := filepath.Join(t.TempDir(), "copy.png")
	if err := img.Save(dest); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	saved, _ := os.ReadFile(dest)
	if !bytes.Equal(saved, data) {
		t.Error("saved content differs from the served image")
	}

	if _, err := NewImage(srv.URL+"/missing.png", nil).Data(); !IsResourceError(err) {
		t.Errorf("404 error = %v, want resource error", err)
	}
}

func TestImageCache(t *testing.T) {
	cache := NewImageCache(2)
	cache.set("a", imageInfo{width: 1})
	cache.set("b", imageInfo{width: 2})
	if _, ok := cache.get("a"); !ok {
		t.Fatal("a missing")
	}
	// b is now the least recently used entry
	cache.set("c", imageInfo{width: 3})
	if _, ok := cache.get("b"); ok {
		t.Error("b not evicted")
	}
	if info, ok := cache.get("a"); !ok || info.width != 1 {
		t.Errorf("a = %v, %v", info, ok)
	}
	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}

	cache.set("a", imageInfo{width: 10})
	if info, _ := cache.get("a"); info.width != 10 {
		t.Errorf("updated a = %v", info)
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d", cache.Size())
	}

	disabled := NewImageCache(0)
	disabled.set("a", imageInfo{width: 1})
	if disabled.Size() != 0 {
		t.Error("disabled cache stored an entry")
	}
}

func TestImageInspectUsesSharedCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cached.png")
	writeTestPNG(t, path, 9, 9)
	if _, err := NewImage(path, nil).Width(false); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	// metadata comes from the cache; the content itself is gone
	w, err := NewImage(path, nil).Width(false)
	if err != nil || w != 9 {
		t.Errorf("cached Width() = %d, %v", w, err)
	}
	if _, err := NewImage(path, nil).Data(); !IsResourceError(err) {
		t.Errorf("Data() error = %v, want resource error", err)
	}
}
