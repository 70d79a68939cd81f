package opendoc

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a picture leaf. The source is a local path, a file:// URL, an
// http(s) URL or a data URI. Dimensions and content type are detected
// lazily and cached per source.
type Image struct {
	node
	source string
	info   *imageInfo
}

// NewImage creates an image. Properties "width" and "height" (pixels)
// override the detected size; "title" becomes the picture title.
func NewImage(source string, p Props) *Image {
	return &Image{node: newNode(p), source: source}
}

func (i *Image) Source() string { return i.source }

// IsFile reports whether the source is a file or URL rather than inline
// data.
func (i *Image) IsFile() bool {
	return !strings.HasPrefix(i.source, "data:")
}

// IsRemote reports whether the source must be fetched over the network.
// Any scheme other than file:// counts as remote.
func (i *Image) IsRemote() bool {
	if !i.IsFile() {
		return false
	}
	pos := strings.Index(i.source, "://")
	if pos < 0 {
		return false
	}
	return i.source[:pos] != "file"
}

// Width returns the width in pixels. With allowOverride a "width" property
// wins; a lone "height" override scales the detected width.
func (i *Image) Width(allowOverride bool) (int, error) {
	return i.dimension(allowOverride, "width", "height", func(in imageInfo) (int, int) { return in.width, in.height })
}

// Height returns the height in pixels; see Width.
func (i *Image) Height(allowOverride bool) (int, error) {
	return i.dimension(allowOverride, "height", "width", func(in imageInfo) (int, int) { return in.height, in.width })
}

func (i *Image) dimension(allowOverride bool, key, other string, pick func(imageInfo) (int, int)) (int, error) {
	if allowOverride {
		if v, ok := numericProp(i.Properties().Get(key, nil)); ok {
			return int(math.Round(v)), nil
		}
	}
	info, err := i.inspect()
	if err != nil {
		return 0, err
	}
	own, opposite := pick(info)
	if allowOverride && opposite > 0 {
		if v, ok := numericProp(i.Properties().Get(other, nil)); ok {
			return int(math.Round(float64(own) * v / float64(opposite))), nil
		}
	}
	return own, nil
}

// ContentType returns the detected mime type, e.g. "image/png".
func (i *Image) ContentType() (string, error) {
	info, err := i.inspect()
	if err != nil {
		return "", err
	}
	return info.mime, nil
}

// Extension returns the archive file extension for the image.
func (i *Image) Extension() (string, error) {
	mime, err := i.ContentType()
	if err != nil {
		return "", err
	}
	ext := mime[strings.LastIndex(mime, "/")+1:]
	if ext == "jpeg" {
		ext = "jpg"
	}
	return ext, nil
}

// Data reads the full image content.
func (i *Image) Data() ([]byte, error) {
	rc, err := i.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, NewResourceError(i.source, err)
	}
	return data, nil
}

// Save copies the image content to dest.
func (i *Image) Save(dest string) error {
	rc, err := i.open()
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(dest)
	if err != nil {
		return NewResourceError(i.source, fmt.Errorf("failed to create %s: %w", dest, err))
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return NewResourceError(i.source, fmt.Errorf("failed to write %s: %w", dest, err))
	}
	if err := f.Close(); err != nil {
		return NewResourceError(i.source, err)
	}
	return nil
}

// sourceKey identifies the image content: the source itself for files and
// URLs, a digest for inline data.
func (i *Image) sourceKey() string {
	if i.IsFile() {
		return i.source
	}
	sum := blake2b.Sum256([]byte(i.source))
	return "data:" + hex.EncodeToString(sum[:])
}

func (i *Image) inspect() (imageInfo, error) {
	if i.info != nil {
		return *i.info, nil
	}
	cache := DefaultImageCache()
	key := i.sourceKey()
	if info, ok := cache.get(key); ok {
		i.info = &info
		return info, nil
	}

	rc, err := i.open()
	if err != nil {
		return imageInfo{}, err
	}
	defer rc.Close()

	cfg, name, err := image.DecodeConfig(rc)
	if err != nil {
		return imageInfo{}, NewResourceError(i.source, fmt.Errorf("unable to fetch image metadata: %w", err))
	}
	info := imageInfo{width: cfg.Width, height: cfg.Height, mime: "image/" + name}
	cache.set(key, info)
	i.info = &info
	return info, nil
}

func (i *Image) open() (io.ReadCloser, error) {
	switch {
	case !i.IsFile():
		data, err := decodeDataURI(i.source)
		if err != nil {
			return nil, NewResourceError(i.source, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case i.IsRemote():
		return i.fetch()
	default:
		path := i.source
		if strings.HasPrefix(path, "file://") {
			u, err := url.Parse(path)
			if err != nil {
				return nil, NewResourceError(i.source, err)
			}
			path = u.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, NewResourceError(i.source, err)
		}
		return f, nil
	}
}

func (i *Image) fetch() (io.ReadCloser, error) {
	u, err := url.Parse(i.source)
	if err != nil {
		return nil, NewResourceError(i.source, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewResourceError(i.source, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	resp, err := http.Get(i.source)
	if err != nil {
		return nil, NewResourceError(i.source, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, NewResourceError(i.source, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp.Body, nil
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data>. Data without
// the base64 marker is percent-decoded.
func decodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New("invalid data URI format")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("invalid data URI format")
	}
	if payload == "" {
		return nil, errors.New("no image data")
	}

	params := strings.Split(meta, ";")
	encoding := ""
	if len(params) > 1 {
		encoding = params[len(params)-1]
	}
	switch encoding {
	case "base64":
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
		return data, nil
	case "":
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI payload: %w", err)
		}
		return []byte(s), nil
	default:
		if strings.Contains(encoding, "=") {
			// a media type parameter such as charset=utf-8
			s, err := url.PathUnescape(payload)
			if err != nil {
				return nil, fmt.Errorf("invalid data URI payload: %w", err)
			}
			return []byte(s), nil
		}
		return nil, fmt.Errorf("unknown encoding method %q", encoding)
	}
}

// numericProp accepts numbers and numeric strings with an optional "px"
// suffix.
func numericProp(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimSpace(n), "px"), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
