package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register gif decoder
	"image/jpeg"
	_ "image/png" // register png decoder

	"github.com/go-pkgz/lgr"
	_ "golang.org/x/image/bmp" // register bmp decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder
)

// maxImagePixels caps decoded image area, a small file can declare huge dimensions
const maxImagePixels = 40_000_000

// Downloader fetches raw image bytes
type Downloader interface {
	Download(ctx context.Context, imageURL string) (*Payload, error)
}

// Store persists an object and returns its public URL
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ThumbnailerConfig holds thumbnail geometry and encoding settings
type ThumbnailerConfig struct {
	MaxWidth int // bounding box side, height is proportional
	Quality  int // jpeg quality, 1-100
	Prefix   string
}

// Thumbnailer downloads an image, scales it down and stores it as jpeg
type Thumbnailer struct {
	downloader Downloader
	store      Store
	maxWidth   int
	quality    int
	prefix     string
}

// NewThumbnailer makes a thumbnailer, defaults are 300px box, quality 70 and "thumbnails" prefix
func NewThumbnailer(downloader Downloader, store Store, cfg ThumbnailerConfig) *Thumbnailer {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = 300
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = 70
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "thumbnails"
	}
	return &Thumbnailer{downloader: downloader, store: store, maxWidth: cfg.MaxWidth, quality: cfg.Quality, prefix: cfg.Prefix}
}

// Derive makes a thumbnail for imageURL and returns its public URL
func (t *Thumbnailer) Derive(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("empty image URL")
	}

	payload, err := t.downloader.Download(ctx, imageURL)
	if err != nil {
		return "", err
	}

	hdr, _, err := image.DecodeConfig(bytes.NewReader(payload.Body))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", imageURL, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 || int64(hdr.Width)*int64(hdr.Height) > maxImagePixels {
		return "", fmt.Errorf("decode image %s: %dx%d: %w", imageURL, hdr.Width, hdr.Height, ErrUnsupportedImage)
	}

	src, format, err := image.Decode(bytes.NewReader(payload.Body))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", imageURL, err)
	}

	data, err := t.encode(src)
	if err != nil {
		return "", fmt.Errorf("encode thumbnail for %s: %w", imageURL, err)
	}

	name := fmt.Sprintf("%s/%s.jpg", t.prefix, newObjectID())
	publicURL, err := t.store.Put(ctx, name, data, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store thumbnail for %s: %w", imageURL, err)
	}
	lgr.Printf("[DEBUG] thumbnail %s (%s, %d bytes) for %s", name, format, len(data), imageURL)
	return publicURL, nil
}

// encode fits src into the bounding box, never upscaling, flattens transparency
// onto white and encodes as jpeg
func (t *Thumbnailer) encode(src image.Image) ([]byte, error) {
	w, h := fitBox(src.Bounds().Dx(), src.Bounds().Dy(), t.maxWidth)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitBox scales w x h to fit into a box x box square keeping the aspect ratio
func fitBox(w, h, box int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= box && h <= box {
		return w, h
	}
	if w >= h {
		nh := h * box / w
		if nh < 1 {
			nh = 1
		}
		return box, nh
	}
	nw := w * box / h
	if nw < 1 {
		nw = 1
	}
	return nw, box
}
