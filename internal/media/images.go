// Package media holds the binary helpers around the editor: reading and
// compressing image uploads and wrapping synthesized speech in a WAV file.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
)

// Defaults applied when CompressOptions leaves a field zero.
const (
	DefaultMaxDimension = 1600
	DefaultJPEGQuality  = 85
	MaxUploadBytes      = 20 << 20
)

// Upload is an image read from disk, held fully in memory.
type Upload struct {
	Name        string
	Content     []byte
	ContentType string
}

// CompressOptions bounds the size of an uploaded image.
type CompressOptions struct {
	MaxDimension int
	JPEGQuality  int
}

// ReadImage loads an image file and sniffs its content type. Files that are
// not images, cannot be decoded or exceed MaxUploadBytes are rejected.
func ReadImage(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxUploadBytes {
		return Upload{}, fmt.Errorf("image %s is %d bytes, limit is %d", filepath.Base(path), info.Size(), MaxUploadBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("read image: %w", err)
	}
	contentType := DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, fmt.Errorf("%s is %s, not an image", filepath.Base(path), contentType)
	}
	up := Upload{Name: filepath.Base(path), Content: data, ContentType: contentType}
	if err := CheckDecodable(up); err != nil {
		return Upload{}, err
	}
	return up, nil
}

// CheckDecodable returns a VALIDATION error when no registered decoder can
// read the upload (SVG, HEIC, truncated files).
func CheckDecodable(up Upload) error {
	if _, _, err := image.Decode(bytes.NewReader(up.Content)); err != nil {
		return errors.Validationf("%s (%s) is not a supported image: %v", up.Name, up.ContentType, err)
	}
	return nil
}

// DetectContentType returns the MIME type of data without parameters.
func DetectContentType(data []byte) string {
	mt := mimetype.Detect(data)
	ct := mt.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Compress downscales an image so neither side exceeds MaxDimension and
// re-encodes it. PNG stays PNG (transparency); everything else becomes JPEG.
// Images already within bounds in a browser-friendly format are returned
// unchanged.
func Compress(data []byte, contentType string, opts CompressOptions) ([]byte, string, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	fits := w <= opts.MaxDimension && h <= opts.MaxDimension
	if fits && (format == "jpeg" || format == "png") {
		return data, contentType, nil
	}

	if !fits {
		img = resize(img, opts.MaxDimension)
	}

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// resize scales img so its longer side equals maxDim, keeping aspect ratio.
func resize(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	var dstW, dstH int
	if srcW >= srcH {
		dstW = maxDim
		dstH = max(srcH*maxDim/srcW, 1)
	} else {
		dstH = maxDim
		dstW = max(srcW*maxDim/srcH, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Dimensions returns the pixel size of an encoded image without decoding the
// whole payload.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
