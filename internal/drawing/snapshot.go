package drawing

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const pngDataURIPrefix = "data:image/png;base64,"

var ErrInvalidSnapshot = errors.New("invalid canvas snapshot")

// Snapshot encodes the whole surface as a PNG data URI. PNG stores
// unpremultiplied colour, so the live buffer is first quantized to exactly
// what a later Restore will produce.
func (s *Surface) Snapshot() (string, error) {
	b := s.img.Bounds()
	n := image.NewNRGBA(b)
	draw.Draw(n, b, s.img, b.Min, draw.Src)
	draw.Draw(s.img, b, n, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, n); err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Restore replaces the surface contents with a snapshot produced by
// Snapshot. On error the surface is left untouched.
func (s *Surface) Restore(uri string) error {
	b := s.img.Bounds()
	img, err := DecodeSnapshot(uri, b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	s.load(img)
	return nil
}

// DecodeSnapshot parses a base64 image data URI into a buffer of the given
// resolution. A snapshot of a different size is rescaled to fit. It touches
// no surface and can run off the event loop.
func DecodeSnapshot(uri string, width, height int) (*image.RGBA, error) {
	meta, data, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.Wrap(ErrInvalidSnapshot, "not a base64 image data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "base64: %v", err)
	}
	src, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "png: %v", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst, nil
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}
