package audio

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
)

// PCMSource captures from a file of raw little-endian PCM, usually a FIFO
// fed by a recorder such as `arecord -t raw`. An empty path means no device
// is configured.
type PCMSource struct {
	Path      string
	Format    Format
	ChunkSize int
}

func (d PCMSource) Open(ctx context.Context) (Stream, error) {
	if d.Path == "" {
		return nil, ErrDeviceUnavailable
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, errors.Wrapf(ErrDeviceUnavailable, "%s: %v", d.Path, err)
	}
	size := d.ChunkSize
	if size <= 0 {
		size = 4096
	}
	return &fileStream{f: f, format: d.Format, buf: make([]byte, size)}, nil
}

type fileStream struct {
	f      *os.File
	format Format
	buf    []byte
}

func (s *fileStream) Format() Format { return s.format }

func (s *fileStream) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, io.EOF
	}
	n, err := s.f.Read(s.buf)
	if errors.Is(err, os.ErrClosed) {
		err = io.EOF
	}
	return s.buf[:n], err
}

func (s *fileStream) Close() error {
	return s.f.Close()
}
