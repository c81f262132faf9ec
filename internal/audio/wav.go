package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/pkg/errors"
)

const wavDataURIPrefix = "data:audio/wav;base64,"

// EncodeWAV wraps PCM chunks in a RIFF/WAVE container and returns it as a
// base64 data URI.
func EncodeWAV(f Format, chunks [][]byte) (string, error) {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
		return "", errors.Errorf("unsupported format %+v", f)
	}
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	blockAlign := f.Channels * f.BitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + size)
	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + size),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(f.Channels),
		uint32(f.SampleRate),
		uint32(f.SampleRate * blockAlign),
		uint16(blockAlign),
		uint16(f.BitsPerSample),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(size),
	}
	for _, v := range header {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return "", errors.Wrap(err, "write wav header")
		}
	}
	for _, c := range chunks {
		buf.Write(c)
	}
	return wavDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
