package audio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

var mono16k = Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

// fakeStream hands out chunks and then blocks until closed, like a live
// microphone.
type fakeStream struct {
	chunks [][]byte
	err    error

	mu     sync.Mutex
	closed chan struct{}
	closes int
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	return &fakeStream{chunks: chunks, closed: make(chan struct{})}
}

func (s *fakeStream) Format() Format { return mono16k }

func (s *fakeStream) Next(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if len(s.chunks) > 0 {
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		s.mu.Unlock()
		return c, nil
	}
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	select {
	case <-s.closed:
	case <-ctx.Done():
	}
	return nil, io.EOF
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes == 0 {
		close(s.closed)
	}
	s.closes++
	return nil
}

func (s *fakeStream) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type fakeDevice struct {
	stream *fakeStream
	err    error
}

func (d fakeDevice) Open(context.Context) (Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

func newSession(d Device) *Session {
	logger, _ := test.NewNullLogger()
	return NewSession(d, Config{Logger: logger})
}

func decodeURI(t *testing.T, uri string) []byte {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, wavDataURIPrefix))
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, wavDataURIPrefix))
	require.NoError(t, err)
	return b
}

func TestRecordAndStop(t *testing.T) {
	stream := newFakeStream([]byte{1, 2}, []byte{3, 4, 5, 6})
	s := newSession(fakeDevice{stream: stream})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Recording())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRecording)

	// let the capture loop drain the queued chunks
	require.Eventually(t, func() bool {
		stream.mu.Lock()
		defer stream.mu.Unlock()
		return len(stream.chunks) == 0
	}, time.Second, time.Millisecond)

	uri, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Recording())
	assert.Equal(t, 1, stream.Closes())

	wav := decodeURI(t, uri)
	require.Len(t, wav, 44+6)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, wav[44:])
}

func TestStopWithoutStart(t *testing.T) {
	s := newSession(fakeDevice{stream: newFakeStream()})
	_, err := s.Stop(context.Background())
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestDeviceUnavailable(t *testing.T) {
	s := newSession(fakeDevice{err: errors.New("permission denied")})
	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.False(t, s.Recording())

	s = newSession(nil)
	assert.ErrorIs(t, s.Start(context.Background()), ErrDeviceUnavailable)

	s = newSession(PCMSource{})
	assert.ErrorIs(t, s.Start(context.Background()), ErrDeviceUnavailable)
}

func TestCaptureErrorReleasesDevice(t *testing.T) {
	stream := newFakeStream([]byte{1, 2})
	stream.err = errors.New("device unplugged")
	s := newSession(fakeDevice{stream: stream})

	require.NoError(t, s.Start(context.Background()))
	uri, err := s.Stop(context.Background())
	// the error may or may not have been read before Stop; either way the
	// device is closed exactly once
	if err != nil {
		assert.Empty(t, uri)
	}
	assert.Equal(t, 1, stream.Closes())
	assert.False(t, s.Recording())

	// the session is reusable after a failure
	next := newFakeStream([]byte{9, 9})
	s.device = fakeDevice{stream: next}
	require.NoError(t, s.Start(context.Background()))
	_, err = s.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next.Closes())
}

func TestPCMSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mic.raw")
	require.NoError(t, os.WriteFile(path, []byte{1, 0, 2, 0, 3, 0}, 0o600))

	s := newSession(PCMSource{Path: path, Format: mono16k, ChunkSize: 4})
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.chunks) == 2
	}, time.Second, time.Millisecond)
	uri, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, decodeURI(t, uri)[44:])
}

func TestEncodeWAVRejectsBadFormat(t *testing.T) {
	_, err := EncodeWAV(Format{SampleRate: 8000, Channels: 1, BitsPerSample: 12}, nil)
	assert.Error(t, err)
}

func TestAttach(t *testing.T) {
	doc := material.New(material.Metadata{Title: "x"})
	task, _ := doc.AddElement(material.KindAudioTask)
	text, _ := doc.AddElement(material.KindText)

	require.NoError(t, Attach(doc, task.ID, "data:audio/wav;base64,AAAA"))
	require.NoError(t, Attach(doc, text.ID, "data:audio/wav;base64,AAAA"))
	require.NoError(t, Attach(doc, "missing", "data:audio/wav;base64,AAAA"))

	el, _ := doc.Element(task.ID)
	assert.Equal(t, "data:audio/wav;base64,AAAA", el.Content.(*material.AudioTaskContent).RecordedAudio)
	el, _ = doc.Element(text.ID)
	assert.Equal(t, "Enter text here", el.Content.(*material.TextContent).Text)
}
