// Package audio records answers for audio-task elements. A Session opens a
// capture device on Start, buffers what it yields and on Stop encodes the
// recording as a WAV data URI. The device is closed on every Stop path.
package audio

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

var (
	ErrDeviceUnavailable = errors.New("audio capture device unavailable")
	ErrNotRecording      = errors.New("not recording")
	ErrAlreadyRecording  = errors.New("already recording")
)

// Format describes the PCM samples a stream produces.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Device is the capture collaborator, typically a microphone.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream yields little-endian PCM chunks until Close. Next returns io.EOF
// once the stream is exhausted or closed.
type Stream interface {
	Format() Format
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

type Config struct {
	Logger *logrus.Logger
}

type Session struct {
	device Device
	log    *logrus.Logger

	mu      sync.Mutex
	stream  Stream
	chunks  [][]byte
	readErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSession(device Device, config Config) *Session {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Session{device: device, log: config.Logger}
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Start opens the device and begins buffering chunks in the background.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return ErrAlreadyRecording
	}
	if s.device == nil {
		return ErrDeviceUnavailable
	}
	stream, err := s.device.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return errors.Wrapf(ErrDeviceUnavailable, "open: %v", err)
	}

	capCtx, cancel := context.WithCancel(context.Background())
	s.stream = stream
	s.chunks = nil
	s.readErr = nil
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.capture(capCtx, stream, s.done)
	return nil
}

func (s *Session) capture(ctx context.Context, stream Stream, done chan struct{}) {
	defer close(done)
	for {
		chunk, err := stream.Next(ctx)
		if len(chunk) > 0 {
			s.mu.Lock()
			s.chunks = append(s.chunks, append([]byte(nil), chunk...))
			s.mu.Unlock()
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) && ctx.Err() == nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
		}
		return
	}
}

// Stop ends the recording and returns it as a data URI. The device is
// released whether or not encoding succeeds; on error nothing is kept.
func (s *Session) Stop(ctx context.Context) (string, error) {
	s.mu.Lock()
	stream, cancel, done := s.stream, s.cancel, s.done
	s.stream, s.cancel, s.done = nil, nil, nil
	s.mu.Unlock()
	if stream == nil {
		return "", ErrNotRecording
	}

	cancel()
	if err := stream.Close(); err != nil {
		s.log.WithError(err).Warn("Error closing capture device")
	}
	select {
	case <-done:
	case <-ctx.Done():
		s.discard()
		return "", ctx.Err()
	}

	s.mu.Lock()
	chunks, readErr := s.chunks, s.readErr
	s.mu.Unlock()
	s.discard()
	if readErr != nil {
		return "", errors.Wrap(readErr, "capture")
	}

	uri, err := EncodeWAV(stream.Format(), chunks)
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"bytes":  len(uri),
	}).Debug("Recording encoded")
	return uri, nil
}

func (s *Session) discard() {
	s.mu.Lock()
	s.chunks = nil
	s.readErr = nil
	s.mu.Unlock()
}

// Attach stores a recording on an audio-task element. Other kinds and stale
// ids are ignored.
func Attach(doc *material.Document, elementID, uri string) error {
	el, ok := doc.Element(elementID)
	if !ok || el.Kind != material.KindAudioTask {
		return nil
	}
	return doc.UpdateElement(elementID, map[string]any{"recordedAudio": uri})
}
