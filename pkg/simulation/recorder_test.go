package simulation

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
)

func TestRecorder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, 2)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	frame := make([]float32, 2*flock.TransformSize)
	for i := range frame {
		frame[i] = float32(i) * 0.5
	}
	if err := rec.WriteFrame(7, frame); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rr, err := NewRecordingReader(&buf)
	if err != nil {
		t.Fatalf("NewRecordingReader() error = %v", err)
	}
	if h := rr.Header(); h.Agents != 2 || h.FloatsPerAgent != flock.TransformSize || h.Version != recordingVersion {
		t.Errorf("Header() = %+v", h)
	}
	tick, got, err := rr.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if tick != 7 {
		t.Errorf("tick = %d; want 7", tick)
	}
	for i := range frame {
		if got[i] != frame[i] {
			t.Fatalf("element %d = %v; want %v", i, got[i], frame[i])
		}
	}
	if _, _, err := rr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last frame error = %v; want io.EOF", err)
	}
}

func TestRecorder_WrongFrameSize(t *testing.T) {
	rec, err := NewRecorder(io.Discard, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.WriteFrame(1, make([]float32, flock.TransformSize)); err == nil {
		t.Error("WriteFrame() accepted a frame for one agent in a recording of three")
	}
}

// rawRecording writes a header as given, followed by one frame of floats.
func rawRecording(t *testing.T, h RecordingHeader, floats int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(recordingMagic)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(1)); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, make([]float32, floats)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRecordingReader_BadHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header RecordingHeader
		floats int
	}{
		{"short matrices", RecordingHeader{Version: recordingVersion, Agents: 1, FloatsPerAgent: 3}, 3},
		{"huge population", RecordingHeader{Version: recordingVersion, Agents: 0xFFFFFFFF, FloatsPerAgent: 0xFFFFFFFF}, 0},
		{"too many agents", RecordingHeader{Version: recordingVersion, Agents: MaxAgents + 1, FloatsPerAgent: flock.TransformSize}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordingReader(bytes.NewReader(rawRecording(t, tt.header, tt.floats)))
			if !errors.Is(err, ErrBadRecording) {
				t.Errorf("NewRecordingReader(%+v) error = %v; want ErrBadRecording", tt.header, err)
			}
		})
	}
}

func TestNewRecorder_TooManyAgents(t *testing.T) {
	if _, err := NewRecorder(io.Discard, MaxAgents+1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewRecorder() error = %v; want ErrInvalidConfig", err)
	}
}

func TestRecordingReader_Errors(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		_, err := NewRecordingReader(bytes.NewReader([]byte("NOPE\x01\x00\x00\x00")))
		if !errors.Is(err, ErrBadRecording) {
			t.Errorf("error = %v; want ErrBadRecording", err)
		}
	})

	t.Run("truncated frame", func(t *testing.T) {
		var buf bytes.Buffer
		rec, _ := NewRecorder(&buf, 1)
		_ = rec.WriteFrame(1, make([]float32, flock.TransformSize))
		_ = rec.Flush()
		data := buf.Bytes()[:buf.Len()-4]

		rr, err := NewRecordingReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("NewRecordingReader() error = %v", err)
		}
		if _, _, err := rr.Next(); !errors.Is(err, ErrBadRecording) {
			t.Errorf("Next() error = %v; want ErrBadRecording", err)
		}
	})
}
