package simulation

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
)

// Recording layout, little-endian:
//
//	header: magic "FLK3", version uint32, agents uint32, floats per agent uint32
//	frame:  tick uint64, agents*floatsPerAgent float32
const (
	recordingMagic   = "FLK3"
	recordingVersion = 1
)

var ErrBadRecording = errors.New("bad recording")

// RecordingHeader describes the frames that follow it.
type RecordingHeader struct {
	Version        uint32
	Agents         uint32
	FloatsPerAgent uint32
}

// Recorder appends transform buffers to a binary stream.
type Recorder struct {
	w      *bufio.Writer
	agents int
	frames int
}

// NewRecorder writes the header for a population of agents.
func NewRecorder(w io.Writer, agents int) (*Recorder, error) {
	if agents < 0 || agents > MaxAgents {
		return nil, fmt.Errorf("%w: cannot record %d agents", ErrInvalidConfig, agents)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(recordingMagic); err != nil {
		return nil, err
	}
	h := RecordingHeader{Version: recordingVersion, Agents: uint32(agents), FloatsPerAgent: flock.TransformSize}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return &Recorder{w: bw, agents: agents}, nil
}

// WriteFrame appends one tick worth of transforms.
func (r *Recorder) WriteFrame(tick uint64, transforms []float32) error {
	if want := r.agents * flock.TransformSize; len(transforms) != want {
		return fmt.Errorf("frame of %d floats, want %d", len(transforms), want)
	}
	if err := binary.Write(r.w, binary.LittleEndian, tick); err != nil {
		return err
	}
	if err := binary.Write(r.w, binary.LittleEndian, transforms); err != nil {
		return err
	}
	r.frames++
	return nil
}

// Frames counts the frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Flush pushes buffered frames to the underlying writer.
func (r *Recorder) Flush() error {
	return r.w.Flush()
}

// RecordingReader reads back what a Recorder wrote.
type RecordingReader struct {
	r      *bufio.Reader
	header RecordingHeader
}

func NewRecordingReader(r io.Reader) (*RecordingReader, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(recordingMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecording, err)
	}
	if string(magic) != recordingMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadRecording, magic)
	}
	var h RecordingHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecording, err)
	}
	if h.Version != recordingVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadRecording, h.Version)
	}
	if h.FloatsPerAgent != flock.TransformSize {
		return nil, fmt.Errorf("%w: %d floats per agent, want %d", ErrBadRecording, h.FloatsPerAgent, flock.TransformSize)
	}
	if h.Agents > MaxAgents {
		return nil, fmt.Errorf("%w: %d agents, at most %d", ErrBadRecording, h.Agents, MaxAgents)
	}
	return &RecordingReader{r: br, header: h}, nil
}

func (rr *RecordingReader) Header() RecordingHeader {
	return rr.header
}

// Next returns the next frame, or io.EOF after the last one.
func (rr *RecordingReader) Next() (uint64, []float32, error) {
	var tick uint64
	if err := binary.Read(rr.r, binary.LittleEndian, &tick); err != nil {
		return 0, nil, err
	}
	buf := make([]float32, rr.frameSize())
	if err := binary.Read(rr.r, binary.LittleEndian, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, fmt.Errorf("%w: truncated frame: %v", ErrBadRecording, err)
	}
	return tick, buf, nil
}

// frameSize is the float count of one frame. The header bounds keep it small.
func (rr *RecordingReader) frameSize() int {
	return int(uint64(rr.header.Agents) * uint64(rr.header.FloatsPerAgent))
}
