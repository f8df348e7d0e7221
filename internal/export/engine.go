package export

import (
	"context"
	"time"
)

// Status is the terminal state an engine operation reports.
type Status int

const (
	StatusUnknown Status = iota
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of Handle.Wait. Err optionally carries the
// underlying cause of a failure so filesystem errnos can be classified.
type Outcome struct {
	Status Status
	Reason string
	Err    error
}

// Request describes one engine operation. AudioOnly drops video and every
// stream other than AudioStream.
type Request struct {
	Source      string
	Preset      string
	OutputType  string
	OutputPath  string
	AudioOnly   bool
	AudioStream int
	SourceCodec string
	Duration    time.Duration
}

// Handle is a running engine operation.
type Handle interface {
	// Progress returns the current fraction in [0,1].
	Progress() float64
	// Cancel asks the operation to stop. It does not wait.
	Cancel()
	// Wait blocks until the operation reaches a terminal status.
	Wait() Outcome
}

// Engine starts transcode operations.
type Engine interface {
	Begin(ctx context.Context, req Request) (Handle, error)
}

// AudioTrack is one audio stream of a source.
type AudioTrack struct {
	Index      int
	Codec      string
	SampleRate int
	Channels   int
	Summary    string
}

// TrackInfo lists a source's audio tracks and the one chosen for export.
type TrackInfo struct {
	Tracks   []AudioTrack
	Primary  AudioTrack
	Duration time.Duration
}

// TrackLoader discovers the audio tracks of a source.
type TrackLoader interface {
	LoadTracks(ctx context.Context, source string) (TrackInfo, error)
}
