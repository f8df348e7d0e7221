package export

import (
	"context"
	"time"

	"audex/internal/media/audio"
	"audex/internal/media/ffprobe"
)

// ProbeTrackLoader discovers tracks with ffprobe and picks the primary one.
type ProbeTrackLoader struct {
	Prober   ffprobe.Prober
	Language string
}

// LoadTracks implements TrackLoader.
func (l ProbeTrackLoader) LoadTracks(ctx context.Context, source string) (TrackInfo, error) {
	result, err := l.Prober.Inspect(ctx, source)
	if err != nil {
		return TrackInfo{}, err
	}
	info := TrackInfo{
		Duration: time.Duration(result.DurationSeconds() * float64(time.Second)),
	}
	for _, stream := range result.AudioStreams() {
		info.Tracks = append(info.Tracks, trackFromStream(stream))
	}
	if selection := audio.Select(result.Streams, l.Language); selection.Found() {
		info.Primary = trackFromStream(selection.Primary)
	}
	return info, nil
}

func trackFromStream(stream ffprobe.Stream) AudioTrack {
	return AudioTrack{
		Index:      stream.Index,
		Codec:      stream.CodecName,
		SampleRate: stream.SampleRateHz(),
		Channels:   stream.Channels,
		Summary:    stream.String(),
	}
}
