package ffmpeg

import (
	"fmt"
	"strconv"

	"audex/internal/export"
	"audex/internal/media/audio"
	"audex/internal/media/ffprobe"
)

// BuildArgs translates an export request into ffmpeg arguments.
func BuildArgs(req export.Request) ([]string, error) {
	if req.Source == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("ffmpeg args: source and output are required")
	}
	codec, err := codecArgs(req)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-nostats",
		"-loglevel", "error",
		"-progress", "pipe:1",
		"-y",
		"-i", req.Source,
	}
	if req.AudioOnly {
		stream := "0:a:0"
		if req.AudioStream >= 0 {
			stream = "0:" + strconv.Itoa(req.AudioStream)
		}
		args = append(args, "-map", stream, "-vn", "-sn", "-dn")
	}
	args = append(args, "-map_metadata", "0")
	args = append(args, codec...)
	if req.OutputType != "" {
		args = append(args, "-f", req.OutputType)
	}
	return append(args, req.OutputPath), nil
}

func codecArgs(req export.Request) ([]string, error) {
	switch req.Preset {
	case export.PresetAAC256:
		return []string{"-c:a", "aac", "-b:a", "256k"}, nil
	case export.PresetMP3192:
		return []string{"-c:a", "libmp3lame", "-b:a", "192k"}, nil
	case export.PresetPassthrough:
		// sample rate and channel layout are left untouched
		if audio.IsPCM(ffprobe.Stream{CodecName: req.SourceCodec}) {
			return []string{"-c:a", "copy"}, nil
		}
		return []string{"-c:a", "pcm_s16le"}, nil
	default:
		return nil, fmt.Errorf("ffmpeg args: unknown preset %q", req.Preset)
	}
}
