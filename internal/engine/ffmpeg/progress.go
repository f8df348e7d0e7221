package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// progressState accumulates one "-progress" key=value batch.
type progressState struct {
	outTime time.Duration
	ended   bool
}

// parseProgress reads ffmpeg -progress output and calls update with the
// encoded position at every batch boundary ("progress=continue|end").
func parseProgress(r io.Reader, update func(position time.Duration, ended bool)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var state progressState
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			// ffmpeg reports microseconds under both keys
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				state.outTime = time.Duration(us) * time.Microsecond
			}
		case "out_time":
			if d, ok := parseClock(value); ok {
				state.outTime = d
			}
		case "progress":
			state.ended = value == "end"
			update(state.outTime, state.ended)
		}
	}
	return scanner.Err()
}

// parseClock parses "HH:MM:SS.micro". Negative clocks, which ffmpeg prints
// while encoder priming delays the first packet, are rejected.
func parseClock(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "-") {
		return 0, false
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	return total + time.Duration(seconds*float64(time.Second)), true
}

// fraction converts a position to [0,1]; unknown durations report 0 until the
// stream ends.
func fraction(position, duration time.Duration, ended bool) float64 {
	if ended {
		return 1
	}
	if duration <= 0 || position <= 0 {
		return 0
	}
	f := float64(position) / float64(duration)
	if f > 0.999 {
		f = 0.999
	}
	return f
}
