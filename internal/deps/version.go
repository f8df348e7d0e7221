package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// ProbeVersion runs "<command> -version" and returns the first output line,
// which for ffmpeg and ffprobe names the build ("ffmpeg version 7.1 ...").
func ProbeVersion(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("probe version: command not configured")
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, command, "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("probe %s version: %w", command, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("probe %s version: empty output", command)
}
