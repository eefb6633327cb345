package mediaprobe

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cliplab/annotation-backend/internal/platform/envutil"
	"github.com/cliplab/annotation-backend/internal/platform/logger"
)

// Prober resolves the duration, in whole seconds, of a video at a remote
// URL. Implementations must honor ctx and return promptly on failure; the
// ingest path treats any error as "duration unavailable" and never retries.
type Prober interface {
	Duration(ctx context.Context, rawURL string) (int, error)
}

// IsRemote reports whether the url points at an http(s) source. Durations
// can only be auto-derived for remote sources.
func IsRemote(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

type prober struct {
	log     *logger.Logger
	binPath string
	timeout time.Duration
}

// New builds the yt-dlp backed prober. The binary must be present in the
// runtime image; the call is synchronous with a bounded timeout.
func New(log *logger.Logger) Prober {
	return &prober{
		log:     log.With("service", "MediaProbe"),
		binPath: envutil.String("MEDIAPROBE_BIN", "yt-dlp"),
		timeout: time.Duration(envutil.Int("MEDIAPROBE_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func (p *prober) Duration(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binPath,
		"--no-warnings",
		"--skip-download",
		"--print", "duration",
		rawURL,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		p.log.Warn("duration probe failed",
			"url", rawURL,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"stderr", tail(stderr.String(), 400),
			"error", err,
		)
		return 0, fmt.Errorf("probe %s: %w", p.binPath, err)
	}

	seconds, err := parseDuration(stdout.String())
	if err != nil {
		return 0, err
	}
	p.log.Debug("duration probe succeeded", "url", rawURL, "seconds", seconds)
	return seconds, nil
}

// parseDuration reads the first non-empty output line. yt-dlp prints either
// an integer or a float number of seconds; "NA" means the extractor has no
// duration for this source.
func parseDuration(out string) (int, error) {
	line := ""
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			line = l
			break
		}
	}
	if line == "" || strings.EqualFold(line, "na") || strings.EqualFold(line, "none") {
		return 0, fmt.Errorf("probe returned no duration")
	}
	f, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %w", line, err)
	}
	seconds := int(math.Round(f))
	if seconds <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", line)
	}
	return seconds, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
