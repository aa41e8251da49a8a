// Package coverage records Chromium JavaScript coverage of a page through the
// DevTools protocol and writes the raw V8 result per test.
package coverage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
	"github.com/playwright-community/playwright-go"
)

// DefaultDir is where reports are written.
const DefaultDir = "coverage"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// Slug makes s usable as a file name part.
func Slug(s string) string {
	return slugUnsafe.ReplaceAllString(strings.ToLower(s), "_")
}

// FileName returns the report file name of a test.
func FileName(project, title string) string {
	return Slug(project) + "__" + Slug(title) + ".json"
}

// Recorder collects precise coverage of one page.
type Recorder struct {
	session playwright.CDPSession
	dir     string
}

// Start enables the profiler for page. Only Chromium supports this.
func Start(bctx playwright.BrowserContext, page playwright.Page, dir string) (*Recorder, error) {
	if dir == "" {
		dir = DefaultDir
	}
	session, err := bctx.NewCDPSession(page)
	if err != nil {
		return nil, fmt.Errorf("opening cdp session: %w", err)
	}
	if _, err := session.Send("Profiler.enable", nil); err != nil {
		return nil, fmt.Errorf("enabling profiler: %w", err)
	}
	if _, err := session.Send("Profiler.startPreciseCoverage", map[string]any{
		"callCount": true,
		"detailed":  true,
	}); err != nil {
		return nil, fmt.Errorf("starting coverage: %w", err)
	}
	return &Recorder{session: session, dir: dir}, nil
}

// Stop takes the coverage collected so far and writes it for the test. The
// path of the report is returned.
func (r *Recorder) Stop(project, title string) (string, error) {
	defer func() {
		_ = r.session.Detach()
	}()

	result, err := r.session.Send("Profiler.takePreciseCoverage", nil)
	if err != nil {
		return "", fmt.Errorf("taking coverage: %w", err)
	}
	if _, err := r.session.Send("Profiler.stopPreciseCoverage", nil); err != nil {
		return "", fmt.Errorf("stopping coverage: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding coverage: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, FileName(project, title))
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("writing coverage: %w", err)
	}
	return path, nil
}
