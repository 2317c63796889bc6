package rasterize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversionError reports a failed PDF to image conversion.
type ConversionError struct {
	Document string
	Output   string
	Err      error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %s to page images", e.Document)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Executor runs the conversion binary. Tests substitute a fake.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}

// Option configures a Converter.
type Option func(*Converter)

// WithExecutor replaces the subprocess executor.
func WithExecutor(executor Executor) Option {
	return func(c *Converter) {
		c.exec = executor
	}
}

var pageNumberPattern = regexp.MustCompile(`-(\d+)\.png$`)

// Converter renders PDF pages to PNG images via ImageMagick.
type Converter struct {
	binary  string
	density int
	timeout time.Duration
	workDir string
	exec    Executor
}

// New creates a Converter. workDir is where page images are written.
func New(binary string, density int, timeoutSeconds int, workDir string, opts ...Option) (*Converter, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rasterize: binary is required")
	}
	if density < 1 {
		return nil, fmt.Errorf("rasterize: invalid density %d", density)
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("rasterize: work directory is required")
	}
	c := &Converter{
		binary:  binary,
		density: density,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		workDir: workDir,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rasterize converts every page of pdfPath into a PNG under the work
// directory and returns the image paths in page order. The caller owns the
// returned files and must remove them when done. On error no files are left
// behind.
func (c *Converter) Rasterize(ctx context.Context, pdfPath string) ([]string, error) {
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return nil, &ConversionError{Document: pdfPath, Err: err}
	}

	run := strings.ReplaceAll(uuid.NewString(), "-", "")
	pattern := filepath.Join(c.workDir, run+"-%d.png")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-density", strconv.Itoa(c.density),
		pdfPath,
		"-quality", "100",
		pattern,
	}
	output, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		c.removeRunFiles(run)
		return nil, &ConversionError{Document: pdfPath, Output: string(output), Err: err}
	}

	images, err := c.collectRunFiles(run)
	if err != nil {
		c.removeRunFiles(run)
		return nil, &ConversionError{Document: pdfPath, Err: err}
	}
	if len(images) == 0 {
		return nil, &ConversionError{Document: pdfPath, Output: string(output), Err: errors.New("no page images produced")}
	}
	return images, nil
}

// collectRunFiles globs this run's page images and sorts them numerically by
// page index.
func (c *Converter) collectRunFiles(run string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.workDir, run+"-*.png"))
	if err != nil {
		return nil, err
	}

	type page struct {
		path  string
		index int
	}
	pages := make([]page, 0, len(matches))
	for _, match := range matches {
		m := pageNumberPattern.FindStringSubmatch(match)
		if m == nil {
			continue
		}
		index, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		pages = append(pages, page{path: match, index: index})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		paths = append(paths, p.path)
	}
	return paths, nil
}

func (c *Converter) removeRunFiles(run string) {
	matches, err := filepath.Glob(filepath.Join(c.workDir, run+"-*.png"))
	if err != nil {
		return
	}
	for _, match := range matches {
		_ = os.Remove(match)
	}
}
