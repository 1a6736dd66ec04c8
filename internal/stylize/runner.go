package stylize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultInterpreter runs the stylizer script.
const DefaultInterpreter = "python"

// maxLineSize bounds a single line of stylizer output.
const maxLineSize = 1024 * 1024

// Job describes one style transfer.
type Job struct {
	// Content is the photograph to restyle.
	Content string

	// Style is the painting whose style is applied.
	Style string

	// Output is the file the script writes.
	Output string

	// Width is the width of the output image in pixels.
	Width int
}

// Runner invokes the stylizer script once per job.
type Runner struct {
	interpreter string
	script      string
	output      io.Writer
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterpreter sets the program that executes the script.
func WithInterpreter(interpreter string) Option {
	return func(r *Runner) {
		if interpreter != "" {
			r.interpreter = interpreter
		}
	}
}

// WithOutput sets where the script's stdout and stderr lines are copied.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner for script.
func New(script string, opts ...Option) *Runner {
	r := &Runner{
		interpreter: DefaultInterpreter,
		script:      script,
		output:      io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Args returns the command line for job, interpreter first.
func (r *Runner) Args(job Job) []string {
	return []string{
		r.interpreter, r.script,
		"--content", job.Content,
		"--styles", job.Style,
		"--output", job.Output,
		"--width", strconv.Itoa(job.Width),
	}
}

// Run executes job and blocks until the script exits. The working directory
// is the directory of the script. A script that exits with a non-zero status
// is reported through exitCode with a nil error; err is set only when the
// script could not be run at all.
func (r *Runner) Run(ctx context.Context, job Job) (exitCode int, err error) {
	if r.script == "" {
		return -1, ErrNoScript
	}

	args := r.Args(job)
	r.logger.Info("running stylizer", "command", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // command is configured by the user
	cmd.Dir = filepath.Dir(r.script)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start stylizer: %w", err)
	}

	w := &lineWriter{w: r.output}
	var g errgroup.Group
	g.Go(func() error { return w.copyLines(stdout) })
	g.Go(func() error { return w.copyLines(stderr) })
	drainErr := g.Wait()

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		r.logger.Warn("stylizer exited with error", "exit_code", code, "output", job.Output)
		return code, nil
	}
	if waitErr != nil {
		return -1, fmt.Errorf("stylizer failed: %w", waitErr)
	}
	if drainErr != nil {
		r.logger.Warn("failed to copy stylizer output", "error", drainErr)
	}
	return 0, nil
}

// lineWriter serializes whole lines from several streams onto one writer.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lineWriter) copyLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		l.mu.Lock()
		_, err := fmt.Fprintln(l.w, scanner.Text())
		l.mu.Unlock()
		if err != nil {
			// Keep reading so the child never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
	return scanner.Err()
}
