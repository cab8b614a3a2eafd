// Package archive unpacks password protected database archives with an
// external 7-Zip compatible tool.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rsclarke/citybus/internal/logging"
)

// Job describes one archive to unpack.
type Job struct {
	Archive   string
	OutputDir string
	Password  string
}

// ErrNoTask is reported when an extractor does not hand back a task.
var ErrNoTask = errors.New("extractor returned no task")

// Extractor starts extraction of a job and returns immediately. The returned
// task must not be nil.
type Extractor interface {
	Extract(ctx context.Context, job Job) *Task
}

// ExtractError reports a failed run of the extraction tool.
type ExtractError struct {
	Archive string
	Err     error
	Stderr  string
}

func (e *ExtractError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
	}
	return fmt.Sprintf("extract %s: %v: %s", e.Archive, e.Err, e.Stderr)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Task is a handle to a running extraction.
type Task struct {
	ID  string
	Job Job

	done chan struct{}
	once sync.Once
	err  error
}

// NewTask returns a pending task for job.
func NewTask(job Job) *Task {
	return &Task{
		ID:   uuid.NewString(),
		Job:  job,
		done: make(chan struct{}),
	}
}

// Finish records the outcome and releases waiters. Only the first call has
// an effect.
func (t *Task) Finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Done is closed once the extraction has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the extraction finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err returns the extraction error, or nil while the task is still running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// SevenZip runs `7z x <archive> -o<dir> -p<password> -y`.
type SevenZip struct {
	Path   string
	Logger *zap.Logger
}

// NewSevenZip returns an extractor invoking the tool at path.
func NewSevenZip(path string, logger *zap.Logger) *SevenZip {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SevenZip{Path: path, Logger: logger}
}

// Args returns the command line arguments for job.
func Args(job Job) []string {
	return []string{"x", job.Archive, "-o" + job.OutputDir, "-p" + job.Password, "-y"}
}

// Extract starts the tool in the background. The outcome is logged and
// delivered through the returned task.
func (s *SevenZip) Extract(ctx context.Context, job Job) *Task {
	task := NewTask(job)
	logger := s.Logger.With(logging.TaskID(task.ID), logging.Path(job.Archive))

	// Progress output goes to the null device; only stderr is kept.
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, Args(job)...)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		err = &ExtractError{Archive: job.Archive, Err: err}
		logger.Error("extraction failed to start", zap.Error(err))
		task.Finish(err)
		return task
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			err = &ExtractError{
				Archive: job.Archive,
				Err:     err,
				Stderr:  strings.TrimSpace(stderr.String()),
			}
			logger.Error("extraction failed", zap.Error(err))
			task.Finish(err)
			return
		}
		logger.Info("unpacked archive", zap.String("output_dir", job.OutputDir))
		task.Finish(nil)
	}()

	return task
}
