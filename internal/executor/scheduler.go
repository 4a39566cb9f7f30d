package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrison/typescan/internal/models"
)

// Classifier defines the behavior required to classify individual files.
type Classifier interface {
	Classify(ctx context.Context, file models.FileEntry) (models.ClassificationResult, error)
}

// Logger receives scheduler progress events. Implementations must be safe
// for concurrent use; LogFileResult and LogProgress are called from workers.
type Logger interface {
	LogScanStart(total, workers int)
	LogFileResult(result models.ClassificationResult)
	LogProgress(completed, total int)
	LogScanComplete(summary models.ScanSummary)
}

// Scheduler runs one classification task per file on a WorkerPool and
// returns the results in the order the files were given.
type Scheduler struct {
	pool        *WorkerPool
	classifier  Classifier
	logger      Logger
	taskTimeout time.Duration
}

// NewScheduler constructs a Scheduler. The logger parameter is optional
// and can be nil to disable logging. The pool stays owned by the caller.
func NewScheduler(pool *WorkerPool, classifier Classifier, logger Logger) *Scheduler {
	return &Scheduler{
		pool:       pool,
		classifier: classifier,
		logger:     logger,
	}
}

// WithTaskTimeout bounds each file's classification. A task exceeding it
// fails with a *TimeoutError; the rest of the batch is unaffected.
// Zero disables the timeout.
func (s *Scheduler) WithTaskTimeout(timeout time.Duration) *Scheduler {
	s.taskTimeout = timeout
	return s
}

// Run classifies every file and blocks until each task has succeeded or
// failed. The returned slice has exactly len(files) entries and
// results[i] always belongs to files[i], whatever order tasks finished in.
// A failing file only marks its own slot as failed.
func (s *Scheduler) Run(ctx context.Context, files []models.FileEntry) []models.ClassificationResult {
	results := make([]models.ClassificationResult, len(files))
	if len(files) == 0 {
		return results
	}

	start := time.Now()
	if s.logger != nil {
		s.logger.LogScanStart(len(files), s.pool.Size())
	}

	var wg sync.WaitGroup
	var completed atomic.Int64
	total := len(files)

	for i, file := range files {
		wg.Add(1)
		err := s.pool.Submit(ctx, func() {
			defer wg.Done()
			results[i] = s.classify(ctx, file)
			s.report(results[i], int(completed.Add(1)), total)
		})
		if err != nil {
			// Not queued: the slot fails and no worker will touch it.
			wg.Done()
			results[i] = failedResult(file, contextError(file, err), 0)
			s.report(results[i], int(completed.Add(1)), total)
		}
	}

	wg.Wait()

	if s.logger != nil {
		s.logger.LogScanComplete(models.Summarize(results, time.Since(start)))
	}

	return results
}

func (s *Scheduler) report(result models.ClassificationResult, completed, total int) {
	if s.logger == nil {
		return
	}
	s.logger.LogFileResult(result)
	s.logger.LogProgress(completed, total)
}

// classify runs one task, applying the per-task timeout, and normalizes
// its outcome so every slot carries the file, a status and any error.
func (s *Scheduler) classify(ctx context.Context, file models.FileEntry) models.ClassificationResult {
	start := time.Now()

	var (
		result models.ClassificationResult
		err    error
	)
	if s.taskTimeout > 0 {
		result, err = s.classifyWithTimeout(ctx, file)
	} else {
		result, err = s.safeClassify(ctx, file)
	}

	if result.File.Path == "" {
		result.File = file
	}
	if err != nil && result.Err == nil {
		result.Err = err
	}
	if result.Err != nil {
		result.Status = models.StatusFailed
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result
}

// classifyWithTimeout gives up on a task after taskTimeout. The read it
// started may keep running in the background until the OS returns, but
// the worker is released.
func (s *Scheduler) classifyWithTimeout(ctx context.Context, file models.FileEntry) (models.ClassificationResult, error) {
	tctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	type outcome struct {
		result models.ClassificationResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := s.safeClassify(tctx, file)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && IsTimeoutError(o.err) {
			return o.result, NewTimeoutError(file, s.taskTimeout)
		}
		return o.result, o.err
	case <-tctx.Done():
		err := contextError(file, tctx.Err())
		if IsTimeoutError(err) {
			err = NewTimeoutError(file, s.taskTimeout)
		}
		return failedResult(file, err, s.taskTimeout), err
	}
}

// safeClassify turns a panicking classifier into a failed result.
func (s *Scheduler) safeClassify(ctx context.Context, file models.FileEntry) (result models.ClassificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewScanError(file, "classify", fmt.Errorf("panic: %v", r))
			result = failedResult(file, err, 0)
		}
	}()
	return s.classifier.Classify(ctx, file)
}

func failedResult(file models.FileEntry, err error, duration time.Duration) models.ClassificationResult {
	return models.ClassificationResult{
		File:     file,
		Status:   models.StatusFailed,
		Err:      err,
		Duration: duration,
	}
}
