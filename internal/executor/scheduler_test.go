package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/typescan/internal/models"
	"github.com/harrison/typescan/internal/pattern"
)

// fakeClassifier labels files by name and can delay, fail or block per path.
type fakeClassifier struct {
	delays map[string]time.Duration
	fail   map[string]error
	panics map[string]bool
	block  map[string]bool

	calls      atomic.Int32
	mu         sync.Mutex
	completion []string
}

func (f *fakeClassifier) Classify(ctx context.Context, file models.FileEntry) (models.ClassificationResult, error) {
	f.calls.Add(1)
	defer func() {
		f.mu.Lock()
		f.completion = append(f.completion, file.Path)
		f.mu.Unlock()
	}()

	if f.panics[file.Path] {
		panic("boom")
	}
	if f.block[file.Path] {
		<-ctx.Done()
		return models.ClassificationResult{File: file, Status: models.StatusFailed, Err: ctx.Err()}, ctx.Err()
	}
	if d := f.delays[file.Path]; d > 0 {
		time.Sleep(d)
	}
	if err := f.fail[file.Path]; err != nil {
		return models.ClassificationResult{File: file, Status: models.StatusFailed, Err: err}, err
	}
	return models.ClassificationResult{
		File:   file,
		Label:  "label-" + file.Name,
		Status: models.StatusMatched,
	}, nil
}

func (f *fakeClassifier) completionOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completion...)
}

// recordingLogger counts scheduler events.
type recordingLogger struct {
	mu        sync.Mutex
	starts    int
	workers   int
	results   int
	progress  []int
	summaries []models.ScanSummary
}

func (l *recordingLogger) LogScanStart(total, workers int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	l.workers = workers
}

func (l *recordingLogger) LogFileResult(result models.ClassificationResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results++
}

func (l *recordingLogger) LogProgress(completed, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, completed)
}

func (l *recordingLogger) LogScanComplete(summary models.ScanSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summaries = append(l.summaries, summary)
}

func makeFiles(n int) []models.FileEntry {
	files := make([]models.FileEntry, n)
	for i := range files {
		name := fmt.Sprintf("file-%03d.bin", i)
		files[i] = models.FileEntry{Name: name, Path: "/scan/" + name}
	}
	return files
}

func TestSchedulerPreservesSubmissionOrder(t *testing.T) {
	const n = 20

	for _, size := range []int{1, 10, 100} {
		t.Run(fmt.Sprintf("pool size %d", size), func(t *testing.T) {
			files := makeFiles(n)

			// Later files finish sooner.
			fake := &fakeClassifier{delays: make(map[string]time.Duration)}
			for i, f := range files {
				fake.delays[f.Path] = time.Duration(n-i) * 2 * time.Millisecond
			}

			pool := NewWorkerPool(size)
			defer pool.Close()

			results := NewScheduler(pool, fake, nil).Run(context.Background(), files)

			require.Len(t, results, n)
			for i, r := range results {
				assert.Equal(t, files[i], r.File, "slot %d", i)
				assert.Equal(t, "label-"+files[i].Name, r.Label)
				assert.Equal(t, models.StatusMatched, r.Status)
			}
			assert.Equal(t, int32(n), fake.calls.Load())

			if size > 1 {
				order := fake.completionOrder()
				assert.NotEqual(t, files[0].Path, order[0], "tasks should complete out of submission order")
			}
		})
	}
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	files := makeFiles(8)
	readErr := NewScanError(files[3], "read", os.ErrPermission)
	fake := &fakeClassifier{fail: map[string]error{files[3].Path: readErr}}

	pool := NewWorkerPool(4)
	defer pool.Close()

	results := NewScheduler(pool, fake, nil).Run(context.Background(), files)

	require.Len(t, results, len(files))
	for i, r := range results {
		if i == 3 {
			assert.Equal(t, models.StatusFailed, r.Status)
			assert.True(t, IsScanError(r.Err))
			assert.ErrorIs(t, r.Err, os.ErrPermission)
			continue
		}
		assert.Equal(t, models.StatusMatched, r.Status, "slot %d", i)
		assert.NoError(t, r.Err)
	}

	err := Failures(results)
	require.Error(t, err)
	assert.True(t, IsBatchError(err))
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	files := makeFiles(3)
	fake := &fakeClassifier{panics: map[string]bool{files[1].Path: true}}

	pool := NewWorkerPool(2)
	defer pool.Close()

	results := NewScheduler(pool, fake, nil).Run(context.Background(), files)

	require.Len(t, results, 3)
	assert.Equal(t, models.StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Err.Error(), "panic: boom")
	assert.Equal(t, files[1], results[1].File)
	assert.Equal(t, models.StatusMatched, results[0].Status)
	assert.Equal(t, models.StatusMatched, results[2].Status)
}

func TestSchedulerTaskTimeout(t *testing.T) {
	files := makeFiles(4)
	fake := &fakeClassifier{block: map[string]bool{files[2].Path: true}}

	pool := NewWorkerPool(2)
	defer pool.Close()

	results := NewScheduler(pool, fake, nil).
		WithTaskTimeout(50*time.Millisecond).
		Run(context.Background(), files)

	require.Len(t, results, 4)
	assert.Equal(t, models.StatusFailed, results[2].Status)
	assert.True(t, IsTimeoutError(results[2].Err))

	var te *TimeoutError
	require.ErrorAs(t, results[2].Err, &te)
	assert.Equal(t, 50*time.Millisecond, te.TimeoutDuration)

	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, models.StatusMatched, results[i].Status, "slot %d", i)
	}
}

func TestSchedulerCancelledContext(t *testing.T) {
	files := makeFiles(5)

	pool := NewWorkerPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A real scanner notices the cancelled context before reading.
	scanner := NewFileScanner(pattern.NewCatalog(nil))
	results := NewScheduler(pool, scanner, nil).Run(ctx, files)

	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, files[i], r.File)
		assert.Equal(t, models.StatusFailed, r.Status)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestSchedulerClosedPool(t *testing.T) {
	files := makeFiles(3)
	pool := NewWorkerPool(2)
	require.NoError(t, pool.Close())

	results := NewScheduler(pool, &fakeClassifier{}, nil).Run(context.Background(), files)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, models.StatusFailed, r.Status)
		assert.ErrorIs(t, r.Err, ErrPoolClosed)
	}
}

func TestSchedulerEmptyInput(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	logger := &recordingLogger{}
	results := NewScheduler(pool, &fakeClassifier{}, logger).Run(context.Background(), nil)

	assert.Empty(t, results)
	assert.Equal(t, 0, logger.starts)
}

func TestSchedulerLogsEvents(t *testing.T) {
	files := makeFiles(6)
	fake := &fakeClassifier{fail: map[string]error{files[0].Path: errors.New("gone")}}
	logger := &recordingLogger{}

	pool := NewWorkerPool(3)
	defer pool.Close()

	NewScheduler(pool, fake, logger).Run(context.Background(), files)

	assert.Equal(t, 1, logger.starts)
	assert.Equal(t, 3, logger.workers)
	assert.Equal(t, 6, logger.results)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, logger.progress)
	require.Len(t, logger.summaries, 1)
	assert.Equal(t, 6, logger.summaries[0].Total)
	assert.Equal(t, 5, logger.summaries[0].Matched)
	assert.Equal(t, 1, logger.summaries[0].Failed)
}

func TestSchedulerWithFileScanner(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, content []byte) models.FileEntry {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, content, 0644))
		return models.NewFileEntry(path)
	}

	gif := write("cat.gif", []byte("GIF89a\x01\x00\x01\x00"))
	txt := write("notes.txt", []byte("just some text"))
	pdf := write("paper.pdf", []byte("%PDF-1.7\n..."))
	missing := models.NewFileEntry(filepath.Join(dir, "vanished.bin"))

	catalog, err := pattern.Parse(strings.NewReader(`1;"%PDF-";"PDF document"
3;"GIF89a";"GIF image"
`))
	require.NoError(t, err)

	pool := NewWorkerPool(DefaultPoolSize)
	defer pool.Close()

	files := []models.FileEntry{gif, missing, txt, pdf}
	results := NewScheduler(pool, NewFileScanner(catalog), nil).Run(context.Background(), files)

	require.Len(t, results, 4)
	assert.Equal(t, "GIF image", results[0].Label)
	assert.Equal(t, models.StatusFailed, results[1].Status)
	assert.ErrorIs(t, results[1].Err, os.ErrNotExist)
	assert.Equal(t, pattern.UnknownLabel, results[2].Label)
	assert.Equal(t, "PDF document", results[3].Label)
}
