// Package upload implements the bulk image upload queue: validation of a
// batch of files, staged previews, batched concurrent uploads with per-file
// progress, retry of failures and a single main image.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 5

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Limits bound what a queue accepts
type Limits struct {
	MaxFiles      int
	MaxFileSizeMB int
	BatchSize     int
}

func (l Limits) maxBytes() int64 {
	return int64(l.MaxFileSizeMB) * 1024 * 1024
}

func (l Limits) batchSize() int {
	if l.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return l.BatchSize
}

// Incoming is a file offered to AddFiles
type Incoming struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Entry is one file in the queue
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Status      Status `json:"status"`
	Progress    int    `json:"progress"` // percent
	Error       string `json:"error,omitempty"`
	IsMain      bool   `json:"is_main"`
	URL         string `json:"url,omitempty"`

	preview string
}

// UploadedFunc runs after an entry's object is stored. An error marks the
// entry failed.
type UploadedFunc func(ctx context.Context, e Entry) error

// Options configure a Queue
type Options struct {
	Limits Limits
	// Existing is how many images the target already has
	Existing   int
	StagingDir string
	Store      Store
	OnUploaded UploadedFunc
}

// Queue holds files between selection and upload. It is safe for
// concurrent use.
type Queue struct {
	mu      sync.Mutex
	opts    Options
	entries []*Entry
	closed  bool
}

func NewQueue(opts Options) *Queue {
	if opts.StagingDir == "" {
		opts.StagingDir = os.TempDir()
	}
	return &Queue{opts: opts}
}

// Remaining returns how many more files the queue accepts
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remainingLocked()
}

func (q *Queue) remainingLocked() int {
	n := q.opts.Limits.MaxFiles - q.opts.Existing - len(q.entries)
	if n < 0 {
		return 0
	}
	return n
}

// AddFiles stages every valid file as a pending entry. A batch larger than
// the remaining capacity is rejected whole. Otherwise invalid files are
// skipped and reported together in the returned error, next to the
// entries that were added.
func (q *Queue) AddFiles(files []Incoming) ([]Entry, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	remaining := q.remainingLocked()
	q.mu.Unlock()

	if len(files) > remaining {
		return nil, fmt.Errorf("%w: %d selected, %d more allowed (%d over the limit of %d)",
			ErrTooManyFiles, len(files), remaining, len(files)-remaining, q.opts.Limits.MaxFiles)
	}

	var (
		added []*Entry
		errs  []error
	)
	for _, f := range files {
		e, err := q.stage(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, e)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		for _, e := range added {
			releasePreview(e)
		}
		return nil, ErrQueueClosed
	}
	// capacity may have been taken by a concurrent call while staging
	if len(added) > q.remainingLocked() {
		for _, e := range added {
			releasePreview(e)
		}
		return nil, fmt.Errorf("%w: %d more allowed", ErrTooManyFiles, q.remainingLocked())
	}

	out := make([]Entry, len(added))
	for i, e := range added {
		q.entries = append(q.entries, e)
		out[i] = *e
	}
	return out, errors.Join(errs...)
}

// stage validates one file and copies it to a preview file
func (q *Queue) stage(f Incoming) (*Entry, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	defer rc.Close()

	maxBytes := q.opts.Limits.maxBytes()
	contentType, r, err := CheckImage(f.Name, f.Size, maxBytes, rc)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(q.opts.StagingDir, "preview-*"+strings.ToLower(filepath.Ext(f.Name)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to stage preview: %w", f.Name, err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%s: failed to stage preview: %w", f.Name, err)
	}
	if maxBytes > 0 && n > maxBytes {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", f.Name, ErrFileTooLarge, maxBytes)
	}

	return &Entry{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Size:        n,
		ContentType: contentType,
		Status:      StatusPending,
		preview:     tmp.Name(),
	}, nil
}

// Entries returns a snapshot of the queue in insertion order
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = *e
	}
	return out
}

func (q *Queue) find(id string) (int, *Entry) {
	for i, e := range q.entries {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

// Preview returns the staged file of a pending or failed entry
func (q *Queue) Preview(id string) (string, string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, e := q.find(id)
	if e == nil || e.preview == "" {
		return "", "", ErrEntryNotFound
	}
	return e.preview, e.ContentType, nil
}

// SetMain flags id as the main image and clears every other flag
func (q *Queue) SetMain(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, target := q.find(id)
	if target == nil {
		return ErrEntryNotFound
	}
	for _, e := range q.entries {
		e.IsMain = false
	}
	target.IsMain = true
	return nil
}

// Remove drops one entry and releases its preview. The main flag is not
// handed to another entry.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, e := q.find(id)
	if e == nil {
		return ErrEntryNotFound
	}
	if e.Status == StatusUploading {
		return ErrEntryBusy
	}
	releasePreview(e)
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return nil
}

// Close releases the preview of every entry that is not being uploaded.
// The queue accepts no more files. A pass already running finishes, and
// each of its entries releases its staged file when it settles.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.Status == StatusUploading {
			continue
		}
		releasePreview(e)
	}
	q.closed = true
}

func releasePreview(e *Entry) {
	if e.preview == "" {
		return
	}
	if err := os.Remove(e.preview); err != nil && !os.IsNotExist(err) {
		log.Printf("[upload] failed to release preview %s: %v", e.preview, err)
	}
	e.preview = ""
}

// Result counts the outcome of one upload pass
type Result struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
}

// UploadAll uploads pending entries in batches. Entries within a batch run
// concurrently and batches run one after another. A failed entry is marked
// and does not stop its siblings.
func (q *Queue) UploadAll(ctx context.Context) (Result, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return Result{}, ErrQueueClosed
	}
	var pending []*Entry
	for _, e := range q.entries {
		if e.Status == StatusPending {
			e.Status = StatusUploading
			e.Progress = 0
			pending = append(pending, e)
		}
	}
	q.mu.Unlock()

	var (
		res   Result
		resMu sync.Mutex
		size  = q.opts.Limits.batchSize()
	)
	for start := 0; start < len(pending); start += size {
		end := min(start+size, len(pending))

		if err := ctx.Err(); err != nil {
			q.requeue(pending[start:])
			return res, err
		}

		var g errgroup.Group
		for _, e := range pending[start:end] {
			e := e
			g.Go(func() error {
				ok := q.uploadOne(ctx, e)
				resMu.Lock()
				if ok {
					res.Uploaded++
				} else {
					res.Failed++
				}
				resMu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Printf("[upload] pass finished: %d uploaded, %d failed", res.Uploaded, res.Failed)
	return res, nil
}

// RetryFailed moves failed entries back to pending and runs another pass
func (q *Queue) RetryFailed(ctx context.Context) (Result, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return Result{}, ErrQueueClosed
	}
	for _, e := range q.entries {
		if e.Status == StatusError {
			e.Status = StatusPending
			e.Error = ""
			e.Progress = 0
		}
	}
	q.mu.Unlock()
	return q.UploadAll(ctx)
}

func (q *Queue) requeue(entries []*Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range entries {
		e.Status = StatusPending
		if q.closed {
			releasePreview(e)
		}
	}
}

func (q *Queue) uploadOne(ctx context.Context, e *Entry) bool {
	q.mu.Lock()
	preview, name, size, contentType := e.preview, e.Name, e.Size, e.ContentType
	q.mu.Unlock()

	url, err := q.put(ctx, e, preview, name, size, contentType)
	if err == nil && q.opts.OnUploaded != nil {
		q.mu.Lock()
		snapshot := *e
		q.mu.Unlock()
		snapshot.URL = url
		err = q.opts.OnUploaded(ctx, snapshot)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err != nil {
		e.Status = StatusError
		e.Error = err.Error()
		log.Printf("[upload] %s failed: %v", name, err)
		// nothing can retry a closed queue
		if q.closed {
			releasePreview(e)
		}
		return false
	}
	e.Status = StatusDone
	e.Progress = 100
	e.URL = url
	releasePreview(e)
	return true
}

func (q *Queue) put(ctx context.Context, e *Entry, preview, name string, size int64, contentType string) (string, error) {
	if preview == "" {
		return "", fmt.Errorf("%s: preview released", name)
	}
	f, err := os.Open(preview)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	key := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	r := &progressReader{r: f, total: size, report: func(pct int) {
		q.mu.Lock()
		e.Progress = pct
		q.mu.Unlock()
	}}
	return q.opts.Store.Put(ctx, key, r, size, contentType)
}

// progressReader reports whole-percent progress as bytes are read
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(pct int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			pct = 99 // done is reported once the store accepts the object
		}
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
