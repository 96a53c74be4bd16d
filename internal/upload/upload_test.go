package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func pngFile(name string, size int) Incoming {
	data := append([]byte{}, pngHeader...)
	if size > len(data) {
		data = append(data, bytes.Repeat([]byte{0}, size-len(data))...)
	}
	return memFile(name, data)
}

func memFile(name string, data []byte) Incoming {
	return Incoming{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failFor  map[int64]bool // fail objects of these sizes
	inflight int
	maxSeen  int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, failFor: map[int64]bool{}}
}

func (s *memStore) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.maxSeen {
		s.maxSeen = s.inflight
	}
	fail := s.failFor[size]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	time.Sleep(5 * time.Millisecond)
	if fail {
		return "", errors.New("storage rejected object")
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "/uploads/" + key, nil
}

func (s *memStore) Delete(context.Context, string) error { return nil }

func newTestQueue(t *testing.T, limits Limits, existing int, store Store) *Queue {
	t.Helper()
	q := NewQueue(Options{Limits: limits, Existing: existing, StagingDir: t.TempDir(), Store: store})
	t.Cleanup(q.Close)
	return q
}

func TestAddFiles_RejectsWholeBatchOverLimit(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 5, MaxFileSizeMB: 1}, 0, newMemStore())

	var files []Incoming
	for i := 0; i < 7; i++ {
		files = append(files, pngFile(fmt.Sprintf("img%d.png", i), 100))
	}

	added, err := q.AddFiles(files)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyFiles)
	assert.Contains(t, err.Error(), "2 over the limit of 5")
	assert.Empty(t, added)
	assert.Empty(t, q.Entries())
}

func TestAddFiles_CountsExistingImages(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 5, MaxFileSizeMB: 1}, 3, newMemStore())

	_, err := q.AddFiles([]Incoming{pngFile("a.png", 50), pngFile("b.png", 50), pngFile("c.png", 50)})
	assert.ErrorIs(t, err, ErrTooManyFiles)

	added, err := q.AddFiles([]Incoming{pngFile("a.png", 50), pngFile("b.png", 50)})
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Zero(t, q.Remaining())
}

func TestAddFiles_ReportsInvalidFiles(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 10, MaxFileSizeMB: 1}, 0, newMemStore())

	added, err := q.AddFiles([]Incoming{
		pngFile("ok.png", 200),
		memFile("notes.txt", []byte("just some text")),
		pngFile("huge.png", 2*1024*1024),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImage)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "notes.txt")
	assert.Contains(t, err.Error(), "huge.png")

	require.Len(t, added, 1)
	assert.Equal(t, "ok.png", added[0].Name)
	assert.Equal(t, "image/png", added[0].ContentType)
	assert.Equal(t, StatusPending, added[0].Status)
	assert.Len(t, q.Entries(), 1)
}

func TestRemove_ReleasesPreviewAndKeepsMainUnset(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 10, MaxFileSizeMB: 1}, 0, newMemStore())

	added, err := q.AddFiles([]Incoming{pngFile("a.png", 64), pngFile("b.png", 64), pngFile("c.png", 64)})
	require.NoError(t, err)

	require.NoError(t, q.SetMain(added[1].ID))
	preview, _, err := q.Preview(added[1].ID)
	require.NoError(t, err)
	require.FileExists(t, preview)

	require.NoError(t, q.Remove(added[1].ID))
	assert.NoFileExists(t, preview)

	entries := q.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, e.IsMain, e.Name)
	}
	assert.ErrorIs(t, q.Remove(added[1].ID), ErrEntryNotFound)
}

func TestSetMain_IsExclusive(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 10, MaxFileSizeMB: 1}, 0, newMemStore())
	added, err := q.AddFiles([]Incoming{pngFile("a.png", 64), pngFile("b.png", 64)})
	require.NoError(t, err)

	require.NoError(t, q.SetMain(added[0].ID))
	require.NoError(t, q.SetMain(added[1].ID))

	entries := q.Entries()
	assert.False(t, entries[0].IsMain)
	assert.True(t, entries[1].IsMain)
	assert.ErrorIs(t, q.SetMain("missing"), ErrEntryNotFound)
}

func TestUploadAll_BatchesAndIsolatesFailures(t *testing.T) {
	store := newMemStore()
	store.failFor[333] = true

	var (
		mu       sync.Mutex
		uploaded []Entry
	)
	q := NewQueue(Options{
		Limits:     Limits{MaxFiles: 10, MaxFileSizeMB: 1, BatchSize: 2},
		StagingDir: t.TempDir(),
		Store:      store,
		OnUploaded: func(_ context.Context, e Entry) error {
			mu.Lock()
			uploaded = append(uploaded, e)
			mu.Unlock()
			return nil
		},
	})
	defer q.Close()

	files := []Incoming{pngFile("1.png", 100), pngFile("2.png", 101), pngFile("bad.png", 333), pngFile("4.png", 102), pngFile("5.png", 103)}
	added, err := q.AddFiles(files)
	require.NoError(t, err)
	require.NoError(t, q.SetMain(added[3].ID))

	res, err := q.UploadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Uploaded: 4, Failed: 1}, res)
	assert.LessOrEqual(t, store.maxSeen, 2)

	for _, e := range q.Entries() {
		if e.Name == "bad.png" {
			assert.Equal(t, StatusError, e.Status)
			assert.Contains(t, e.Error, "storage rejected object")
			continue
		}
		assert.Equal(t, StatusDone, e.Status, e.Name)
		assert.Equal(t, 100, e.Progress)
		assert.NotEmpty(t, e.URL)
	}

	require.Len(t, uploaded, 4)
	mains := 0
	for _, e := range uploaded {
		if e.IsMain {
			mains++
			assert.Equal(t, "4.png", e.Name)
		}
	}
	assert.Equal(t, 1, mains)

	// retry picks up only the failed entry
	store.mu.Lock()
	store.failFor[333] = false
	store.mu.Unlock()

	res, err = q.RetryFailed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Uploaded: 1}, res)
	assert.Len(t, store.objects, 5)
}

func TestUploadAll_CallbackFailureMarksEntry(t *testing.T) {
	q := NewQueue(Options{
		Limits:     Limits{MaxFiles: 2, MaxFileSizeMB: 1},
		StagingDir: t.TempDir(),
		Store:      newMemStore(),
		OnUploaded: func(context.Context, Entry) error { return errors.New("db write failed") },
	})
	defer q.Close()

	_, err := q.AddFiles([]Incoming{pngFile("a.png", 80)})
	require.NoError(t, err)

	res, err := q.UploadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "db write failed", q.Entries()[0].Error)
}

func TestUploadAll_CancelledContextRequeues(t *testing.T) {
	q := newTestQueue(t, Limits{MaxFiles: 5, MaxFileSizeMB: 1}, 0, newMemStore())
	_, err := q.AddFiles([]Incoming{pngFile("a.png", 80), pngFile("b.png", 81)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = q.UploadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	for _, e := range q.Entries() {
		assert.Equal(t, StatusPending, e.Status)
	}
}

func TestClose_ReleasesPreviews(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(Options{Limits: Limits{MaxFiles: 5, MaxFileSizeMB: 1}, StagingDir: dir, Store: newMemStore()})

	_, err := q.AddFiles([]Incoming{pngFile("a.png", 80), pngFile("b.png", 81)})
	require.NoError(t, err)
	staged, _ := filepath.Glob(filepath.Join(dir, "preview-*"))
	assert.Len(t, staged, 2)

	q.Close()
	staged, _ = filepath.Glob(filepath.Join(dir, "preview-*"))
	assert.Empty(t, staged)

	_, err = q.AddFiles([]Incoming{pngFile("c.png", 80)})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

// gateStore holds every Put until release is closed
type gateStore struct {
	*memStore
	started chan struct{}
	release chan struct{}
}

func (s *gateStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	s.started <- struct{}{}
	<-s.release
	return s.memStore.Put(ctx, key, r, size, contentType)
}

func TestClose_KeepsRunningUploads(t *testing.T) {
	dir := t.TempDir()
	store := &gateStore{memStore: newMemStore(), started: make(chan struct{}, 10), release: make(chan struct{})}
	q := NewQueue(Options{Limits: Limits{MaxFiles: 10, MaxFileSizeMB: 1, BatchSize: 5}, StagingDir: dir, Store: store})

	var files []Incoming
	for i := 0; i < 10; i++ {
		files = append(files, pngFile(fmt.Sprintf("img%d.png", i), 100+i))
	}
	_, err := q.AddFiles(files)
	require.NoError(t, err)

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := q.UploadAll(context.Background())
		done <- outcome{res, err}
	}()

	<-store.started
	q.Close()
	close(store.release)

	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, 10, out.res.Uploaded)
	assert.Equal(t, 0, out.res.Failed)
	assert.Len(t, store.objects, 10)
	for _, e := range q.Entries() {
		assert.Equal(t, StatusDone, e.Status, e.Name)
	}

	staged, _ := filepath.Glob(filepath.Join(dir, "preview-*"))
	assert.Empty(t, staged)
}

func TestClose_ReleasesFailedUploads(t *testing.T) {
	dir := t.TempDir()
	store := &gateStore{memStore: newMemStore(), started: make(chan struct{}, 2), release: make(chan struct{})}
	store.failFor[81] = true
	q := NewQueue(Options{Limits: Limits{MaxFiles: 5, MaxFileSizeMB: 1}, StagingDir: dir, Store: store})

	_, err := q.AddFiles([]Incoming{pngFile("a.png", 80), pngFile("b.png", 81)})
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		res, _ := q.UploadAll(context.Background())
		done <- res
	}()

	<-store.started
	q.Close()
	close(store.release)

	res := <-done
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, res.Failed)

	staged, _ := filepath.Glob(filepath.Join(dir, "preview-*"))
	assert.Empty(t, staged)

	_, err = q.RetryFailed(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestSessions_Expire(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessions(time.Hour)
	s.now = func() time.Time { return now }

	dir := t.TempDir()
	q := NewQueue(Options{Limits: Limits{MaxFiles: 5, MaxFileSizeMB: 1}, StagingDir: dir, Store: newMemStore()})
	_, err := q.AddFiles([]Incoming{pngFile("a.png", 80)})
	require.NoError(t, err)

	idle := s.Create(1, q)
	active := s.Create(2, NewQueue(Options{StagingDir: dir}))

	now = now.Add(50 * time.Minute)
	_, ok := s.Get(active.ID)
	require.True(t, ok)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, s.Expire())
	_, ok = s.Get(idle.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	staged, _ := filepath.Glob(filepath.Join(dir, "preview-*"))
	assert.Empty(t, staged)

	assert.True(t, s.Delete(active.ID))
	assert.False(t, s.Delete(active.ID))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "abc.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = store.Put(context.Background(), "../escape.png", bytes.NewReader(pngHeader), 1, "image/png")
	assert.Error(t, err)

	require.NoError(t, store.Delete(context.Background(), "abc.png"))
	assert.NoFileExists(t, filepath.Join(dir, "abc.png"))
}
