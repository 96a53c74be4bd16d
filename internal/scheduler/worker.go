package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"drake-homes/internal/database"
	"drake-homes/internal/models"
	"drake-homes/internal/search"
)

// IndexWorker drains search_index_jobs into the search engine. Handlers
// enqueue a job per write and the worker pushes them on a ticker, retrying
// failures with backoff.
type IndexWorker struct {
	gdb          *database.GormDB
	engine       search.Engine
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time

	mu        sync.Mutex
	stopChan  chan struct{}
	done      chan struct{}
	isRunning bool
}

func NewIndexWorker(gdb *database.GormDB, engine search.Engine, pollInterval time.Duration) *IndexWorker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &IndexWorker{
		gdb:          gdb,
		engine:       engine,
		pollInterval: pollInterval,
		batchSize:    50,
		now:          time.Now,
	}
}

// Enqueue records a change for the next poll
func (w *IndexWorker) Enqueue(ctx context.Context, kind search.Kind, id uint, action string) error {
	return w.gdb.EnqueueIndexJob(ctx, string(kind), id, action)
}

func (w *IndexWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		log.Println("IndexWorker: Already running")
		return
	}
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.isRunning = true
	log.Printf("IndexWorker: Started (poll_interval=%v)", w.pollInterval)
	go w.run(w.stopChan, w.done)
}

// Stop waits for the batch in flight to finish
func (w *IndexWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
	log.Println("IndexWorker: Stopped")
}

func (w *IndexWorker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("IndexWorker: %v", err)
			}
		}
	}
}

// ProcessDue handles one batch of due jobs and returns how many succeeded
func (w *IndexWorker) ProcessDue(ctx context.Context) (int, error) {
	jobs, err := w.gdb.DueIndexJobs(ctx, w.now(), w.batchSize)
	if err != nil {
		return 0, err
	}
	succeeded := 0
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return succeeded, err
		}
		if w.process(ctx, &jobs[i]) {
			succeeded++
		}
	}
	return succeeded, nil
}

func (w *IndexWorker) process(ctx context.Context, job *models.SearchIndexJob) bool {
	job.Status = models.IndexJobProcessing
	job.Attempts++
	if err := w.gdb.SaveIndexJob(ctx, job); err != nil {
		log.Printf("IndexWorker: Failed to mark job %d processing: %v", job.ID, err)
		return false
	}

	err := w.apply(ctx, job)
	now := w.now()
	if err == nil {
		job.Status = models.IndexJobDone
		job.LastError = ""
		job.NextRetryAt = nil
		job.CompletedAt = &now
	} else {
		job.Status = models.IndexJobFailed
		job.LastError = err.Error()
		if job.Attempts >= models.MaxIndexAttempts {
			log.Printf("IndexWorker: Giving up on %s %d after %d attempts: %v", job.Kind, job.EntityID, job.Attempts, err)
			job.NextRetryAt = nil
			job.CompletedAt = &now
		} else {
			next := now.Add(models.NextIndexRetryDelay(job.Attempts - 1))
			job.NextRetryAt = &next
			log.Printf("IndexWorker: Retrying %s %d at %s: %v", job.Kind, job.EntityID, next.Format(time.RFC3339), err)
		}
	}
	if err := w.gdb.SaveIndexJob(ctx, job); err != nil {
		log.Printf("IndexWorker: Failed to save job %d: %v", job.ID, err)
	}
	return job.Status == models.IndexJobDone
}

func (w *IndexWorker) apply(ctx context.Context, job *models.SearchIndexJob) error {
	kind := search.Kind(job.Kind)
	if job.Action == models.IndexActionDelete {
		return w.engine.Delete(kind, job.EntityID)
	}
	err := search.Upsert(ctx, w.gdb, w.engine, kind, job.EntityID)
	if errors.Is(err, database.ErrNotFound) {
		// deleted after the job was queued
		return w.engine.Delete(kind, job.EntityID)
	}
	return err
}

// QueueStats is reported on the admin stats page
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Done       int64 `json:"done"`
	Failed     int64 `json:"failed"`
	IsRunning  bool  `json:"is_running"`
}

func (w *IndexWorker) GetQueueStats(ctx context.Context) (*QueueStats, error) {
	counts, err := w.gdb.IndexJobCounts(ctx)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	running := w.isRunning
	w.mu.Unlock()
	return &QueueStats{
		Pending:    counts[models.IndexJobPending],
		Processing: counts[models.IndexJobProcessing],
		Done:       counts[models.IndexJobDone],
		Failed:     counts[models.IndexJobFailed],
		IsRunning:  running,
	}, nil
}
