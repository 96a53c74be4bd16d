package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"drake-homes/internal/config"
	"drake-homes/internal/database/dbtest"
	"drake-homes/internal/models"
	"drake-homes/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDailyRunTime(t *testing.T) {
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("03:00"))
	assert.Equal(t, "45 23 * * *", parseDailyRunTime("23:45"))
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("25:00"))
	assert.Equal(t, "0 3 * * *", parseDailyRunTime("noon"))
}

type fakeEngine struct {
	search.Disabled
	mu      sync.Mutex
	indexed []uint
	deleted []uint
	fail    error
	lots    int
}

func (e *fakeEngine) IndexProperty(p *models.Property) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return e.fail
	}
	e.indexed = append(e.indexed, p.ID)
	return nil
}

func (e *fakeEngine) Delete(_ search.Kind, id uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleted = append(e.deleted, id)
	return nil
}

func (e *fakeEngine) Reindex(_ []models.Property, _ []models.Plan, lots []models.Lot) error {
	e.lots = len(lots)
	return nil
}

func TestIndexWorker_ProcessDue(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	engine := &fakeEngine{}
	w := NewIndexWorker(gdb, engine, time.Hour)

	p := &models.Property{Title: "The Cedar", Status: models.PropertyStatusPreConstruction}
	require.NoError(t, gdb.CreateProperty(ctx, p))

	require.NoError(t, w.Enqueue(ctx, search.KindProperties, p.ID, models.IndexActionUpsert))
	// a second edit reuses the pending job
	require.NoError(t, w.Enqueue(ctx, search.KindProperties, p.ID, models.IndexActionUpsert))
	// missing rows are removed from the index
	require.NoError(t, w.Enqueue(ctx, search.KindProperties, 999, models.IndexActionUpsert))

	n, err := w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint{p.ID}, engine.indexed)
	assert.Equal(t, []uint{999}, engine.deleted)

	stats, err := w.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Done)
	assert.Zero(t, stats.Pending)
}

func TestIndexWorker_RetryBackoff(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	engine := &fakeEngine{fail: errors.New("meilisearch down")}
	w := NewIndexWorker(gdb, engine, time.Hour)
	now := time.Now()
	w.now = func() time.Time { return now }

	p := &models.Property{Title: "The Cedar"}
	require.NoError(t, gdb.CreateProperty(ctx, p))
	require.NoError(t, w.Enqueue(ctx, search.KindProperties, p.ID, models.IndexActionUpsert))

	n, err := w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// not due yet
	jobs, err := gdb.DueIndexJobs(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	now = now.Add(models.NextIndexRetryDelay(0) + time.Second)
	engine.fail = nil
	n, err = w.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint{p.ID}, engine.indexed)
}

func TestScheduler_RunNightly(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	engine := &fakeEngine{}

	require.NoError(t, gdb.CreateLot(ctx, &models.Lot{LotNumber: "7"}))
	book := &models.SelectionBook{CustomerName: "Old Draft"}
	require.NoError(t, gdb.CreateSelectionBook(ctx, book))
	require.NoError(t, gdb.DB().Model(book).UpdateColumn("updated_at", time.Now().AddDate(-1, 0, 0)).Error)

	s := NewScheduler(gdb, engine, nil, cfg)
	require.NoError(t, s.RunNightly(ctx))
	assert.Equal(t, 1, engine.lots)

	_, err := gdb.GetSelectionBook(ctx, book.ID)
	assert.Error(t, err)
}

func TestScheduler_ReindexDisabled(t *testing.T) {
	s := NewScheduler(dbtest.New(t), search.Disabled{}, nil, config.DefaultConfig())
	assert.ErrorIs(t, s.RunReindex(context.Background()), search.ErrDisabled)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(dbtest.New(t), search.Disabled{}, nil, config.DefaultConfig())
	require.NoError(t, s.Start())
	assert.False(t, s.NextRun().IsZero())
	s.Stop()
}
