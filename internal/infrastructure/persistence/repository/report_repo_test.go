package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
	"github.com/expensedesk/reimbursement-backoffice/pkg/database"
)

const reportsSchema = `
	CREATE TABLE reports (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		filter_json TEXT NOT NULL DEFAULT '{}',
		file_path TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		requested_by TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		concluded_at DATETIME,
		expires_at DATETIME
	);
`

func newReportRepo(t *testing.T) *ReportRepository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(reportsSchema)
	require.NoError(t, err)

	return NewReportRepository(db.DB, zap.NewNop()).(*ReportRepository)
}

func pendingReport(id string, createdAt time.Time) *entity.Report {
	return &entity.Report{
		ID:          id,
		Type:        entity.ReportTypeRequestsExcel,
		Status:      entity.ReportStatusPending,
		FilterJSON:  "{}",
		RequestedBy: "user-1",
		CreatedAt:   createdAt,
	}
}

func TestReportRepository_ClaimNextPending_OldestFirst(t *testing.T) {
	repo := newReportRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, pendingReport("rep-b", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, pendingReport("rep-a", base)))

	first, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "rep-a", first.ID)
	assert.Equal(t, entity.ReportStatusProcessing, first.Status)

	second, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "rep-b", second.ID)

	// Queue is empty; nothing left to claim.
	third, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, third)
}

func TestReportRepository_ClaimNextPending_ConcurrentWorkersDrain(t *testing.T) {
	repo := newReportRepo(t)
	ctx := context.Background()

	const total = 10
	base := time.Now().UTC()
	for i := 0; i < total; i++ {
		id := string(rune('a' + i))
		require.NoError(t, repo.Create(ctx, pendingReport("rep-"+id, base.Add(time.Duration(i)*time.Second))))
	}

	// Several workers race on the same queue: each keeps claiming until nil,
	// so a lost claim must move on to the next candidate rather than stop.
	var mu sync.Mutex
	claimed := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				report, err := repo.ClaimNextPending(ctx)
				if !assert.NoError(t, err) {
					return
				}
				if report == nil {
					return
				}
				mu.Lock()
				claimed[report.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, total, "every pending report should be claimed")
	for id, count := range claimed {
		assert.Equal(t, 1, count, "report %s claimed more than once", id)
	}
}
