package repository

import (
	"context"
	"fmt"

	"harf_sayi/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

type TestResultRepository interface {
	Create(ctx context.Context, result *model.TestResult) error
	ListByUser(ctx context.Context, userID int64) ([]model.TestResult, error)
	ListWithUsername(ctx context.Context) ([]model.TestResultWithUsername, error)
}

type sqlTestResultRepository struct {
	db *sqlx.DB
}

func NewTestResultRepository(db *sqlx.DB) TestResultRepository {
	return &sqlTestResultRepository{db: db}
}

const testResultColumns = `id, user_id, test_name, score, hits, misses, false_alarms, extra, created_at`

// Create inserts result and fills in its generated id and created_at. Nil
// numeric fields and a null Extra are stored as NULL.
func (r *sqlTestResultRepository) Create(ctx context.Context, result *model.TestResult) error {
	query := r.db.Rebind(`INSERT INTO test_results (user_id, test_name, score, hits, misses, false_alarms, extra)
	          VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		result.UserID, result.TestName, result.Score,
		result.Hits, result.Misses, result.FalseAlarms, result.Extra,
	)
	if err != nil {
		return fmt.Errorf("testResultRepository.Create: %w", err)
	}

	saved := model.TestResult{}
	query = r.db.Rebind(`SELECT ` + testResultColumns + ` FROM test_results WHERE id = ?`)
	if err := r.db.GetContext(ctx, &saved, query, id); err != nil {
		return fmt.Errorf("testResultRepository.Create: read back: %w", err)
	}
	*result = saved
	return nil
}

func (r *sqlTestResultRepository) ListByUser(ctx context.Context, userID int64) ([]model.TestResult, error) {
	results := []model.TestResult{}
	query := r.db.Rebind(`SELECT ` + testResultColumns + ` FROM test_results
	          WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &results, query, userID); err != nil {
		return nil, fmt.Errorf("testResultRepository.ListByUser: %w", err)
	}
	return results, nil
}

func (r *sqlTestResultRepository) ListWithUsername(ctx context.Context) ([]model.TestResultWithUsername, error) {
	results := []model.TestResultWithUsername{}
	query := `SELECT tr.id, tr.user_id, tr.test_name, tr.score, tr.hits, tr.misses,
	                 tr.false_alarms, tr.extra, tr.created_at, u.username
	          FROM test_results tr
	          JOIN users u ON u.id = tr.user_id
	          ORDER BY tr.created_at DESC, tr.id DESC`
	if err := r.db.SelectContext(ctx, &results, query); err != nil {
		return nil, fmt.Errorf("testResultRepository.ListWithUsername: %w", err)
	}
	return results, nil
}
