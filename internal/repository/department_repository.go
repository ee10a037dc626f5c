package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DepartmentRepository reports the universe of valid department ids,
// implementing snapshot.DepartmentSource.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// LoadDepartmentIDs implements snapshot.DepartmentSource.
func (r *DepartmentRepository) LoadDepartmentIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	const query = `SELECT id FROM departments`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("load department ids: %w", err)
	}
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
