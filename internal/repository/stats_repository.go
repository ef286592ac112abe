package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TableCount is the number of rows in one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// StatsRepository reports table sizes.
type StatsRepository interface {
	CountRows(ctx context.Context) ([]TableCount, error)
}

type statsRepository struct {
	db     *gorm.DB
	models []interface{}
}

// NewStatsRepository creates a stats repository over the given models.
func NewStatsRepository(db *gorm.DB, models ...interface{}) StatsRepository {
	return &statsRepository{db: db, models: models}
}

// CountRows counts the rows of every model's table, in model order.
func (r *statsRepository) CountRows(ctx context.Context) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(r.models))
	for _, m := range r.models {
		stmt := &gorm.Statement{DB: r.db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}

		var n int64
		if err := r.db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		counts = append(counts, TableCount{Table: stmt.Schema.Table, Rows: n})
	}
	return counts, nil
}
