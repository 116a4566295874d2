package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
)

type DriverRepository struct {
	db *sqlx.DB
}

func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

type driverRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Number        int    `db:"number"`
	ConstructorID string `db:"constructor_id"`
	Cost          int64  `db:"cost"`
}

func (r *DriverRepository) GetByIDs(ctx context.Context, ids []string) ([]driver.Driver, error) {
	if len(ids) == 0 {
		return []driver.Driver{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, name, number, constructor_id, cost
		FROM drivers
		WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build driver query: %w", err)
	}

	var rows []driverRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select drivers: %w", err)
	}

	return mapDriverRows(rows), nil
}

func (r *DriverRepository) List(ctx context.Context) ([]driver.Driver, error) {
	var rows []driverRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, number, constructor_id, cost
		FROM drivers
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	return mapDriverRows(rows), nil
}

func (r *DriverRepository) Upsert(ctx context.Context, item driver.Driver) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO drivers (id, name, number, constructor_id, cost)
		VALUES (:id, :name, :number, :constructor_id, :cost)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			number = EXCLUDED.number,
			constructor_id = EXCLUDED.constructor_id,
			cost = EXCLUDED.cost`,
		driverRow{
			ID:            item.ID,
			Name:          item.Name,
			Number:        item.Number,
			ConstructorID: item.ConstructorID,
			Cost:          item.Cost,
		})
	if err != nil {
		return fmt.Errorf("upsert driver %s: %w", item.ID, err)
	}
	return nil
}

func mapDriverRows(rows []driverRow) []driver.Driver {
	out := make([]driver.Driver, 0, len(rows))
	for _, row := range rows {
		out = append(out, driver.Driver{
			ID:            row.ID,
			Name:          row.Name,
			Number:        row.Number,
			ConstructorID: row.ConstructorID,
			Cost:          row.Cost,
		})
	}
	return out
}
