package repository

import (
	"context"
	"database/sql"

	"evcdr/backend/services/billing-service/internal/models"
)

// TariffRepository handles tariff lookups.
type TariffRepository struct {
	db *sql.DB
}

// NewTariffRepository returns repository.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

const tariffColumns = `id, document, verified, is_active, created_at, updated_at`

// Get returns the tariff with the given id. It returns sql.ErrNoRows when absent.
func (r *TariffRepository) Get(ctx context.Context, id string) (*models.TariffRow, error) {
	const query = `SELECT ` + tariffColumns + ` FROM tariffs WHERE id = $1`
	return scanTariff(r.db.QueryRowContext(ctx, query, id))
}

// GetActive returns currently active tariff (most recently updated active row).
func (r *TariffRepository) GetActive(ctx context.Context) (*models.TariffRow, error) {
	const query = `
		SELECT ` + tariffColumns + `
		FROM tariffs
		WHERE is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return scanTariff(r.db.QueryRowContext(ctx, query))
}

func scanTariff(row *sql.Row) (*models.TariffRow, error) {
	var t models.TariffRow
	if err := row.Scan(
		&t.ID,
		&t.Document,
		&t.Verified,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
