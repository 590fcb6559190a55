package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una sede. Code vacío se guarda como NULL.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now()
	var code *string
	if l.Code != "" {
		code = &l.Code
	}
	query := `
		INSERT INTO locations (id, production_id, name, address, code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, l.ID, l.ProductionID, l.Name, l.Address, code, l.CreatedAt); err != nil {
		return writeErr("insert location", err)
	}
	return nil
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	var code *string
	if err := row.Scan(&l.ID, &l.ProductionID, &l.Name, &l.Address, &code, &l.CreatedAt); err != nil {
		return nil, err
	}
	if code != nil {
		l.Code = *code
	}
	return &l, nil
}

// GetByID obtiene una sede por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT id, production_id, name, address, code, created_at FROM locations WHERE id = $1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// ListByProduction lista las sedes del tenant por nombre.
func (r *LocationRepo) ListByProduction(ctx context.Context, productionID string) ([]*entity.Location, error) {
	query := `
		SELECT id, production_id, name, address, code, created_at
		FROM locations WHERE production_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, productionID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
