package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var (
	_ repository.SalesRepository    = (*SalesRepo)(nil)
	_ repository.IncomingRepository = (*IncomingRepo)(nil)
)

// SalesRepo implementación sobre PostgreSQL de las ventas por sede (usable con pool o tx).
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// Create persiste un hecho de venta.
func (r *SalesRepo) Create(ctx context.Context, s *entity.Sales) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now()
	query := `
		INSERT INTO sales (id, product_id, location_id, date, external_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.ProductID, s.LocationID, s.Date, s.ExternalID, s.Quantity, s.CreatedAt)
	if err != nil {
		return writeErr("create sale", err)
	}
	return nil
}

// SumByProduct agrega las ventas de la sede en [from, to]. SUM puede devolver NULL; se escanea a
// NullDecimal y el motor decide qué hacer con él.
func (r *SalesRepo) SumByProduct(ctx context.Context, locationID string, from, to time.Time) ([]repository.SalesTotal, error) {
	query := `
		SELECT product_id, SUM(quantity)::numeric
		FROM sales
		WHERE location_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY product_id
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, locationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}
	defer rows.Close()
	var out []repository.SalesTotal
	for rows.Next() {
		var t repository.SalesTotal
		if err := rows.Scan(&t.ProductID, &t.Total); err != nil {
			return nil, fmt.Errorf("scan sales total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// IncomingRepo implementación sobre PostgreSQL de las entradas de ingredientes.
type IncomingRepo struct {
	q Querier
}

// NewIncomingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIncomingRepository(q Querier) *IncomingRepo {
	return &IncomingRepo{q: q}
}

// Create persiste una entrada.
func (r *IncomingRepo) Create(ctx context.Context, in *entity.Incoming) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	in.CreatedAt = time.Now()
	query := `
		INSERT INTO incoming (id, ingredient_id, location_id, date, quantity, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, in.ID, in.IngredientID, in.LocationID, in.Date, in.Quantity, in.Comment, in.CreatedAt)
	if err != nil {
		return writeErr("create incoming", err)
	}
	return nil
}

// SumByIngredient agrega las entradas de la sede en [from, to].
func (r *IncomingRepo) SumByIngredient(ctx context.Context, locationID string, from, to time.Time) ([]repository.IncomingTotal, error) {
	query := `
		SELECT ingredient_id, SUM(quantity)
		FROM incoming
		WHERE location_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY ingredient_id
		ORDER BY ingredient_id`
	rows, err := r.q.Query(ctx, query, locationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum incoming: %w", err)
	}
	defer rows.Close()
	var out []repository.IncomingTotal
	for rows.Next() {
		var t repository.IncomingTotal
		if err := rows.Scan(&t.IngredientID, &t.Total); err != nil {
			return nil, fmt.Errorf("scan incoming total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
