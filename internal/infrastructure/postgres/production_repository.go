package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

// ProductionRepo implementación del puerto ProductionRepository sobre PostgreSQL.
type ProductionRepo struct {
	q Querier
}

// NewProductionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

// Create persiste una production.
func (r *ProductionRepo) Create(ctx context.Context, p *entity.Production) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	query := `
		INSERT INTO productions (id, name, city, legal_name, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.City, p.LegalName, p.TaxID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production: %w", err)
	}
	return nil
}

// GetByID obtiene una production por ID.
func (r *ProductionRepo) GetByID(ctx context.Context, id string) (*entity.Production, error) {
	query := `
		SELECT id, name, city, legal_name, tax_id, created_at, updated_at
		FROM productions WHERE id = $1`
	var p entity.Production
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.City, &p.LegalName, &p.TaxID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production: %w", err)
	}
	return &p, nil
}

// Delete borra la production. Si quedan usuarios la FK RESTRICT lo impide (ErrConflict).
func (r *ProductionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM productions WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("production %s tiene usuarios: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete production: %w", err)
	}
	return nil
}
