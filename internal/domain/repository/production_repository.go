package repository

import (
	"context"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// ProductionRepository define el puerto de persistencia para Production (tenant).
type ProductionRepository interface {
	Create(ctx context.Context, p *entity.Production) error
	GetByID(ctx context.Context, id string) (*entity.Production, error)
	// Delete borra la production. El store cascada a sedes, catálogo y revisiones,
	// pero no a usuarios: se borran antes con UserRepository.DeleteByProduction.
	Delete(ctx context.Context, id string) error
}
