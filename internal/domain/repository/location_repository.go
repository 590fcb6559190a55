package repository

import (
	"context"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (sede).
type LocationRepository interface {
	Create(ctx context.Context, l *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByProduction(ctx context.Context, productionID string) ([]*entity.Location, error)
}
