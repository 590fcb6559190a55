package repository

import (
	"context"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	ListByProduction(ctx context.Context, productionID string) ([]*entity.User, error)
	// DeleteByProduction borra los usuarios del tenant y devuelve cuántos se borraron.
	DeleteByProduction(ctx context.Context, productionID string) (int64, error)
}
