// Package tenant agrupa operaciones sobre la production completa.
package tenant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

// UseCase implementa el borrado de un tenant.
type UseCase struct {
	tx  repository.TxRunner
	log zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx repository.TxRunner, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, log: log.With().Str("component", "tenant").Logger()}
}

// DeletionResult resume un borrado de production.
type DeletionResult struct {
	ProductionID string
	UsersDeleted int64
}

// DeleteProduction borra los usuarios del tenant y después la production, en una transacción.
// El store cascada sedes, catálogo, movimientos y revisiones. Sólo admin del propio tenant.
func (uc *UseCase) DeleteProduction(ctx context.Context, actor entity.Actor, productionID string) (*DeletionResult, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if actor.ProductionID != productionID {
		return nil, domain.ErrNotFound
	}
	if actor.Role != entity.RoleAdmin {
		return nil, &domain.PermissionError{Action: "borrar la production", Reason: "requiere rol admin"}
	}

	out := &DeletionResult{ProductionID: productionID}
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Productions.GetByID(ctx, productionID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if out.UsersDeleted, err = repos.Users.DeleteByProduction(ctx, productionID); err != nil {
			return fmt.Errorf("borrar usuarios: %w", err)
		}
		if err := repos.Productions.Delete(ctx, productionID); err != nil {
			return fmt.Errorf("borrar production: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("production_id", productionID).Int64("users_deleted", out.UsersDeleted).
		Str("actor_id", actor.UserID).Msg("production eliminada")
	return out, nil
}
