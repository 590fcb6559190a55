package revision

import (
	"context"
	"fmt"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	rules "github.com/jhoicas/revisiones-api/internal/domain/revision"
)

// UpsertItems crea o reemplaza líneas de conteo. Sólo en draft, por el autor o un rol de gestión.
// Todas las líneas se validan antes de escribir y se guardan en una transacción.
func (uc *UseCase) UpsertItems(ctx context.Context, actor entity.Actor, id string, in dto.UpsertItemsRequest) error {
	return uc.tx.Run(ctx, func(repos repository.Repositories) error {
		rev, err := load(ctx, repos, actor, id, true)
		if err != nil {
			return err
		}
		if err := rules.Check(rules.ActionEditItems, actor, rev); err != nil {
			return err
		}

		ingItems := make([]*entity.RevisionIngredientItem, 0, len(in.Ingredients))
		for _, line := range in.Ingredients {
			ing, err := repos.Ingredients.GetByID(ctx, line.IngredientID)
			if err != nil {
				return err
			}
			if ing == nil || ing.ProductionID != actor.ProductionID {
				return fmt.Errorf("ingrediente %s: %w", line.IngredientID, domain.ErrNotFound)
			}
			qty, clamped := rules.NormalizeQuantity(line.ActualQuantity)
			if clamped || qty.IsNegative() {
				return fmt.Errorf("cantidad %s de %s: %w", line.ActualQuantity, ing.Name, domain.ErrInvalidInput)
			}
			ingItems = append(ingItems, &entity.RevisionIngredientItem{
				RevisionID: rev.ID, IngredientID: ing.ID, ActualQuantity: qty, Comments: line.Comments,
			})
		}

		prodItems := make([]*entity.RevisionProductItem, 0, len(in.Products))
		for _, line := range in.Products {
			p, err := repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p == nil || p.ProductionID != actor.ProductionID {
				return fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
			}
			if line.ActualQuantity < 0 {
				return fmt.Errorf("cantidad %d de %s: %w", line.ActualQuantity, p.Name, domain.ErrInvalidInput)
			}
			prodItems = append(prodItems, &entity.RevisionProductItem{
				RevisionID: rev.ID, ProductID: p.ID, ActualQuantity: line.ActualQuantity, Comments: line.Comments,
			})
		}

		for _, it := range ingItems {
			if err := repos.Items.UpsertIngredientItem(ctx, it); err != nil {
				return err
			}
		}
		for _, it := range prodItems {
			if err := repos.Items.UpsertProductItem(ctx, it); err != nil {
				return err
			}
		}
		uc.log.Info().Str("revision_id", rev.ID).Int("ingredients", len(ingItems)).Int("products", len(prodItems)).Msg("conteo actualizado")
		return nil
	})
}
