package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	"github.com/jhoicas/revisiones-api/internal/domain/revision"
)

// UseCase expone el inventario actual por sede y el registro de entradas y ventas, que son las
// fuentes de movimiento que consume el motor de conciliación.
type UseCase struct {
	repos repository.Repositories
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso con repositorios sobre el pool (no transaccionales).
func NewUseCase(repos repository.Repositories, log zerolog.Logger) *UseCase {
	return &UseCase{repos: repos, log: log.With().Str("component", "inventory").Logger()}
}

// location valida que la sede exista y sea del tenant del actor.
func (uc *UseCase) location(ctx context.Context, actor entity.Actor, locationID string) (*entity.Location, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	loc, err := uc.repos.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.ProductionID != actor.ProductionID {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

// CurrentInventory devuelve la proyección de cada ingrediente del catálogo en la sede.
// Los ingredientes sin proyección aparecen con cantidad 0 y sin UpdatedAt.
func (uc *UseCase) CurrentInventory(ctx context.Context, actor entity.Actor, locationID string) (*dto.LocationInventoryResponse, error) {
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return nil, err
	}
	ingredients, err := uc.repos.Ingredients.ListByProduction(ctx, actor.ProductionID)
	if err != nil {
		return nil, fmt.Errorf("listar ingredientes: %w", err)
	}
	stock, err := uc.repos.Inventory.ListByLocation(ctx, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("listar inventario: %w", err)
	}
	byIngredient := make(map[string]*entity.IngredientInventory, len(stock))
	for _, s := range stock {
		byIngredient[s.IngredientID] = s
	}

	out := &dto.LocationInventoryResponse{LocationID: loc.ID, LocationName: loc.Name, Items: make([]dto.InventoryLineDTO, 0, len(ingredients))}
	for _, ing := range ingredients {
		line := dto.InventoryLineDTO{IngredientID: ing.ID, IngredientName: ing.Name, Unit: ing.Unit}
		if s, ok := byIngredient[ing.ID]; ok {
			line.Quantity = s.Quantity
			updated := s.UpdatedAt
			line.UpdatedAt = &updated
		}
		out.Items = append(out.Items, line)
	}
	return out, nil
}

// RegisterIncoming registra una entrada de ingrediente. Sólo roles de gestión.
func (uc *UseCase) RegisterIncoming(ctx context.Context, actor entity.Actor, in dto.RegisterIncomingRequest) (*entity.Incoming, error) {
	if actor.Authenticated() && !actor.Role.IsManagerial() {
		return nil, &domain.PermissionError{Action: "registrar entradas", Reason: "requiere rol admin, manager o accounting"}
	}
	loc, err := uc.location(ctx, actor, in.LocationID)
	if err != nil {
		return nil, err
	}
	ing, err := uc.repos.Ingredients.GetByID(ctx, in.IngredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.ProductionID != actor.ProductionID {
		return nil, domain.ErrNotFound
	}
	date, err := time.Parse(dto.DateLayout, in.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	qty, clamped := revision.NormalizeQuantity(in.Quantity)
	if clamped || !qty.IsPositive() {
		return nil, fmt.Errorf("cantidad %s: %w", in.Quantity, domain.ErrInvalidInput)
	}

	entry := &entity.Incoming{
		ID:           uuid.New().String(),
		IngredientID: ing.ID,
		LocationID:   loc.ID,
		Date:         date,
		Quantity:     qty,
		Comment:      in.Comment,
	}
	if err := uc.repos.Incoming.Create(ctx, entry); err != nil {
		return nil, err
	}
	uc.log.Info().Str("location_id", loc.ID).Str("ingredient_id", ing.ID).Str("quantity", qty.String()).Msg("entrada registrada")
	return entry, nil
}

// RegisterSale registra ventas de un producto en una sede. Sólo roles de gestión.
func (uc *UseCase) RegisterSale(ctx context.Context, actor entity.Actor, in dto.RegisterSaleRequest) (*entity.Sales, error) {
	if actor.Authenticated() && !actor.Role.IsManagerial() {
		return nil, &domain.PermissionError{Action: "registrar ventas", Reason: "requiere rol admin, manager o accounting"}
	}
	loc, err := uc.location(ctx, actor, in.LocationID)
	if err != nil {
		return nil, err
	}
	p, err := uc.repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ProductionID != actor.ProductionID {
		return nil, domain.ErrNotFound
	}
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	date, err := time.Parse(dto.DateLayout, in.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	sale := &entity.Sales{
		ID:         uuid.New().String(),
		ProductID:  p.ID,
		LocationID: loc.ID,
		Date:       date,
		ExternalID: in.ExternalID,
		Quantity:   in.Quantity,
	}
	if err := uc.repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}
