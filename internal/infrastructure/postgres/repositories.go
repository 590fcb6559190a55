package postgres

import "github.com/jhoicas/revisiones-api/internal/domain/repository"

// NewRepositories arma todos los adaptadores sobre la misma conexión (pool o tx).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Productions: NewProductionRepository(q),
		Users:       NewUserRepository(q),
		Locations:   NewLocationRepository(q),
		Ingredients: NewIngredientRepository(q),
		Products:    NewProductRepository(q),
		Recipes:     NewRecipeRepository(q),
		Sales:       NewSalesRepository(q),
		Incoming:    NewIncomingRepository(q),
		Inventory:   NewInventoryLevelRepository(q),
		Revisions:   NewRevisionRepository(q),
		Items:       NewRevisionItemRepository(q),
		Reports:     NewRevisionReportRepository(q),
	}
}
