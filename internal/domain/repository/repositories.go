package repository

import "context"

// Repositories agrupa los puertos atados a una misma conexión o transacción.
type Repositories struct {
	Productions ProductionRepository
	Users       UserRepository
	Locations   LocationRepository
	Ingredients IngredientRepository
	Products    ProductRepository
	Recipes     RecipeRepository
	Sales       SalesRepository
	Incoming    IncomingRepository
	Inventory   IngredientInventoryRepository
	Revisions   RevisionRepository
	Items       RevisionItemRepository
	Reports     RevisionReportRepository
}

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a ella.
// Si fn devuelve error se hace rollback; si no, commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
