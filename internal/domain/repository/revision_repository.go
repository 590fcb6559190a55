package repository

import (
	"context"
	"time"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// RevisionFilter filtra el listado de revisiones. Los campos vacíos no filtran.
type RevisionFilter struct {
	ProductionID string
	LocationID   string
	AuthorID     string
	Status       entity.RevisionStatus
	RevisionDate *time.Time
	Limit        int
	Offset       int
}

// RevisionRepository define el puerto de persistencia para Revision.
type RevisionRepository interface {
	// Create devuelve ErrDuplicate si ya existe una revisión para (sede, fecha).
	Create(ctx context.Context, r *entity.Revision) error
	GetByID(ctx context.Context, id string) (*entity.Revision, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Revision, error)
	// FindAnchor devuelve la última revisión completed de la sede con fecha estrictamente anterior
	// a before, o nil si no hay.
	FindAnchor(ctx context.Context, locationID string, before time.Time) (*entity.Revision, error)
	// Update persiste Status, Comments y UpdatedAt.
	Update(ctx context.Context, r *entity.Revision) error
	// Delete borra la revisión; líneas y reports se borran en cascada.
	Delete(ctx context.Context, id string) error
	// ProductionOf devuelve el tenant dueño de la revisión (vía su sede).
	ProductionOf(ctx context.Context, id string) (string, error)
	List(ctx context.Context, f RevisionFilter) ([]*entity.Revision, error)
}

// RevisionItemRepository define el puerto de las líneas de conteo de una revisión.
type RevisionItemRepository interface {
	ListIngredientItems(ctx context.Context, revisionID string) ([]*entity.RevisionIngredientItem, error)
	ListProductItems(ctx context.Context, revisionID string) ([]*entity.RevisionProductItem, error)
	// UpsertIngredientItem crea o reemplaza la línea (revisión, ingrediente).
	UpsertIngredientItem(ctx context.Context, it *entity.RevisionIngredientItem) error
	// UpsertProductItem crea o reemplaza la línea (revisión, producto).
	UpsertProductItem(ctx context.Context, it *entity.RevisionProductItem) error
}

// RevisionReportRepository define el puerto de los resultados del motor.
type RevisionReportRepository interface {
	// UpsertBatch crea o reemplaza los reports por (revisión, ingrediente).
	UpsertBatch(ctx context.Context, reports []*entity.RevisionReport) error
	// ListByRevision devuelve los reports ordenados por % descendente; status vacío no filtra.
	ListByRevision(ctx context.Context, revisionID string, status entity.ReportStatus) ([]*entity.RevisionReport, error)
	CountByRevision(ctx context.Context, revisionID string) (int, error)
}
