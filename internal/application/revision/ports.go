package revision

import (
	"context"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

// Locker serializa las operaciones que escriben reports o inventario de una sede.
// release debe llamarse exactamente una vez; llamadas extra no tienen efecto.
type Locker interface {
	Acquire(ctx context.Context, locationID string) (release func(), err error)
}

// Reconciler es el motor de conciliación visto desde la máquina de estados.
type Reconciler interface {
	Reconcile(ctx context.Context, repos repository.Repositories, productionID string, rev *entity.Revision) (*reconciliation.Result, error)
}

var _ Reconciler = (*reconciliation.Engine)(nil)

// ReportRenderer genera el informe imprimible (PDF) de una revisión.
type ReportRenderer interface {
	RenderRevision(ctx context.Context, locationName string, detail *dto.RevisionDetailResponse, summary *dto.SummaryResponse) ([]byte, error)
}
