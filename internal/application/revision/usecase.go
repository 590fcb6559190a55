// Package revision orquesta el ciclo de vida de una revisión: permisos, transiciones de estado,
// ejecución del motor y carry-forward, todo dentro de una transacción y con la sede bloqueada.
package revision

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/application/inventory"
	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	rules "github.com/jhoicas/revisiones-api/internal/domain/revision"
)

var tracer = otel.Tracer("revisiones-api/revision")

// UseCase implementa las operaciones sobre revisiones.
type UseCase struct {
	repos   repository.Repositories // sobre el pool, para lecturas
	tx      repository.TxRunner
	engine  Reconciler
	locker  Locker
	timeout time.Duration
	log     zerolog.Logger
}

// NewUseCase construye el caso de uso. timeout acota calculate/approve (0 = sin límite propio).
func NewUseCase(
	repos repository.Repositories,
	tx repository.TxRunner,
	engine Reconciler,
	locker Locker,
	timeout time.Duration,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		repos:   repos,
		tx:      tx,
		engine:  engine,
		locker:  locker,
		timeout: timeout,
		log:     log.With().Str("component", "revision").Logger(),
	}
}

// Outcome es el resultado de calculate/approve.
type Outcome struct {
	Revision       *entity.Revision
	Result         *reconciliation.Result // nil si no se ejecutó el motor
	CarriedForward int
}

// visible: los roles de gestión ven todo el tenant; staff sólo sus propios borradores.
func visible(actor entity.Actor, rev *entity.Revision) bool {
	if actor.Role.IsManagerial() {
		return true
	}
	return rev.AuthorID == actor.UserID && rev.Status == entity.RevisionDraft
}

// load obtiene la revisión aplicando tenant y visibilidad. Cualquier revisión fuera del alcance del
// actor se reporta como ErrNotFound. forUpdate bloquea la fila (sólo dentro de una transacción).
func load(ctx context.Context, repos repository.Repositories, actor entity.Actor, id string, forUpdate bool) (*entity.Revision, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	var (
		rev *entity.Revision
		err error
	)
	if forUpdate {
		rev, err = repos.Revisions.GetForUpdate(ctx, id)
	} else {
		rev, err = repos.Revisions.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, domain.ErrNotFound
	}
	loc, err := repos.Locations.GetByID(ctx, rev.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.ProductionID != actor.ProductionID || !visible(actor, rev) {
		return nil, domain.ErrNotFound
	}
	return rev, nil
}

func (uc *UseCase) span(ctx context.Context, name string, actor entity.Actor, id string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("revision.id", id),
		attribute.String("actor.role", string(actor.Role)),
	))
}

// Create crea una revisión en draft con el actor como autor.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateRevisionRequest) (*entity.Revision, error) {
	if err := rules.Check(rules.ActionCreate, actor, nil); err != nil {
		return nil, err
	}
	date, err := time.Parse(dto.DateLayout, in.RevisionDate)
	if err != nil {
		return nil, fmt.Errorf("revision_date: %w", domain.ErrInvalidInput)
	}
	loc, err := uc.repos.Locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.ProductionID != actor.ProductionID {
		return nil, domain.ErrNotFound
	}
	rev := &entity.Revision{
		ID:           uuid.New().String(),
		LocationID:   loc.ID,
		AuthorID:     actor.UserID,
		RevisionDate: rules.DateOnly(date),
		Status:       entity.RevisionDraft,
		Comments:     in.Comments,
	}
	if err := uc.repos.Revisions.Create(ctx, rev); err != nil {
		return nil, err
	}
	uc.log.Info().Str("revision_id", rev.ID).Str("location_id", rev.LocationID).Str("author_id", actor.UserID).Msg("revisión creada")
	return rev, nil
}

// transition aplica una transición sin motor (submit, reject) dentro de una transacción.
func (uc *UseCase) transition(ctx context.Context, actor entity.Actor, id string, action rules.Action, mutate func(rev *entity.Revision)) (*entity.Revision, error) {
	ctx, span := uc.span(ctx, "revision."+string(action), actor, id)
	defer span.End()

	var out *entity.Revision
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		rev, err := load(ctx, repos, actor, id, true)
		if err != nil {
			return err
		}
		if err := rules.Check(action, actor, rev); err != nil {
			return err
		}
		from := rev.Status
		rev.Status = rules.NextStatus(action, rev.Status)
		if mutate != nil {
			mutate(rev)
		}
		if err := repos.Revisions.Update(ctx, rev); err != nil {
			return err
		}
		uc.log.Info().Str("revision_id", rev.ID).Str("from", string(from)).Str("to", string(rev.Status)).
			Str("actor_id", actor.UserID).Msgf("revisión: %s", action.Verb())
		out = rev
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// Submit envía la revisión a procesamiento. Sólo el autor, sólo desde draft.
func (uc *UseCase) Submit(ctx context.Context, actor entity.Actor, id string) (*entity.Revision, error) {
	return uc.transition(ctx, actor, id, rules.ActionSubmit, nil)
}

// Reject devuelve la revisión a draft y anexa el motivo a los comentarios.
func (uc *UseCase) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*entity.Revision, error) {
	return uc.transition(ctx, actor, id, rules.ActionReject, func(rev *entity.Revision) {
		rev.Comments = rules.AppendRejection(rev.Comments, reason)
	})
}

// withLocation ejecuta fn con la sede de la revisión bloqueada y el timeout del motor aplicado.
func (uc *UseCase) withLocation(ctx context.Context, actor entity.Actor, id string, action rules.Action, fn func(ctx context.Context) error) error {
	// Chequeo previo sin lock: evita esperar la sede para una petición que va a fallar igual.
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return err
	}
	if err := rules.Authorize(action, actor, rev); err != nil {
		return err
	}
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}
	release, err := uc.locker.Acquire(ctx, rev.LocationID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// Calculate ejecuta el motor. draft pasa a processing; processing y completed conservan su estado,
// y sobre una completed se vuelve a aplicar el carry-forward. Un fallo del motor no cambia nada.
func (uc *UseCase) Calculate(ctx context.Context, actor entity.Actor, id string) (*Outcome, error) {
	ctx, span := uc.span(ctx, "revision.calculate", actor, id)
	defer span.End()

	out := &Outcome{}
	err := uc.withLocation(ctx, actor, id, rules.ActionCalculate, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(repos repository.Repositories) error {
			rev, err := load(ctx, repos, actor, id, true)
			if err != nil {
				return err
			}
			if err := rules.Check(rules.ActionCalculate, actor, rev); err != nil {
				return err
			}
			res, err := uc.engine.Reconcile(ctx, repos, actor.ProductionID, rev)
			out.Result = res
			if err != nil {
				return err
			}
			from := rev.Status
			rev.Status = rules.NextStatus(rules.ActionCalculate, rev.Status)
			if rev.Status != from {
				if err := repos.Revisions.Update(ctx, rev); err != nil {
					return err
				}
			}
			if rev.Status == entity.RevisionCompleted {
				if out.CarriedForward, err = inventory.CarryForward(ctx, repos, rev); err != nil {
					return err
				}
			}
			uc.log.Info().Str("revision_id", rev.ID).Str("from", string(from)).Str("to", string(rev.Status)).
				Int("reports", res.ReportsWritten).Int("carried_forward", out.CarriedForward).Msg("revisión calculada")
			out.Revision = rev
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	return out, nil
}

// Approve completa la revisión. Si no tiene reports ejecuta antes el motor; si falla, no se aprueba.
// Tras completar aplica el carry-forward en la misma transacción.
func (uc *UseCase) Approve(ctx context.Context, actor entity.Actor, id string) (*Outcome, error) {
	ctx, span := uc.span(ctx, "revision.approve", actor, id)
	defer span.End()

	out := &Outcome{}
	err := uc.withLocation(ctx, actor, id, rules.ActionApprove, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(repos repository.Repositories) error {
			rev, err := load(ctx, repos, actor, id, true)
			if err != nil {
				return err
			}
			if err := rules.Check(rules.ActionApprove, actor, rev); err != nil {
				return err
			}
			n, err := repos.Reports.CountByRevision(ctx, rev.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				res, err := uc.engine.Reconcile(ctx, repos, actor.ProductionID, rev)
				out.Result = res
				if err != nil {
					return err
				}
			}
			from := rev.Status
			rev.Status = rules.NextStatus(rules.ActionApprove, rev.Status)
			if err := repos.Revisions.Update(ctx, rev); err != nil {
				return err
			}
			if out.CarriedForward, err = inventory.CarryForward(ctx, repos, rev); err != nil {
				return err
			}
			uc.log.Info().Str("revision_id", rev.ID).Str("from", string(from)).
				Int("carried_forward", out.CarriedForward).Str("actor_id", actor.UserID).Msg("revisión aprobada")
			out.Revision = rev
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	return out, nil
}

// Delete borra la revisión con sus líneas y reports. Sólo roles de gestión, en cualquier estado.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	return uc.withLocation(ctx, actor, id, rules.ActionDelete, func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(repos repository.Repositories) error {
			rev, err := load(ctx, repos, actor, id, true)
			if err != nil {
				return err
			}
			if err := rules.Check(rules.ActionDelete, actor, rev); err != nil {
				return err
			}
			if err := repos.Revisions.Delete(ctx, rev.ID); err != nil {
				return err
			}
			uc.log.Info().Str("revision_id", rev.ID).Str("actor_id", actor.UserID).Msg("revisión eliminada")
			return nil
		})
	})
}

// MarkSeen pasa una revisión submitted a processing cuando la abre un rol de gestión.
// En cualquier otro caso no hace nada. Devuelve la revisión con el estado resultante.
func (uc *UseCase) MarkSeen(ctx context.Context, actor entity.Actor, id string) (*entity.Revision, error) {
	rev, err := load(ctx, uc.repos, actor, id, false)
	if err != nil {
		return nil, err
	}
	if !rules.AdvancesOnView(actor.Role, rev.Status) {
		return rev, nil
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		locked, err := load(ctx, repos, actor, id, true)
		if err != nil {
			return err
		}
		// Otra petición pudo moverla entre la lectura y el lock.
		if !rules.AdvancesOnView(actor.Role, locked.Status) {
			rev = locked
			return nil
		}
		locked.Status = entity.RevisionProcessing
		if err := repos.Revisions.Update(ctx, locked); err != nil {
			return err
		}
		rev = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}
