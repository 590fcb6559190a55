package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var _ repository.RevisionRepository = (*RevisionRepo)(nil)

// RevisionRepo implementación del puerto RevisionRepository sobre PostgreSQL.
type RevisionRepo struct {
	q Querier
}

// NewRevisionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRevisionRepository(q Querier) *RevisionRepo {
	return &RevisionRepo{q: q}
}

const revisionColumns = `r.id, r.location_id, r.author_id, r.revision_date, r.status, r.comments, r.created_at, r.updated_at`

func scanRevision(row pgx.Row) (*entity.Revision, error) {
	var rev entity.Revision
	var status string
	if err := row.Scan(&rev.ID, &rev.LocationID, &rev.AuthorID, &rev.RevisionDate, &status,
		&rev.Comments, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return nil, err
	}
	rev.Status = entity.RevisionStatus(status)
	rev.RevisionDate = time.Date(rev.RevisionDate.Year(), rev.RevisionDate.Month(), rev.RevisionDate.Day(), 0, 0, 0, 0, time.UTC)
	return &rev, nil
}

// Create persiste una revisión. ErrDuplicate si ya hay una para (sede, fecha).
func (r *RevisionRepo) Create(ctx context.Context, rev *entity.Revision) error {
	if rev.ID == "" {
		rev.ID = uuid.New().String()
	}
	now := time.Now()
	rev.CreatedAt, rev.UpdatedAt = now, now
	query := `
		INSERT INTO revisions (id, location_id, author_id, revision_date, status, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, rev.ID, rev.LocationID, rev.AuthorID, rev.RevisionDate,
		string(rev.Status), rev.Comments, rev.CreatedAt, rev.UpdatedAt)
	if err != nil {
		return writeErr("insert revision", err)
	}
	return nil
}

func (r *RevisionRepo) get(ctx context.Context, id string, lock bool) (*entity.Revision, error) {
	query := `SELECT ` + revisionColumns + ` FROM revisions r WHERE r.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	rev, err := scanRevision(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return rev, nil
}

// GetByID obtiene una revisión por ID.
func (r *RevisionRepo) GetByID(ctx context.Context, id string) (*entity.Revision, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la revisión bloqueando la fila hasta el fin de la transacción.
func (r *RevisionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Revision, error) {
	return r.get(ctx, id, true)
}

// FindAnchor devuelve la última revisión completed de la sede anterior a before.
func (r *RevisionRepo) FindAnchor(ctx context.Context, locationID string, before time.Time) (*entity.Revision, error) {
	query := `
		SELECT ` + revisionColumns + `
		FROM revisions r
		WHERE r.location_id = $1 AND r.status = $2 AND r.revision_date < $3
		ORDER BY r.revision_date DESC
		LIMIT 1`
	rev, err := scanRevision(r.q.QueryRow(ctx, query, locationID, string(entity.RevisionCompleted), before))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find anchor: %w", err)
	}
	return rev, nil
}

// Update persiste estado y comentarios.
func (r *RevisionRepo) Update(ctx context.Context, rev *entity.Revision) error {
	rev.UpdatedAt = time.Now()
	query := `UPDATE revisions SET status = $2, comments = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, rev.ID, string(rev.Status), rev.Comments, rev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update revision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la revisión; líneas y reports caen por ON DELETE CASCADE.
func (r *RevisionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM revisions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete revision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ProductionOf devuelve el tenant dueño de la revisión.
func (r *RevisionRepo) ProductionOf(ctx context.Context, id string) (string, error) {
	query := `
		SELECT l.production_id
		FROM revisions r JOIN locations l ON l.id = r.location_id
		WHERE r.id = $1`
	var productionID string
	if err := r.q.QueryRow(ctx, query, id).Scan(&productionID); err != nil {
		if isNotFound(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("production of revision: %w", err)
	}
	return productionID, nil
}

// List lista revisiones del tenant por fecha descendente aplicando los filtros no vacíos.
func (r *RevisionRepo) List(ctx context.Context, f repository.RevisionFilter) ([]*entity.Revision, error) {
	var (
		where = []string{"l.production_id = $1"}
		args  = []any{f.ProductionID}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LocationID != "" {
		add("r.location_id = $%d", f.LocationID)
	}
	if f.AuthorID != "" {
		add("r.author_id = $%d", f.AuthorID)
	}
	if f.Status != "" {
		add("r.status = $%d", string(f.Status))
	}
	if f.RevisionDate != nil {
		add("r.revision_date = $%d", *f.RevisionDate)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM revisions r JOIN locations l ON l.id = r.location_id
		WHERE %s
		ORDER BY r.revision_date DESC, r.created_at DESC
		LIMIT $%d OFFSET $%d`, revisionColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		list = append(list, rev)
	}
	return list, rows.Err()
}
