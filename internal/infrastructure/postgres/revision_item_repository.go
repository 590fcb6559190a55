package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var (
	_ repository.RevisionItemRepository   = (*RevisionItemRepo)(nil)
	_ repository.RevisionReportRepository = (*RevisionReportRepo)(nil)
)

// RevisionItemRepo implementación de las líneas de conteo sobre PostgreSQL.
type RevisionItemRepo struct {
	q Querier
}

// NewRevisionItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRevisionItemRepository(q Querier) *RevisionItemRepo {
	return &RevisionItemRepo{q: q}
}

func (r *RevisionItemRepo) ListIngredientItems(ctx context.Context, revisionID string) ([]*entity.RevisionIngredientItem, error) {
	query := `
		SELECT id, revision_id, ingredient_id, actual_quantity, comments, created_at
		FROM revision_ingredient_items WHERE revision_id = $1 ORDER BY ingredient_id`
	rows, err := r.q.Query(ctx, query, revisionID)
	if err != nil {
		return nil, fmt.Errorf("list ingredient items: %w", err)
	}
	defer rows.Close()
	var list []*entity.RevisionIngredientItem
	for rows.Next() {
		var it entity.RevisionIngredientItem
		if err := rows.Scan(&it.ID, &it.RevisionID, &it.IngredientID, &it.ActualQuantity, &it.Comments, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingredient item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *RevisionItemRepo) ListProductItems(ctx context.Context, revisionID string) ([]*entity.RevisionProductItem, error) {
	query := `
		SELECT id, revision_id, product_id, actual_quantity, comments, created_at
		FROM revision_product_items WHERE revision_id = $1 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, revisionID)
	if err != nil {
		return nil, fmt.Errorf("list product items: %w", err)
	}
	defer rows.Close()
	var list []*entity.RevisionProductItem
	for rows.Next() {
		var it entity.RevisionProductItem
		if err := rows.Scan(&it.ID, &it.RevisionID, &it.ProductID, &it.ActualQuantity, &it.Comments, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *RevisionItemRepo) UpsertIngredientItem(ctx context.Context, it *entity.RevisionIngredientItem) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	query := `
		INSERT INTO revision_ingredient_items (id, revision_id, ingredient_id, actual_quantity, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (revision_id, ingredient_id)
		DO UPDATE SET actual_quantity = EXCLUDED.actual_quantity, comments = EXCLUDED.comments
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, it.ID, it.RevisionID, it.IngredientID, it.ActualQuantity, it.Comments).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return writeErr("upsert ingredient item", err)
	}
	return nil
}

func (r *RevisionItemRepo) UpsertProductItem(ctx context.Context, it *entity.RevisionProductItem) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	query := `
		INSERT INTO revision_product_items (id, revision_id, product_id, actual_quantity, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (revision_id, product_id)
		DO UPDATE SET actual_quantity = EXCLUDED.actual_quantity, comments = EXCLUDED.comments
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, it.ID, it.RevisionID, it.ProductID, it.ActualQuantity, it.Comments).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return writeErr("upsert product item", err)
	}
	return nil
}

// RevisionReportRepo implementación de los resultados del motor sobre PostgreSQL.
type RevisionReportRepo struct {
	q Querier
}

// NewRevisionReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRevisionReportRepository(q Querier) *RevisionReportRepo {
	return &RevisionReportRepo{q: q}
}

// UpsertBatch escribe los reports uno a uno sobre la misma conexión; dentro de una tx es atómico.
func (r *RevisionReportRepo) UpsertBatch(ctx context.Context, reports []*entity.RevisionReport) error {
	query := `
		INSERT INTO revision_reports
			(id, revision_id, ingredient_id, expected_quantity, actual_quantity, difference, percentage, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (revision_id, ingredient_id) DO UPDATE SET
			expected_quantity = EXCLUDED.expected_quantity,
			actual_quantity   = EXCLUDED.actual_quantity,
			difference        = EXCLUDED.difference,
			percentage        = EXCLUDED.percentage,
			status            = EXCLUDED.status
		RETURNING id, created_at`
	for _, rep := range reports {
		if rep.ID == "" {
			rep.ID = uuid.New().String()
		}
		err := r.q.QueryRow(ctx, query, rep.ID, rep.RevisionID, rep.IngredientID, rep.ExpectedQuantity,
			rep.ActualQuantity, rep.Difference, rep.Percentage, string(rep.Status)).Scan(&rep.ID, &rep.CreatedAt)
		if err != nil {
			return writeErr(fmt.Sprintf("upsert report %s", rep.IngredientID), err)
		}
	}
	return nil
}

// ListByRevision devuelve los reports ordenados por % descendente.
func (r *RevisionReportRepo) ListByRevision(ctx context.Context, revisionID string, status entity.ReportStatus) ([]*entity.RevisionReport, error) {
	query := `
		SELECT id, revision_id, ingredient_id, expected_quantity, actual_quantity, difference, percentage, status, created_at
		FROM revision_reports
		WHERE revision_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY percentage DESC, ingredient_id`
	rows, err := r.q.Query(ctx, query, revisionID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	var list []*entity.RevisionReport
	for rows.Next() {
		var rep entity.RevisionReport
		var st string
		if err := rows.Scan(&rep.ID, &rep.RevisionID, &rep.IngredientID, &rep.ExpectedQuantity, &rep.ActualQuantity,
			&rep.Difference, &rep.Percentage, &st, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.Status = entity.ReportStatus(st)
		list = append(list, &rep)
	}
	return list, rows.Err()
}

func (r *RevisionReportRepo) CountByRevision(ctx context.Context, revisionID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM revision_reports WHERE revision_id = $1`, revisionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
