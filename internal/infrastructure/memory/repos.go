package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	"github.com/jhoicas/revisiones-api/internal/domain/revision"
)

var (
	_ repository.ProductionRepository          = productionRepo{}
	_ repository.UserRepository                = userRepo{}
	_ repository.LocationRepository            = locationRepo{}
	_ repository.IngredientRepository          = ingredientRepo{}
	_ repository.ProductRepository             = productRepo{}
	_ repository.RecipeRepository              = recipeRepo{}
	_ repository.SalesRepository               = salesRepo{}
	_ repository.IncomingRepository            = incomingRepo{}
	_ repository.IngredientInventoryRepository = inventoryRepo{}
	_ repository.RevisionRepository            = revisionRepo{}
	_ repository.RevisionItemRepository        = itemRepo{}
	_ repository.RevisionReportRepository      = reportRepo{}
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func inRange(t, from, to time.Time) bool {
	day := revision.DateOnly(t)
	return !day.Before(from) && !day.After(to)
}

// ── Production ────────────────────────────────────────────────────────────────

type productionRepo struct{ v view }

func (r productionRepo) Create(_ context.Context, p *entity.Production) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&p.ID)
		if _, ok := d.productions[p.ID]; ok {
			return domain.ErrDuplicate
		}
		p.CreatedAt, p.UpdatedAt = now, now
		d.productions[p.ID] = *p
		return nil
	})
}

func (r productionRepo) GetByID(_ context.Context, id string) (*entity.Production, error) {
	var out *entity.Production
	r.v.read(func(d *data) {
		if p, ok := d.productions[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// Delete replica las FK del esquema: usuarios con RESTRICT, el resto en cascada.
func (r productionRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(d *data, _ time.Time) error {
		for _, u := range d.users {
			if u.ProductionID == id {
				return fmt.Errorf("production %s tiene usuarios: %w", id, domain.ErrConflict)
			}
		}
		locs := map[string]bool{}
		for lid, l := range d.locations {
			if l.ProductionID == id {
				locs[lid] = true
				delete(d.locations, lid)
			}
		}
		for rid, rev := range d.revisions {
			if locs[rev.LocationID] {
				deleteRevision(d, rid)
			}
		}
		for k, inv := range d.inventory {
			if locs[inv.LocationID] {
				delete(d.inventory, k)
			}
		}
		sales := d.sales[:0]
		for _, s := range d.sales {
			if !locs[s.LocationID] {
				sales = append(sales, s)
			}
		}
		d.sales = sales
		incoming := d.incoming[:0]
		for _, in := range d.incoming {
			if !locs[in.LocationID] {
				incoming = append(incoming, in)
			}
		}
		d.incoming = incoming
		for pid, p := range d.products {
			if p.ProductionID == id {
				delete(d.products, pid)
			}
		}
		for k, rec := range d.recipes {
			if _, ok := d.products[rec.ProductID]; !ok {
				delete(d.recipes, k)
			}
		}
		for iid, i := range d.ingredients {
			if i.ProductionID == id {
				delete(d.ingredients, iid)
			}
		}
		delete(d.productions, id)
		return nil
	})
}

// ── User ──────────────────────────────────────────────────────────────────────

type userRepo struct{ v view }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&u.ID)
		for _, other := range d.users {
			if other.ProductionID == u.ProductionID && other.Username == u.Username {
				return domain.ErrDuplicate
			}
		}
		u.CreatedAt = now
		d.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(d *data) {
		if u, ok := d.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r userRepo) ListByProduction(_ context.Context, productionID string) ([]*entity.User, error) {
	var list []*entity.User
	r.v.read(func(d *data) {
		for _, u := range d.users {
			if u.ProductionID == productionID {
				u := u
				list = append(list, &u)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

func (r userRepo) DeleteByProduction(_ context.Context, productionID string) (int64, error) {
	var n int64
	err := r.v.write(func(d *data, _ time.Time) error {
		for id, u := range d.users {
			if u.ProductionID == productionID {
				delete(d.users, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── Location ──────────────────────────────────────────────────────────────────

type locationRepo struct{ v view }

func (r locationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&l.ID)
		if _, ok := d.productions[l.ProductionID]; !ok {
			return fmt.Errorf("production %s: %w", l.ProductionID, domain.ErrNotFound)
		}
		l.CreatedAt = now
		d.locations[l.ID] = *l
		return nil
	})
}

func (r locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.v.read(func(d *data) {
		if l, ok := d.locations[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r locationRepo) ListByProduction(_ context.Context, productionID string) ([]*entity.Location, error) {
	var list []*entity.Location
	r.v.read(func(d *data) {
		for _, l := range d.locations {
			if l.ProductionID == productionID {
				l := l
				list = append(list, &l)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

type ingredientRepo struct{ v view }

func (r ingredientRepo) Create(_ context.Context, i *entity.Ingredient) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&i.ID)
		i.CreatedAt = now
		d.ingredients[i.ID] = *i
		return nil
	})
}

func (r ingredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	var out *entity.Ingredient
	r.v.read(func(d *data) {
		if i, ok := d.ingredients[id]; ok {
			out = &i
		}
	})
	return out, nil
}

func (r ingredientRepo) ListByProduction(_ context.Context, productionID string) ([]*entity.Ingredient, error) {
	var list []*entity.Ingredient
	r.v.read(func(d *data) {
		for _, i := range d.ingredients {
			if i.ProductionID == productionID {
				i := i
				list = append(list, &i)
			}
		}
	})
	sort.Slice(list, func(a, b int) bool {
		if list[a].Name != list[b].Name {
			return list[a].Name < list[b].Name
		}
		return list[a].ID < list[b].ID
	})
	return list, nil
}

type productRepo struct{ v view }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&p.ID)
		p.CreatedAt = now
		d.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(d *data) {
		if p, ok := d.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r productRepo) ListByProduction(_ context.Context, productionID string) ([]*entity.Product, error) {
	var list []*entity.Product
	r.v.read(func(d *data) {
		for _, p := range d.products {
			if p.ProductionID == productionID {
				p := p
				list = append(list, &p)
			}
		}
	})
	sort.Slice(list, func(a, b int) bool { return list[a].Name < list[b].Name })
	return list, nil
}

type recipeRepo struct{ v view }

func (r recipeRepo) Upsert(_ context.Context, rec *entity.RecipeItem) error {
	return r.v.write(func(d *data, now time.Time) error {
		p, ok := d.products[rec.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", rec.ProductID, domain.ErrNotFound)
		}
		i, ok := d.ingredients[rec.IngredientID]
		if !ok {
			return fmt.Errorf("ingredient %s: %w", rec.IngredientID, domain.ErrNotFound)
		}
		if p.ProductionID != i.ProductionID {
			return fmt.Errorf("receta entre tenants distintos: %w", domain.ErrInvalidInput)
		}
		k := pairKey{rec.ProductID, rec.IngredientID}
		if prev, ok := d.recipes[k]; ok {
			rec.ID, rec.CreatedAt = prev.ID, prev.CreatedAt
		} else {
			ensureID(&rec.ID)
			rec.CreatedAt = now
		}
		d.recipes[k] = *rec
		return nil
	})
}

func (r recipeRepo) ListByProduction(_ context.Context, productionID string) ([]*entity.RecipeItem, error) {
	var list []*entity.RecipeItem
	r.v.read(func(d *data) {
		for _, rec := range d.recipes {
			if p, ok := d.products[rec.ProductID]; ok && p.ProductionID == productionID {
				rec := rec
				list = append(list, &rec)
			}
		}
	})
	sort.Slice(list, func(a, b int) bool {
		if list[a].IngredientID != list[b].IngredientID {
			return list[a].IngredientID < list[b].IngredientID
		}
		return list[a].ProductID < list[b].ProductID
	})
	return list, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type salesRepo struct{ v view }

func (r salesRepo) Create(_ context.Context, s *entity.Sales) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&s.ID)
		s.CreatedAt = now
		d.sales = append(d.sales, *s)
		return nil
	})
}

func (r salesRepo) SumByProduct(_ context.Context, locationID string, from, to time.Time) ([]repository.SalesTotal, error) {
	sums := map[string]decimal.Decimal{}
	r.v.read(func(d *data) {
		for _, s := range d.sales {
			if s.LocationID == locationID && inRange(s.Date, from, to) {
				sums[s.ProductID] = sums[s.ProductID].Add(decimal.NewFromInt(s.Quantity))
			}
		}
	})
	out := make([]repository.SalesTotal, 0, len(sums))
	for pid, total := range sums {
		out = append(out, repository.SalesTotal{ProductID: pid, Total: decimal.NewNullDecimal(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type incomingRepo struct{ v view }

func (r incomingRepo) Create(_ context.Context, in *entity.Incoming) error {
	return r.v.write(func(d *data, now time.Time) error {
		ensureID(&in.ID)
		in.CreatedAt = now
		d.incoming = append(d.incoming, *in)
		return nil
	})
}

func (r incomingRepo) SumByIngredient(_ context.Context, locationID string, from, to time.Time) ([]repository.IncomingTotal, error) {
	sums := map[string]decimal.Decimal{}
	r.v.read(func(d *data) {
		for _, in := range d.incoming {
			if in.LocationID == locationID && inRange(in.Date, from, to) {
				sums[in.IngredientID] = sums[in.IngredientID].Add(in.Quantity)
			}
		}
	})
	out := make([]repository.IncomingTotal, 0, len(sums))
	for iid, total := range sums {
		out = append(out, repository.IncomingTotal{IngredientID: iid, Total: decimal.NewNullDecimal(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out, nil
}

type inventoryRepo struct{ v view }

func (r inventoryRepo) Get(_ context.Context, ingredientID, locationID string) (*entity.IngredientInventory, error) {
	var out *entity.IngredientInventory
	r.v.read(func(d *data) {
		if inv, ok := d.inventory[pairKey{ingredientID, locationID}]; ok {
			out = &inv
		}
	})
	return out, nil
}

func (r inventoryRepo) ListByLocation(_ context.Context, locationID string) ([]*entity.IngredientInventory, error) {
	var list []*entity.IngredientInventory
	r.v.read(func(d *data) {
		for _, inv := range d.inventory {
			if inv.LocationID == locationID {
				inv := inv
				list = append(list, &inv)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].IngredientID < list[j].IngredientID })
	return list, nil
}

func (r inventoryRepo) Upsert(_ context.Context, inv *entity.IngredientInventory) error {
	return r.v.write(func(d *data, now time.Time) error {
		inv.UpdatedAt = now
		d.inventory[pairKey{inv.IngredientID, inv.LocationID}] = *inv
		return nil
	})
}

// ── Revisiones ────────────────────────────────────────────────────────────────

type revisionRepo struct{ v view }

func deleteRevision(d *data, id string) {
	delete(d.revisions, id)
	for k := range d.ingItems {
		if k.a == id {
			delete(d.ingItems, k)
		}
	}
	for k := range d.prodItems {
		if k.a == id {
			delete(d.prodItems, k)
		}
	}
	for k := range d.reports {
		if k.a == id {
			delete(d.reports, k)
		}
	}
}

func (r revisionRepo) Create(_ context.Context, rev *entity.Revision) error {
	return r.v.write(func(d *data, now time.Time) error {
		if _, ok := d.locations[rev.LocationID]; !ok {
			return fmt.Errorf("location %s: %w", rev.LocationID, domain.ErrNotFound)
		}
		day := revision.DateOnly(rev.RevisionDate)
		for _, other := range d.revisions {
			if other.LocationID == rev.LocationID && revision.DateOnly(other.RevisionDate).Equal(day) {
				return domain.ErrDuplicate
			}
		}
		ensureID(&rev.ID)
		rev.RevisionDate = day
		rev.CreatedAt, rev.UpdatedAt = now, now
		d.revisions[rev.ID] = *rev
		return nil
	})
}

func (r revisionRepo) GetByID(_ context.Context, id string) (*entity.Revision, error) {
	var out *entity.Revision
	r.v.read(func(d *data) {
		if rev, ok := d.revisions[id]; ok {
			out = &rev
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: dentro de Run el store ya está bloqueado.
func (r revisionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Revision, error) {
	return r.GetByID(ctx, id)
}

func (r revisionRepo) FindAnchor(_ context.Context, locationID string, before time.Time) (*entity.Revision, error) {
	var out *entity.Revision
	limit := revision.DateOnly(before)
	r.v.read(func(d *data) {
		for _, rev := range d.revisions {
			if rev.LocationID != locationID || rev.Status != entity.RevisionCompleted {
				continue
			}
			if !revision.DateOnly(rev.RevisionDate).Before(limit) {
				continue
			}
			if out == nil || rev.RevisionDate.After(out.RevisionDate) {
				rev := rev
				out = &rev
			}
		}
	})
	return out, nil
}

func (r revisionRepo) Update(_ context.Context, rev *entity.Revision) error {
	return r.v.write(func(d *data, now time.Time) error {
		cur, ok := d.revisions[rev.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = rev.Status
		cur.Comments = rev.Comments
		cur.UpdatedAt = now
		rev.UpdatedAt = now
		d.revisions[rev.ID] = cur
		return nil
	})
}

func (r revisionRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(d *data, _ time.Time) error {
		deleteRevision(d, id)
		return nil
	})
}

func (r revisionRepo) ProductionOf(_ context.Context, id string) (string, error) {
	var prod string
	r.v.read(func(d *data) {
		if rev, ok := d.revisions[id]; ok {
			prod = d.locations[rev.LocationID].ProductionID
		}
	})
	if prod == "" {
		return "", domain.ErrNotFound
	}
	return prod, nil
}

func (r revisionRepo) List(_ context.Context, f repository.RevisionFilter) ([]*entity.Revision, error) {
	var list []*entity.Revision
	r.v.read(func(d *data) {
		for _, rev := range d.revisions {
			if f.ProductionID != "" && d.locations[rev.LocationID].ProductionID != f.ProductionID {
				continue
			}
			if f.LocationID != "" && rev.LocationID != f.LocationID {
				continue
			}
			if f.AuthorID != "" && rev.AuthorID != f.AuthorID {
				continue
			}
			if f.Status != "" && rev.Status != f.Status {
				continue
			}
			if f.RevisionDate != nil && !revision.DateOnly(rev.RevisionDate).Equal(revision.DateOnly(*f.RevisionDate)) {
				continue
			}
			rev := rev
			list = append(list, &rev)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].RevisionDate.Equal(list[j].RevisionDate) {
			return list[i].RevisionDate.After(list[j].RevisionDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if f.Offset > 0 {
		if f.Offset >= len(list) {
			return nil, nil
		}
		list = list[f.Offset:]
	}
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

type itemRepo struct{ v view }

func (r itemRepo) ListIngredientItems(_ context.Context, revisionID string) ([]*entity.RevisionIngredientItem, error) {
	var list []*entity.RevisionIngredientItem
	r.v.read(func(d *data) {
		for k, it := range d.ingItems {
			if k.a == revisionID {
				it := it
				list = append(list, &it)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].IngredientID < list[j].IngredientID })
	return list, nil
}

func (r itemRepo) ListProductItems(_ context.Context, revisionID string) ([]*entity.RevisionProductItem, error) {
	var list []*entity.RevisionProductItem
	r.v.read(func(d *data) {
		for k, it := range d.prodItems {
			if k.a == revisionID {
				it := it
				list = append(list, &it)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r itemRepo) UpsertIngredientItem(_ context.Context, it *entity.RevisionIngredientItem) error {
	return r.v.write(func(d *data, now time.Time) error {
		if _, ok := d.revisions[it.RevisionID]; !ok {
			return fmt.Errorf("revision %s: %w", it.RevisionID, domain.ErrNotFound)
		}
		k := pairKey{it.RevisionID, it.IngredientID}
		if prev, ok := d.ingItems[k]; ok {
			it.ID, it.CreatedAt = prev.ID, prev.CreatedAt
		} else {
			ensureID(&it.ID)
			it.CreatedAt = now
		}
		d.ingItems[k] = *it
		return nil
	})
}

func (r itemRepo) UpsertProductItem(_ context.Context, it *entity.RevisionProductItem) error {
	return r.v.write(func(d *data, now time.Time) error {
		if _, ok := d.revisions[it.RevisionID]; !ok {
			return fmt.Errorf("revision %s: %w", it.RevisionID, domain.ErrNotFound)
		}
		k := pairKey{it.RevisionID, it.ProductID}
		if prev, ok := d.prodItems[k]; ok {
			it.ID, it.CreatedAt = prev.ID, prev.CreatedAt
		} else {
			ensureID(&it.ID)
			it.CreatedAt = now
		}
		d.prodItems[k] = *it
		return nil
	})
}

type reportRepo struct{ v view }

func (r reportRepo) UpsertBatch(_ context.Context, reports []*entity.RevisionReport) error {
	return r.v.write(func(d *data, now time.Time) error {
		for _, rep := range reports {
			k := pairKey{rep.RevisionID, rep.IngredientID}
			if prev, ok := d.reports[k]; ok {
				rep.ID, rep.CreatedAt = prev.ID, prev.CreatedAt
			} else {
				ensureID(&rep.ID)
				rep.CreatedAt = now
			}
			d.reports[k] = *rep
		}
		return nil
	})
}

func (r reportRepo) ListByRevision(_ context.Context, revisionID string, status entity.ReportStatus) ([]*entity.RevisionReport, error) {
	var list []*entity.RevisionReport
	r.v.read(func(d *data) {
		for k, rep := range d.reports {
			if k.a != revisionID || (status != "" && rep.Status != status) {
				continue
			}
			rep := rep
			list = append(list, &rep)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Percentage.Cmp(list[j].Percentage); c != 0 {
			return c > 0
		}
		return list[i].IngredientID < list[j].IngredientID
	})
	return list, nil
}

func (r reportRepo) CountByRevision(_ context.Context, revisionID string) (int, error) {
	n := 0
	r.v.read(func(d *data) {
		for k := range d.reports {
			if k.a == revisionID {
				n++
			}
		}
	})
	return n, nil
}
