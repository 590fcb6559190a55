// Package memory implementa los puertos de repository en memoria, con transacciones simuladas por
// snapshot y restauración. Se usa en tests y en el modo local de la CLI.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type pairKey struct{ a, b string }

type data struct {
	productions map[string]entity.Production
	users       map[string]entity.User
	locations   map[string]entity.Location
	ingredients map[string]entity.Ingredient
	products    map[string]entity.Product
	recipes     map[pairKey]entity.RecipeItem // (producto, ingrediente)
	sales       []entity.Sales
	incoming    []entity.Incoming
	inventory   map[pairKey]entity.IngredientInventory // (ingrediente, sede)
	revisions   map[string]entity.Revision
	ingItems    map[pairKey]entity.RevisionIngredientItem // (revisión, ingrediente)
	prodItems   map[pairKey]entity.RevisionProductItem    // (revisión, producto)
	reports     map[pairKey]entity.RevisionReport         // (revisión, ingrediente)
}

func newData() *data {
	return &data{
		productions: make(map[string]entity.Production),
		users:       make(map[string]entity.User),
		locations:   make(map[string]entity.Location),
		ingredients: make(map[string]entity.Ingredient),
		products:    make(map[string]entity.Product),
		recipes:     make(map[pairKey]entity.RecipeItem),
		inventory:   make(map[pairKey]entity.IngredientInventory),
		revisions:   make(map[string]entity.Revision),
		ingItems:    make(map[pairKey]entity.RevisionIngredientItem),
		prodItems:   make(map[pairKey]entity.RevisionProductItem),
		reports:     make(map[pairKey]entity.RevisionReport),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copia el estado. Las entidades se guardan por valor, así que basta copiar mapas y slices.
func (d *data) clone() *data {
	return &data{
		productions: cloneMap(d.productions),
		users:       cloneMap(d.users),
		locations:   cloneMap(d.locations),
		ingredients: cloneMap(d.ingredients),
		products:    cloneMap(d.products),
		recipes:     cloneMap(d.recipes),
		sales:       append([]entity.Sales(nil), d.sales...),
		incoming:    append([]entity.Incoming(nil), d.incoming...),
		inventory:   cloneMap(d.inventory),
		revisions:   cloneMap(d.revisions),
		ingItems:    cloneMap(d.ingItems),
		prodItems:   cloneMap(d.prodItems),
		reports:     cloneMap(d.reports),
	}
}

// Store es el almacén en memoria. Las escrituras fuera de Run son atómicas por operación;
// Run serializa la transacción completa y restaura el snapshot si fn falla.
type Store struct {
	mu  sync.Mutex
	d   *data
	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{d: newData(), now: func() time.Time { return time.Now().UTC() }}
}

// SetClock fija el reloj usado para timestamps (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Repositories devuelve repositorios no transaccionales sobre el store.
// No deben usarse dentro de un fn pasado a Run: el mutex no es reentrante.
func (s *Store) Repositories() repository.Repositories {
	return s.bundle(false)
}

// Run ejecuta fn con repositorios atados a una "transacción" en memoria.
// Si fn devuelve error o el contexto se cancela, el estado vuelve al snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(s.bundle(true)); err != nil {
		s.d = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) bundle(inTx bool) repository.Repositories {
	v := view{s: s, inTx: inTx}
	return repository.Repositories{
		Productions: productionRepo{v},
		Users:       userRepo{v},
		Locations:   locationRepo{v},
		Ingredients: ingredientRepo{v},
		Products:    productRepo{v},
		Recipes:     recipeRepo{v},
		Sales:       salesRepo{v},
		Incoming:    incomingRepo{v},
		Inventory:   inventoryRepo{v},
		Revisions:   revisionRepo{v},
		Items:       itemRepo{v},
		Reports:     reportRepo{v},
	}
}

// view da acceso a los datos tomando el lock sólo cuando no se está dentro de Run.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read(fn func(d *data)) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn(v.s.d)
}

func (v view) write(fn func(d *data, now time.Time) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.d, v.s.now())
}
