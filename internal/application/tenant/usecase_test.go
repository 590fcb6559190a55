package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/revisiones-api/internal/application/tenant"
	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/memory"
)

func seed(t *testing.T, s *memory.Store) (*entity.Production, *entity.Location, *entity.Revision) {
	t.Helper()
	ctx := context.Background()
	repos := s.Repositories()
	p := &entity.Production{Name: "Panadería"}
	require.NoError(t, repos.Productions.Create(ctx, p))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ProductionID: p.ID, Username: "ana", Role: entity.RoleAdmin}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ProductionID: p.ID, Username: "luis", Role: entity.RoleStaff}))
	loc := &entity.Location{ProductionID: p.ID, Name: "Sede"}
	require.NoError(t, repos.Locations.Create(ctx, loc))
	rev := &entity.Revision{LocationID: loc.ID, AuthorID: "luis", RevisionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: entity.RevisionDraft}
	require.NoError(t, repos.Revisions.Create(ctx, rev))
	return p, loc, rev
}

func TestDeleteProduction_BorraUsuariosYCascada(t *testing.T) {
	s := memory.NewStore()
	p, loc, rev := seed(t, s)
	uc := tenant.NewUseCase(s, zerolog.Nop())

	res, err := uc.DeleteProduction(context.Background(), entity.SystemActor(p.ID), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.UsersDeleted)

	repos := s.Repositories()
	got, err := repos.Productions.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	gotLoc, err := repos.Locations.GetByID(context.Background(), loc.ID)
	require.NoError(t, err)
	assert.Nil(t, gotLoc)
	gotRev, err := repos.Revisions.GetByID(context.Background(), rev.ID)
	require.NoError(t, err)
	assert.Nil(t, gotRev)
}

func TestDeleteProduction_SoloAdmin(t *testing.T) {
	s := memory.NewStore()
	p, _, _ := seed(t, s)
	uc := tenant.NewUseCase(s, zerolog.Nop())

	_, err := uc.DeleteProduction(context.Background(), entity.Actor{UserID: "m", ProductionID: p.ID, Role: entity.RoleManager}, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.DeleteProduction(context.Background(), entity.SystemActor("otra"), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := s.Repositories().Users.ListByProduction(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDeleteProduction_UsuariosBloqueanBorradoDirecto(t *testing.T) {
	s := memory.NewStore()
	p, _, _ := seed(t, s)

	err := s.Repositories().Productions.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteProduction_Inexistente(t *testing.T) {
	uc := tenant.NewUseCase(memory.NewStore(), zerolog.Nop())
	_, err := uc.DeleteProduction(context.Background(), entity.SystemActor("nada"), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
