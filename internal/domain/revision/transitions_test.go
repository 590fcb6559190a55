package revision_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
	"github.com/jhoicas/revisiones-api/internal/domain/revision"
)

var (
	author  = entity.Actor{UserID: "u-staff", ProductionID: "prod-1", Role: entity.RoleStaff}
	other   = entity.Actor{UserID: "u-other", ProductionID: "prod-1", Role: entity.RoleStaff}
	manager = entity.Actor{UserID: "u-mgr", ProductionID: "prod-1", Role: entity.RoleManager}
)

func rev(status entity.RevisionStatus) *entity.Revision {
	return &entity.Revision{ID: "r1", AuthorID: author.UserID, Status: status}
}

func TestCheck_StaffEnviaPeroNoCalcula(t *testing.T) {
	assert.NoError(t, revision.Check(revision.ActionSubmit, author, rev(entity.RevisionDraft)))

	err := revision.Check(revision.ActionCalculate, author, rev(entity.RevisionDraft))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	var pe *domain.PermissionError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "calcular", pe.Action)
}

func TestCheck_SoloElAutorEnvia(t *testing.T) {
	err := revision.Check(revision.ActionSubmit, other, rev(entity.RevisionDraft))
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// Un manager tampoco puede enviar la revisión de otro.
	err = revision.Check(revision.ActionSubmit, manager, rev(entity.RevisionDraft))
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCheck_CompletedNoSePuedeEnviar(t *testing.T) {
	err := revision.Check(revision.ActionSubmit, author, rev(entity.RevisionCompleted))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "completed", te.Status)
	assert.Equal(t, []string{"draft"}, te.Allowed)
}

func TestCheck_MatrizDeEstados(t *testing.T) {
	type tc struct {
		action revision.Action
		from   entity.RevisionStatus
		ok     bool
	}
	cases := []tc{
		{revision.ActionCalculate, entity.RevisionDraft, true},
		{revision.ActionCalculate, entity.RevisionSubmitted, false},
		{revision.ActionCalculate, entity.RevisionProcessing, true},
		{revision.ActionCalculate, entity.RevisionCompleted, true},
		{revision.ActionApprove, entity.RevisionDraft, true},
		{revision.ActionApprove, entity.RevisionSubmitted, true},
		{revision.ActionApprove, entity.RevisionProcessing, true},
		{revision.ActionApprove, entity.RevisionCompleted, false},
		{revision.ActionReject, entity.RevisionDraft, false},
		{revision.ActionReject, entity.RevisionSubmitted, true},
		{revision.ActionReject, entity.RevisionProcessing, true},
		{revision.ActionReject, entity.RevisionCompleted, false},
		{revision.ActionEditItems, entity.RevisionDraft, true},
		{revision.ActionEditItems, entity.RevisionSubmitted, false},
		{revision.ActionDelete, entity.RevisionCompleted, true},
	}
	for _, c := range cases {
		err := revision.Check(c.action, manager, rev(c.from))
		if c.ok {
			assert.NoError(t, err, "%s desde %s", c.action, c.from)
		} else {
			assert.True(t, errors.Is(err, domain.ErrConflict), "%s desde %s", c.action, c.from)
		}
	}
}

func TestCheck_ActorSinRol(t *testing.T) {
	err := revision.Check(revision.ActionCreate, entity.Actor{UserID: "x"}, nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, entity.RevisionSubmitted, revision.NextStatus(revision.ActionSubmit, entity.RevisionDraft))
	assert.Equal(t, entity.RevisionProcessing, revision.NextStatus(revision.ActionCalculate, entity.RevisionDraft))
	assert.Equal(t, entity.RevisionProcessing, revision.NextStatus(revision.ActionCalculate, entity.RevisionSubmitted))
	assert.Equal(t, entity.RevisionCompleted, revision.NextStatus(revision.ActionCalculate, entity.RevisionCompleted))
	assert.Equal(t, entity.RevisionCompleted, revision.NextStatus(revision.ActionApprove, entity.RevisionProcessing))
	assert.Equal(t, entity.RevisionDraft, revision.NextStatus(revision.ActionReject, entity.RevisionSubmitted))
}

func TestAdvancesOnView(t *testing.T) {
	assert.True(t, revision.AdvancesOnView(entity.RoleAccounting, entity.RevisionSubmitted))
	assert.False(t, revision.AdvancesOnView(entity.RoleStaff, entity.RevisionSubmitted))
	assert.False(t, revision.AdvancesOnView(entity.RoleAdmin, entity.RevisionDraft))
}

func TestAppendRejection(t *testing.T) {
	assert.Equal(t, "conteo\n[Rechazada: falta harina]", revision.AppendRejection("conteo", "  falta harina "))
	assert.Equal(t, "conteo", revision.AppendRejection("conteo", "   "))
}
