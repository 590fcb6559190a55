package revision

import (
	"strings"

	"github.com/jhoicas/revisiones-api/internal/domain"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// Action es una operación sobre una revisión sujeta a permisos y al estado actual.
type Action string

const (
	ActionCreate    Action = "create"
	ActionEditItems Action = "edit_items"
	ActionSubmit    Action = "submit"
	ActionCalculate Action = "calculate"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionDelete    Action = "delete"
)

var actionVerb = map[Action]string{
	ActionCreate:    "crear",
	ActionEditItems: "editar",
	ActionSubmit:    "enviar",
	ActionCalculate: "calcular",
	ActionApprove:   "aprobar",
	ActionReject:    "rechazar",
	ActionDelete:    "eliminar",
}

// Verb devuelve el verbo en infinitivo usado en los mensajes de error.
func (a Action) Verb() string {
	if v, ok := actionVerb[a]; ok {
		return v
	}
	return string(a)
}

// allowedFrom: estados origen válidos por acción. Crear y eliminar no dependen del estado.
var allowedFrom = map[Action][]entity.RevisionStatus{
	ActionEditItems: {entity.RevisionDraft},
	ActionSubmit:    {entity.RevisionDraft},
	ActionCalculate: {entity.RevisionDraft, entity.RevisionProcessing, entity.RevisionCompleted},
	ActionApprove:   {entity.RevisionDraft, entity.RevisionSubmitted, entity.RevisionProcessing},
	ActionReject:    {entity.RevisionSubmitted, entity.RevisionProcessing},
}

// Authorize comprueba que el actor pueda ejecutar la acción sobre la revisión (rev puede ser nil en create).
func Authorize(action Action, actor entity.Actor, rev *entity.Revision) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthorized
	}
	switch action {
	case ActionCreate:
		return nil
	case ActionSubmit:
		if rev.AuthorID != actor.UserID {
			return &domain.PermissionError{Action: action.Verb(), Reason: "sólo el autor puede enviar la revisión"}
		}
		return nil
	case ActionEditItems:
		if rev.AuthorID != actor.UserID && !actor.Role.IsManagerial() {
			return &domain.PermissionError{Action: action.Verb(), Reason: "sólo el autor o un rol de gestión puede editar el conteo"}
		}
		return nil
	case ActionCalculate, ActionApprove, ActionReject, ActionDelete:
		if !actor.Role.IsManagerial() {
			return &domain.PermissionError{Action: action.Verb(), Reason: "requiere rol admin, manager o accounting"}
		}
		return nil
	default:
		return &domain.PermissionError{Action: action.Verb(), Reason: "acción desconocida"}
	}
}

// CheckStatus comprueba que el estado actual admita la acción.
func CheckStatus(action Action, current entity.RevisionStatus) error {
	allowed, ok := allowedFrom[action]
	if !ok {
		return nil
	}
	for _, s := range allowed {
		if s == current {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return &domain.TransitionError{Action: action.Verb(), Status: string(current), Allowed: names}
}

// Check combina permiso y estado; el permiso se evalúa primero.
func Check(action Action, actor entity.Actor, rev *entity.Revision) error {
	if err := Authorize(action, actor, rev); err != nil {
		return err
	}
	if rev == nil {
		return nil
	}
	return CheckStatus(action, rev.Status)
}

// NextStatus devuelve el estado destino tras aplicar la acción.
// Calcular mueve draft/submitted a processing y deja processing/completed donde están.
func NextStatus(action Action, current entity.RevisionStatus) entity.RevisionStatus {
	switch action {
	case ActionSubmit:
		return entity.RevisionSubmitted
	case ActionCalculate:
		if current == entity.RevisionDraft || current == entity.RevisionSubmitted {
			return entity.RevisionProcessing
		}
		return current
	case ActionApprove:
		return entity.RevisionCompleted
	case ActionReject:
		return entity.RevisionDraft
	default:
		return current
	}
}

// AdvancesOnView indica si abrir la revisión debe pasarla a processing: sólo submitted vista por un rol de gestión.
func AdvancesOnView(role entity.Role, status entity.RevisionStatus) bool {
	return role.IsManagerial() && status == entity.RevisionSubmitted
}

// AppendRejection añade el motivo del rechazo a los comentarios. Un motivo vacío no modifica nada.
func AppendRejection(comments, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return comments
	}
	return comments + "\n[Rechazada: " + reason + "]"
}
