package entity

import "time"

// Role es el rol de un usuario dentro de su Production.
type Role string

// Roles válidos. RoleNone representa un actor sin rol (no autenticado o sin asignar).
const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccounting Role = "accounting"
	RoleStaff      Role = "staff"
)

// ParseRole convierte un string en Role. Valores desconocidos devuelven RoleNone.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleAccounting, RoleStaff:
		return r
	}
	return RoleNone
}

// IsManagerial indica si el rol puede calcular, aprobar, rechazar y borrar revisiones.
func (r Role) IsManagerial() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleAccounting
}

// User representa un usuario del sistema (pertenece a una Production).
type User struct {
	ID           string
	ProductionID string
	Username     string
	Role         Role
	CreatedBy    string
	CreatedAt    time.Time
}

// Actor es quien ejecuta una operación. ProductionID es el tenant explícito de la llamada.
type Actor struct {
	UserID       string
	ProductionID string
	Role         Role
}

// Authenticated indica si el actor tiene usuario y rol.
func (a Actor) Authenticated() bool {
	return a.UserID != "" && a.Role != RoleNone
}

// SystemUserID identifica las operaciones lanzadas por procesos internos (CLI, jobs).
const SystemUserID = "system"

// SystemActor es un actor administrativo sin usuario real, acotado a un tenant.
func SystemActor(productionID string) Actor {
	return Actor{UserID: SystemUserID, ProductionID: productionID, Role: RoleAdmin}
}
