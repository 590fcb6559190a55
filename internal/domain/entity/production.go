package entity

import "time"

// Production representa un tenant: una empresa de producción (panadería, cocina central) con sus
// propios catálogos de productos, ingredientes y sedes.
type Production struct {
	ID        string
	Name      string
	City      string
	LegalName string
	TaxID     string // opcional
	CreatedAt time.Time
	UpdatedAt time.Time
}
