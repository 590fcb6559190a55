package entity

import "time"

// Location representa una sede de producción (punto, taller, sucursal) perteneciente a una Production.
// Code es único globalmente (código de integración con la caja).
type Location struct {
	ID           string
	ProductionID string
	Name         string
	Address      string
	Code         string
	CreatedAt    time.Time
}
