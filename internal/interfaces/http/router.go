package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/inventory"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/application/tenant"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RevisionUC  *apprevision.UseCase
	InventoryUC *inventory.UseCase
	TenantUC    *tenant.UseCase
	PDF         apprevision.ReportRenderer
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token; la autorización fina
// (autor, estado de la revisión) la decide la capa de aplicación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole(AllRoles...))
	managerial := RequireRole(ManagerialRoles...)

	// Revisions
	revisions := api.Group("/revisions")
	rh := NewRevisionHandler(deps.RevisionUC, deps.PDF, deps.Log)
	revisions.Get("/", rh.List)
	revisions.Post("/", rh.Create)
	revisions.Get("/:id", rh.Detail)
	revisions.Delete("/:id", managerial, rh.Delete)
	revisions.Put("/:id/items", rh.UpsertItems)
	revisions.Post("/:id/import", rh.Import)
	revisions.Post("/:id/submit", rh.Submit)
	revisions.Post("/:id/calculate", managerial, rh.Calculate)
	revisions.Post("/:id/approve", managerial, rh.Approve)
	revisions.Post("/:id/reject", managerial, rh.Reject)
	revisions.Get("/:id/reports", rh.Reports)
	revisions.Get("/:id/summary", rh.Summary)
	revisions.Get("/:id/export/xlsx", rh.ExportXLSX)
	revisions.Get("/:id/export/pdf", rh.ExportPDF)

	// Inventory
	ih := NewInventoryHandler(deps.InventoryUC, deps.Log)
	api.Get("/locations/:id/inventory", ih.Current)
	inv := api.Group("/inventory", managerial)
	inv.Post("/incoming", ih.RegisterIncoming)
	inv.Post("/sales", ih.RegisterSale)

	// Productions (tenant)
	ph := NewProductionHandler(deps.TenantUC, deps.Log)
	api.Delete("/productions/:id", RequireRole(string(entity.RoleAdmin)), ph.Delete)
}
