package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/tenant"
)

// ProductionHandler administra el tenant (protegido, sólo admin).
type ProductionHandler struct {
	uc  *tenant.UseCase
	log zerolog.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *tenant.UseCase, log zerolog.Logger) *ProductionHandler {
	return &ProductionHandler{uc: uc, log: log}
}

// Delete godoc
// @Summary      Eliminar production
// @Description  Borra primero los usuarios del tenant y luego la production, en una transacción.
// @Tags         productions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la production"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [delete]
func (h *ProductionHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.DeleteProduction(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"production_id": out.ProductionID, "users_deleted": out.UsersDeleted})
}
