package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	"github.com/jhoicas/revisiones-api/internal/application/inventory"
)

// InventoryHandler maneja el inventario actual por sede y el registro de entradas y ventas (protegido).
type InventoryHandler struct {
	uc  *inventory.UseCase
	log zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// Current godoc
// @Summary      Inventario actual de una sede
// @Description  Proyección escrita por el último approve. Ingredientes sin proyección aparecen en 0.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sede"
// @Success      200  {object}  dto.LocationInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/inventory [get]
func (h *InventoryHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.CurrentInventory(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RegisterIncoming godoc
// @Summary      Registrar entrada de ingrediente
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterIncomingRequest  true  "ingredient_id, location_id, date, quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/incoming [post]
func (h *InventoryHandler) RegisterIncoming(c *fiber.Ctx) error {
	var in dto.RegisterIncomingRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	entry, err := h.uc.RegisterIncoming(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": entry.ID, "quantity": entry.Quantity, "message": "entrada registrada"})
}

// RegisterSale godoc
// @Summary      Registrar venta de producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSaleRequest  true  "product_id, location_id, date, quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RegisterSale(c *fiber.Ctx) error {
	var in dto.RegisterSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	sale, err := h.uc.RegisterSale(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": sale.ID, "message": "venta registrada"})
}
