package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/dto"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportSize tope del .xlsx de conteo subido por multipart.
const maxImportSize = 5 << 20

// RevisionHandler maneja las peticiones HTTP de revisiones (protegido).
type RevisionHandler struct {
	uc       *apprevision.UseCase
	renderer apprevision.ReportRenderer
	log      zerolog.Logger
}

// NewRevisionHandler construye el handler. renderer puede ser nil: el export PDF responde 501.
func NewRevisionHandler(uc *apprevision.UseCase, renderer apprevision.ReportRenderer, log zerolog.Logger) *RevisionHandler {
	return &RevisionHandler{uc: uc, renderer: renderer, log: log}
}

func outcomeResponse(out *apprevision.Outcome, fallback string) dto.CalculationResponse {
	resp := dto.CalculationResponse{Status: "success", Message: fallback}
	if out.Result != nil {
		resp.Status = out.Result.Status
		resp.ReportsWritten = out.Result.ReportsWritten
		resp.Warnings = out.Result.Warnings
		if out.Result.Message != "" {
			resp.Message = out.Result.Message
		}
	}
	if out.Revision != nil {
		resp.Revision = apprevision.ToResponse(out.Revision)
	}
	return resp
}

// List godoc
// @Summary      Listar revisiones
// @Description  staff sólo ve sus propios borradores; los roles de gestión ven todo el tenant.
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "draft | submitted | processing | completed"
// @Param        location_id    query  string  false  "Sede"
// @Param        revision_date  query  string  false  "YYYY-MM-DD"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.RevisionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/revisions [get]
func (h *RevisionHandler) List(c *fiber.Ctx) error {
	var q dto.ListRevisionsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validateStruct(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.uc.List(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear revisión (draft)
// @Tags         revisions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRevisionRequest  true  "Sede y fecha"
// @Success      201   {object}  dto.RevisionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/revisions [post]
func (h *RevisionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRevisionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	rev, err := h.uc.Create(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(apprevision.ToResponse(rev))
}

// Detail godoc
// @Summary      Detalle de revisión
// @Description  Incluye líneas de conteo y reports. Si la abre un rol de gestión y está submitted pasa a processing.
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {object}  dto.RevisionDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id} [get]
func (h *RevisionHandler) Detail(c *fiber.Ctx) error {
	out, err := h.uc.Detail(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar revisión
// @Tags         revisions
// @Security     Bearer
// @Param        id   path  string  true  "ID de la revisión"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id} [delete]
func (h *RevisionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertItems godoc
// @Summary      Cargar líneas de conteo
// @Tags         revisions
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                  true  "ID de la revisión"
// @Param        body  body  dto.UpsertItemsRequest  true  "Ingredientes y productos contados"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/items [put]
func (h *RevisionHandler) UpsertItems(c *fiber.Ctx) error {
	var in dto.UpsertItemsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.uc.UpsertItems(c.UserContext(), ActorFrom(c), c.Params("id"), in); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import godoc
// @Summary      Importar conteo desde .xlsx
// @Description  Columnas "Nombre" (o "Nomenclatura") y "Cantidad". Las filas no reconocidas se devuelven en skipped.
// @Tags         revisions
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID de la revisión"
// @Param        file  formData  file    true  "Hoja de conteo"
// @Success      200   {object}  dto.ImportResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/import [post]
func (h *RevisionHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	if fh.Size > maxImportSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "archivo mayor a 5MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	out, err := h.uc.ImportItems(c.UserContext(), ActorFrom(c), c.Params("id"), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar revisión (autor)
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {object}  dto.RevisionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/submit [post]
func (h *RevisionHandler) Submit(c *fiber.Ctx) error {
	rev, err := h.uc.Submit(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(apprevision.ToResponse(rev))
}

// Calculate godoc
// @Summary      Calcular revisión
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {object}  dto.CalculationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/calculate [post]
func (h *RevisionHandler) Calculate(c *fiber.Ctx) error {
	out, err := h.uc.Calculate(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(outcomeResponse(out, "revisión calculada"))
}

// Approve godoc
// @Summary      Aprobar revisión
// @Description  Calcula si aún no tiene reports, completa la revisión y copia el conteo al inventario.
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {object}  dto.CalculationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/approve [post]
func (h *RevisionHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(outcomeResponse(out, "revisión aprobada"))
}

// Reject godoc
// @Summary      Rechazar revisión (vuelve a draft)
// @Tags         revisions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la revisión"
// @Param        body  body  dto.RejectRevisionRequest  false  "Motivo"
// @Success      200   {object}  dto.RevisionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/reject [post]
func (h *RevisionHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRevisionRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	rev, err := h.uc.Reject(c.UserContext(), ActorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(apprevision.ToResponse(rev))
}

// Reports godoc
// @Summary      Reports de la revisión
// @Description  Ordenados por porcentaje descendente.
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la revisión"
// @Param        status  query  string  false  "ok | warning | critical"
// @Success      200     {array}   dto.ReportResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/reports [get]
func (h *RevisionHandler) Reports(c *fiber.Ctx) error {
	out, err := h.uc.Reports(c.UserContext(), ActorFrom(c), c.Params("id"), entity.ReportStatus(c.Query("status")))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de la revisión
// @Tags         revisions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/revisions/{id}/summary [get]
func (h *RevisionHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExportXLSX godoc
// @Summary      Exportar reports a .xlsx
// @Tags         revisions
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {file}  binary
// @Router       /api/revisions/{id}/export/xlsx [get]
func (h *RevisionHandler) ExportXLSX(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.uc.ExportXLSXBytes(c.UserContext(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="revision_%s.xlsx"`, id))
	return c.Send(data)
}

// ExportPDF godoc
// @Summary      Informe PDF de la revisión
// @Tags         revisions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la revisión"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/revisions/{id}/export/pdf [get]
func (h *RevisionHandler) ExportPDF(c *fiber.Ctx) error {
	if h.renderer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generador PDF no configurado"})
	}
	doc, filename, err := h.uc.ExportPDF(c.UserContext(), ActorFrom(c), c.Params("id"), h.renderer)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(doc)
}
