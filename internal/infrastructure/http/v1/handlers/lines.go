package handlers

import (
	"github.com/gin-gonic/gin"

	"jobquote/internal/core/security"
	"jobquote/internal/domain/quoting"
	"jobquote/internal/infrastructure/http/v1/dto"
)

// LineHandler handles parts, operations and auxiliary costs.
// Every successful mutation responds with the recalculated quotation.
type LineHandler struct {
	*BaseHandler
	quoting *quoting.Service
}

// NewLineHandler creates a new line handler.
func NewLineHandler(base *BaseHandler, quotingService *quoting.Service) *LineHandler {
	return &LineHandler{BaseHandler: base, quoting: quotingService}
}

// AddPart handles POST /quotations/:id/parts
func (h *LineHandler) AddPart(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.quoting.AddPart(c.Request.Context(), h.Principal(c), quotationID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, toResponse(q))
}

// UpdatePart handles PUT /quotations/:id/parts/:partId
func (h *LineHandler) UpdatePart(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	var req dto.PartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.quoting.UpdatePart(c.Request.Context(), h.Principal(c), quotationID, partID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// DeletePart handles DELETE /quotations/:id/parts/:partId
func (h *LineHandler) DeletePart(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}

	q, err := h.quoting.DeletePart(c.Request.Context(), h.Principal(c), quotationID, partID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// AddOperation handles POST /quotations/:id/parts/:partId/operations
func (h *LineHandler) AddOperation(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	var req dto.OperationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.quoting.AddOperation(c.Request.Context(), h.Principal(c), quotationID, partID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, toResponse(q))
}

// UpdateOperation handles PUT /quotations/:id/parts/:partId/operations/:opId
func (h *LineHandler) UpdateOperation(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	opID, ok := h.ParseID(c, "opId")
	if !ok {
		return
	}
	var req dto.OperationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.quoting.UpdateOperation(c.Request.Context(), h.Principal(c), quotationID, partID, opID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// DeleteOperation handles DELETE /quotations/:id/parts/:partId/operations/:opId
func (h *LineHandler) DeleteOperation(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	opID, ok := h.ParseID(c, "opId")
	if !ok {
		return
	}

	q, err := h.quoting.DeleteOperation(c.Request.Context(), h.Principal(c), quotationID, partID, opID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// AddAuxiliaryCost handles POST /quotations/:id/parts/:partId/auxiliary-costs
func (h *LineHandler) AddAuxiliaryCost(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	var req dto.AuxiliaryCostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.quoting.AddAuxiliaryCost(c.Request.Context(), h.Principal(c), quotationID, partID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, toResponse(q))
}

// UpdateAuxiliaryCost handles PUT /quotations/:id/parts/:partId/auxiliary-costs/:auxId
func (h *LineHandler) UpdateAuxiliaryCost(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	auxID, ok := h.ParseID(c, "auxId")
	if !ok {
		return
	}
	var req dto.AuxiliaryCostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.quoting.UpdateAuxiliaryCost(c.Request.Context(), h.Principal(c), quotationID, partID, auxID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// DeleteAuxiliaryCost handles DELETE /quotations/:id/parts/:partId/auxiliary-costs/:auxId
func (h *LineHandler) DeleteAuxiliaryCost(c *gin.Context) {
	quotationID, partID, ok := h.lineIDs(c)
	if !ok {
		return
	}
	auxID, ok := h.ParseID(c, "auxId")
	if !ok {
		return
	}

	q, err := h.quoting.DeleteAuxiliaryCost(c.Request.Context(), h.Principal(c), quotationID, partID, auxID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toResponse(q))
}

// RegisterRoutes registers line routes under /quotations/:id.
func (h *LineHandler) RegisterRoutes(rg *gin.RouterGroup, require Capability) {
	edit := require(security.ActionEdit)

	rg.POST("/:id/parts", edit, h.AddPart)
	rg.PUT("/:id/parts/:partId", edit, h.UpdatePart)
	rg.DELETE("/:id/parts/:partId", edit, h.DeletePart)

	rg.POST("/:id/parts/:partId/operations", edit, h.AddOperation)
	rg.PUT("/:id/parts/:partId/operations/:opId", edit, h.UpdateOperation)
	rg.DELETE("/:id/parts/:partId/operations/:opId", edit, h.DeleteOperation)

	rg.POST("/:id/parts/:partId/auxiliary-costs", edit, h.AddAuxiliaryCost)
	rg.PUT("/:id/parts/:partId/auxiliary-costs/:auxId", edit, h.UpdateAuxiliaryCost)
	rg.DELETE("/:id/parts/:partId/auxiliary-costs/:auxId", edit, h.DeleteAuxiliaryCost)
}
