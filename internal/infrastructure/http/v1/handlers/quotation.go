package handlers

import (
	"github.com/gin-gonic/gin"

	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/domain/costing"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/domain/quoting"
	"jobquote/internal/domain/workflow"
	"jobquote/internal/infrastructure/http/v1/dto"
)

// QuotationHandler handles quotation header, recalculation, workflow and audit endpoints.
type QuotationHandler struct {
	*BaseHandler
	quoting      *quoting.Service
	recalculator *costing.Recalculator
	workflow     *workflow.Service
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(
	base *BaseHandler,
	quotingService *quoting.Service,
	recalculator *costing.Recalculator,
	workflowService *workflow.Service,
) *QuotationHandler {
	return &QuotationHandler{
		BaseHandler:  base,
		quoting:      quotingService,
		recalculator: recalculator,
		workflow:     workflowService,
	}
}

// List handles GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	var req dto.QuotationListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.quoting.ListQuotations(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromQuotationList(result))
}

// Create handles POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.quoting.CreateQuotation(c.Request.Context(), h.Principal(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, toResponse(q))
}

// Get handles GET /quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	q, err := h.quoting.GetQuotation(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, toResponse(q))
}

// Update handles PUT /quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.quoting.UpdateHeader(c.Request.Context(), h.Principal(c), quotationID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, toResponse(q))
}

// Delete handles DELETE /quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.quoting.DeleteQuotation(c.Request.Context(), h.Principal(c), quotationID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Copy handles POST /quotations/:id/copy
func (h *QuotationHandler) Copy(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	q, err := h.quoting.DuplicateQuotation(c.Request.Context(), h.Principal(c), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, toResponse(q))
}

// Recalculate handles POST /quotations/:id/recalculate
func (h *QuotationHandler) Recalculate(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	totals, err := h.recalculator.Recalculate(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.TotalsResponse{QuotationID: quotationID, Totals: totals})
}

// Transition handles POST /quotations/:id/transitions
func (h *QuotationHandler) Transition(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	target, err := quotation.ParseStatus(req.TargetStatus)
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.workflow.AttemptTransition(c.Request.Context(), quotationID, target, h.Principal(c), req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// Audit handles GET /quotations/:id/audit
func (h *QuotationHandler) Audit(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.quoting.History(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AuditTrailResponse{QuotationID: quotationID, Entries: entries})
}

// Capability returns middleware that admits only callers holding action.
type Capability func(action security.Action) gin.HandlerFunc

// RegisterRoutes registers quotation routes.
// Transitions are authorized by the workflow service, since the capability depends on the target status.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup, require Capability) {
	rg.GET("", require(security.ActionRead), h.List)
	rg.POST("", require(security.ActionCreate), h.Create)
	rg.GET("/:id", require(security.ActionRead), h.Get)
	rg.PUT("/:id", require(security.ActionEdit), h.Update)
	rg.DELETE("/:id", require(security.ActionDelete), h.Delete)
	rg.POST("/:id/copy", require(security.ActionCreate), h.Copy)
	rg.POST("/:id/recalculate", require(security.ActionRecalculate), h.Recalculate)
	rg.POST("/:id/transitions", h.Transition)
	rg.GET("/:id/audit", require(security.ActionViewAuditTrail), h.Audit)
}

func toResponse(q *quotation.Quotation) dto.QuotationResponse {
	return dto.QuotationResponse{
		Quotation:          q,
		AllowedTransitions: workflow.AllowedTargets(q.Status),
		Editable:           workflow.IsEditable(q.Status),
	}
}

// lineIDs reads the quotation and part path parameters shared by line endpoints.
func (h *BaseHandler) lineIDs(c *gin.Context) (quotationID, partID id.ID, ok bool) {
	if quotationID, ok = h.ParseID(c, "id"); !ok {
		return
	}
	partID, ok = h.ParseID(c, "partId")
	return
}
