package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type OrganizationHandler struct {
	orgService OrganizationServiceInterface
	log        *logger.Logger
}

func NewOrganizationHandler(orgService OrganizationServiceInterface, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, log: log}
}

func (h *OrganizationHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateOrganizationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err, "failed to create organization")
		return
	}

	_ = c.JSON(201, org)
}

func (h *OrganizationHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	orgs, err := h.orgService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to list organizations")
		return
	}

	_ = c.JSON(200, orgs)
}

// Get shows an organization to its owner and to members of its teams.
func (h *OrganizationHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	orgID, ok := parseIDParam(c, "orgId", "organization")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	canView, err := h.orgService.CanView(ctx, orgID, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get organization")
		return
	}
	if !canView {
		c.NotFound(services.ErrOrganizationNotFound.Error())
		return
	}

	org, err := h.orgService.GetByID(ctx, orgID)
	if err != nil {
		respondError(c, h.log, err, "failed to get organization")
		return
	}

	_ = c.JSON(200, org)
}

func (h *OrganizationHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	orgID, ok := parseIDParam(c, "orgId", "organization")
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), orgID, userID, req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err, "failed to update organization")
		return
	}

	_ = c.JSON(200, org)
}

func (h *OrganizationHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	orgID, ok := parseIDParam(c, "orgId", "organization")
	if !ok {
		return
	}

	if err := h.orgService.Delete(c.Request.Context(), orgID, userID); err != nil {
		respondError(c, h.log, err, "failed to delete organization")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "organization deleted"})
}
