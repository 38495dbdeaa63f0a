package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type WikiHandler struct {
	wikiService WikiServiceInterface
	renderer    WikiRendererInterface
	teamService TeamServiceInterface
	log         *logger.Logger
}

func NewWikiHandler(wikiService WikiServiceInterface, renderer WikiRendererInterface, teamService TeamServiceInterface, log *logger.Logger) *WikiHandler {
	return &WikiHandler{
		wikiService: wikiService,
		renderer:    renderer,
		teamService: teamService,
		log:         log,
	}
}

// List returns page metadata and markdown without rendering.
func (h *WikiHandler) List(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	pages, err := h.wikiService.List(c.Request.Context(), access.TeamID)
	if err != nil {
		respondError(c, h.log, err, "failed to list wiki pages")
		return
	}

	_ = c.JSON(200, pages)
}

func (h *WikiHandler) Create(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	var req dto.CreateWikiPageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	page, err := h.wikiService.Create(c.Request.Context(), access.TeamID, access.UserID, req.Title, req.Content)
	if err != nil {
		respondError(c, h.log, err, "failed to create wiki page")
		return
	}

	h.respondPage(c, 201, page)
}

func (h *WikiHandler) Get(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	pageID, ok := parseIDParam(c, "pageId", "page")
	if !ok {
		return
	}

	page, err := h.wikiService.Get(c.Request.Context(), access.TeamID, pageID)
	if err != nil {
		respondError(c, h.log, err, "failed to get wiki page")
		return
	}

	h.respondPage(c, 200, page)
}

// Update applies an edit made against a known version. A stale version is
// rejected with 409.
func (h *WikiHandler) Update(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	pageID, ok := parseIDParam(c, "pageId", "page")
	if !ok {
		return
	}

	var req dto.UpdateWikiPageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Version == 0 {
		c.BadRequest("version is required")
		return
	}
	if req.Title == nil && req.Content == nil {
		c.BadRequest("no fields to update")
		return
	}

	page, err := h.wikiService.Update(c.Request.Context(), access.TeamID, pageID, req.Title, req.Content, req.Version, access.UserID)
	if err != nil {
		respondError(c, h.log, err, "failed to update wiki page")
		return
	}

	h.respondPage(c, 200, page)
}

func (h *WikiHandler) Delete(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	pageID, ok := parseIDParam(c, "pageId", "page")
	if !ok {
		return
	}

	if err := h.wikiService.Delete(c.Request.Context(), access.TeamID, pageID); err != nil {
		respondError(c, h.log, err, "failed to delete wiki page")
		return
	}

	_ = c.JSON(200, dto.DeletedResponse{ID: pageID})
}

func (h *WikiHandler) respondPage(c *drift.Context, status int, page *models.WikiPage) {
	html, err := h.renderer.Render(page)
	if err != nil {
		respondError(c, h.log, err, "failed to render wiki page")
		return
	}

	_ = c.JSON(status, dto.WikiPageResponse{WikiPage: *page, HTML: html})
}
