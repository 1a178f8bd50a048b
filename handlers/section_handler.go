package handlers

import (
	"net/http"

	"lexaid-backend/repository"

	"github.com/gin-gonic/gin"
)

// SectionHandler serves the statute explorer endpoints
type SectionHandler struct {
	sectionRepo *repository.SectionRepository
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(sectionRepo *repository.SectionRepository) *SectionHandler {
	return &SectionHandler{sectionRepo: sectionRepo}
}

// ListSections handles GET /api/sections with optional category, search and
// pagination query parameters
func (h *SectionHandler) ListSections(c *gin.Context) {
	category := c.Query("category")
	search := c.Query("search")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	sections, err := h.sectionRepo.List(c.Request.Context(), category, search, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SECTIONS_LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"sections": sections,
			"count":    len(sections),
		},
	})
}
