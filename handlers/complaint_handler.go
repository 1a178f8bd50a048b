package handlers

import (
	"errors"
	"net/http"
	"time"

	"lexaid-backend/models"
	"lexaid-backend/repository"
	"lexaid-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ComplaintHandler handles HTTP requests for complaint analysis and
// complaint records
type ComplaintHandler struct {
	triageService *service.TriageService
	complaintRepo *repository.ComplaintRepository
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(triageService *service.TriageService, complaintRepo *repository.ComplaintRepository) *ComplaintHandler {
	return &ComplaintHandler{
		triageService: triageService,
		complaintRepo: complaintRepo,
	}
}

// AnalyzeComplaintRequest represents the request body for analysis
type AnalyzeComplaintRequest struct {
	ComplaintText string `json:"complaint_text"`
}

// AnalyzeComplaint handles POST /api/complaints/analyze
func (h *ComplaintHandler) AnalyzeComplaint(c *gin.Context) {
	var req AnalyzeComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.triageService.Analyze(c.Request.Context(), service.AnalyzeRequest{
		ComplaintText: req.ComplaintText,
	})
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Result,
	})
}

// CreateComplaintRequest represents the request body for filing a
// complaint
type CreateComplaintRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	ComplaintText  string `json:"complaint_text" binding:"required"`
	State          string `json:"state"`
	City           string `json:"city"`
	DateOfIncident string `json:"date_of_incident"` // YYYY-MM-DD
}

// CreateComplaint handles POST /api/complaints. The complaint is
// analyzed first and stored together with its triage output.
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	dateOfIncident := time.Now().UTC()
	if req.DateOfIncident != "" {
		dateOfIncident, err = time.Parse("2006-01-02", req.DateOfIncident)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DATE",
					"message": "date_of_incident must be YYYY-MM-DD",
				},
			})
			return
		}
	}

	result, err := h.triageService.Analyze(c.Request.Context(), service.AnalyzeRequest{
		ComplaintText: req.ComplaintText,
	})
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	complaint := &models.Complaint{
		UserID:              userID,
		ComplaintText:       req.ComplaintText,
		State:               req.State,
		City:                req.City,
		DateOfIncident:      dateOfIncident,
		PredictedUrgency:    result.Result.PredictedUrgency,
		PredictedCategory:   result.Result.PredictedCategory,
		RecommendedSections: result.Result.RecommendedSections,
	}

	if err := h.complaintRepo.Create(c.Request.Context(), complaint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    complaint,
	})
}

// ListComplaints handles GET /api/complaints?user_id=
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "A valid user_id query parameter is required",
			},
		})
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	complaints, err := h.complaintRepo.ListByUserID(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaints,
	})
}

// writeAnalysisError maps triage pipeline errors onto the response
// envelope. Model loading failures are retryable server-side faults;
// empty input is the client's problem.
func (h *ComplaintHandler) writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyComplaint):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_COMPLAINT",
				"message": "The 'complaint_text' field is required.",
			},
		})
	case errors.Is(err, service.ErrModelsUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MODELS_UNAVAILABLE",
				"message": "ML models could not be loaded. Please retry.",
			},
		})
	case errors.Is(err, service.ErrIndexInconsistency):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INDEX_INCONSISTENCY",
				"message": "Section index is inconsistent. Rebuild the index.",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
	}
}
