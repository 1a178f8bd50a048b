package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"lexaid-backend/models"
	"lexaid-backend/repository"
	"lexaid-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles HTTP requests for evidence file operations
type FileHandler struct {
	fileRepo         *repository.FileRepository
	complaintRepo    *repository.ComplaintRepository
	storage          storage.Storage
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileRepo *repository.FileRepository, complaintRepo *repository.ComplaintRepository, storage storage.Storage) *FileHandler {
	return &FileHandler{
		fileRepo:      fileRepo,
		complaintRepo: complaintRepo,
		storage:       storage,
		maxFileSize:   10 * 1024 * 1024, // 10MB
		allowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"text/plain":         true,
			"application/msword": true, // .doc
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
			"image/jpeg": true,
			"image/png":  true,
		},
	}
}

// UploadFile handles POST /api/files/upload
func (h *FileHandler) UploadFile(c *gin.Context) {
	complaintIDStr := c.PostForm("complaint_id")
	var complaintID *uuid.UUID
	var userID uuid.UUID

	if complaintIDStr != "" {
		cid, err := uuid.Parse(complaintIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_COMPLAINT_ID",
					"message": "Invalid complaint_id format",
				},
			})
			return
		}
		complaintID = &cid

		// Get complaint to retrieve user_id
		complaint, err := h.complaintRepo.GetByID(c.Request.Context(), cid)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "COMPLAINT_NOT_FOUND",
					"message": "Complaint not found",
				},
			})
			return
		}
		userID = complaint.UserID
	} else if user, ok := authenticatedUser(c); ok {
		userID = user.ID
	} else {
		// If no complaint_id, require user_id in form
		userIDStr := c.PostForm("user_id")
		if userIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_USER_ID",
					"message": "Either complaint_id or user_id is required",
				},
			})
			return
		}
		uid, err := uuid.Parse(userIDStr)
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
		userID = uid
	}

	// Get file from form
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	// Validate file size
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	// Open file
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	// Determine MIME type
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		// Try to infer from extension
		filename := strings.ToLower(fileHeader.Filename)
		switch {
		case strings.HasSuffix(filename, ".pdf"):
			mimeType = "application/pdf"
		case strings.HasSuffix(filename, ".txt"):
			mimeType = "text/plain"
		case strings.HasSuffix(filename, ".doc"):
			mimeType = "application/msword"
		case strings.HasSuffix(filename, ".docx"):
			mimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case strings.HasSuffix(filename, ".jpg"), strings.HasSuffix(filename, ".jpeg"):
			mimeType = "image/jpeg"
		case strings.HasSuffix(filename, ".png"):
			mimeType = "image/png"
		default:
			mimeType = "application/octet-stream"
		}
	}

	// Validate MIME type
	if !h.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX, JPG, PNG",
			},
		})
		return
	}

	// Generate file ID
	fileID := uuid.New()

	// Upload to storage
	storagePath, err := h.storage.Upload(c.Request.Context(), fileID, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to upload file: %v", err),
			},
		})
		return
	}

	// Create file record in database
	fileRecord := &models.EvidenceFile{
		ID:          fileID,
		UserID:      userID,
		ComplaintID: complaintID,
		Filename:    fileHeader.Filename,
		MimeType:    mimeType,
		Size:        fileHeader.Size,
		StoragePath: storagePath,
	}

	err = h.fileRepo.Create(c.Request.Context(), fileRecord)
	if err != nil {
		// Try to clean up uploaded file
		h.storage.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save file record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":           fileRecord.ID,
			"complaint_id": fileRecord.ComplaintID,
			"filename":     fileRecord.Filename,
			"mime_type":    fileRecord.MimeType,
			"size":         fileRecord.Size,
			"created_at":   fileRecord.CreatedAt,
		},
	})
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "File not found",
			},
		})
		return
	}

	// Download from storage
	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download file: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}

// ListFilesByComplaint handles GET /api/complaints/:id/files
func (h *FileHandler) ListFilesByComplaint(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid complaint ID format",
			},
		})
		return
	}

	files, err := h.fileRepo.ListByComplaintID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILES_LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"files": files,
			"count": len(files),
		},
	})
}
