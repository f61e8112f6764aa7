package delivery

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authdomain "coachly-backend/internal/auth/domain"
	"coachly-backend/internal/resource/domain"
	"coachly-backend/internal/resource/repository"
)

const maxUploadSize = 25 << 20 // 25 MB

type ResourceHandler struct {
	resourceRepo  repository.ResourceRepository
	uploadDir     string
	publicBaseURL string
}

func NewResourceHandler(resourceRepo repository.ResourceRepository, uploadDir, publicBaseURL string) *ResourceHandler {
	return &ResourceHandler{
		resourceRepo:  resourceRepo,
		uploadDir:     uploadDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload handles POST /api/resources (multipart form, coach or admin only)
func (h *ResourceHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	// Stored under a generated name; the original name survives in metadata.
	stored := uuid.New().String() + filepath.Ext(file.Filename)
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, stored)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	resource := &domain.Resource{
		UploadedBy:  c.GetString("userID"),
		Name:        name,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		URL:         fmt.Sprintf("%s/files/%s", h.publicBaseURL, stored),
	}
	if err := h.resourceRepo.Create(resource); err != nil {
		os.Remove(filepath.Join(h.uploadDir, stored))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save resource"})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// List handles GET /api/resources
func (h *ResourceHandler) List(c *gin.Context) {
	resources, err := h.resourceRepo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// Delete handles DELETE /api/resources/:id (uploader or admin)
func (h *ResourceHandler) Delete(c *gin.Context) {
	resource, err := h.resourceRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load resource"})
		return
	}
	if resource == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	actor, _ := c.Get("user")
	user, _ := actor.(*authdomain.User)
	if resource.UploadedBy != c.GetString("userID") && (user == nil || !user.HasRole(authdomain.RoleAdmin)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.resourceRepo.Delete(resource.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resource"})
		return
	}
	if idx := strings.LastIndex(resource.URL, "/"); idx >= 0 {
		os.Remove(filepath.Join(h.uploadDir, resource.URL[idx+1:]))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource deleted"})
}
