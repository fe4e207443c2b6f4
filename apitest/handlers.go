package apitest

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"

	"folio/models"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (b *Backend) login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if creds.Email != Email || creds.Password != Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: Token, Message: "Login successful"})
}

func (b *Backend) contact(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email and message are required"})
		return
	}

	b.mu.Lock()
	b.contacts = append(b.contacts, msg)
	b.mu.Unlock()

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Message sent successfully"})
}

func (b *Backend) listProjects(c *gin.Context) {
	b.mu.Lock()
	projects := slices.Clone(b.projects)
	b.mu.Unlock()

	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (b *Backend) projectNumbers(c *gin.Context) {
	b.mu.Lock()
	n := len(b.projects)
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (b *Backend) updateProject(c *gin.Context) {
	var req models.ProjectUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	id := c.Param("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexLocked(id)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "project not found"})
		return
	}

	p := &b.projects[idx]
	req.Apply(p)

	c.JSON(http.StatusOK, *p)
}

func (b *Backend) deleteProject(c *gin.Context) {
	id := c.Param("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexLocked(id)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "project not found"})
		return
	}
	b.projects = slices.Delete(b.projects, idx, idx+1)

	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

func (b *Backend) upload(c *gin.Context) {
	name := c.PostForm("projectName")
	deployLink := c.PostForm("deployLink")
	if name == "" || deployLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectName and deployLink are required"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	data, err := readFormFile(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	now := b.now().UTC()
	project := models.Project{
		ID:          b.newIDLocked(),
		Name:        name,
		Description: c.PostForm("description"),
		DeployLink:  deployLink,
		CodeLink:    c.PostForm("projectcode"),
		CreatedAt:   &now,
	}
	imageName := project.ID + filepath.Ext(file.Filename)
	b.images[imageName] = data
	project.Image = imageURL(c, imageName)
	b.projects = append(b.projects, project)
	b.mu.Unlock()

	c.JSON(http.StatusCreated, models.UploadResponse{
		Message:  "Project uploaded successfully",
		ImageURL: project.Image,
		Project:  &project,
	})
}

func (b *Backend) uploadImage(c *gin.Context) {
	id := c.Param("id")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	data, err := readFormFile(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexLocked(id)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "project not found"})
		return
	}

	imageName := id + filepath.Ext(file.Filename)
	b.images[imageName] = data
	b.projects[idx].Image = imageURL(c, imageName)

	c.JSON(http.StatusOK, models.UploadResponse{
		Message:  "Image uploaded successfully",
		ImageURL: b.projects[idx].Image,
	})
}

func (b *Backend) listImages(c *gin.Context) {
	b.mu.Lock()
	names := make([]string, 0, len(b.images))
	for name := range b.images {
		names = append(names, name)
	}
	b.mu.Unlock()

	slices.Sort(names)
	images := make([]gin.H, 0, len(names))
	for _, name := range names {
		images = append(images, gin.H{"name": name, "url": imageURL(c, name)})
	}
	c.JSON(http.StatusOK, images)
}

func (b *Backend) getImage(c *gin.Context) {
	b.mu.Lock()
	data, ok := b.images[c.Param("name")]
	b.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "image not found"})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Helper functions

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func imageURL(c *gin.Context, name string) string {
	return fmt.Sprintf("http://%s/api/images/%s", c.Request.Host, name)
}
