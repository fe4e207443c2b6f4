package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	"folio/models"
)

// ListProjects fetches the whole collection. The backend answers with a bare
// array; the wrapped {"projects": [...]} form is accepted as well.
// Returns an empty slice (not nil) for an empty collection.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "list projects", http.MethodGet, c.endpoints.Projects(), nil, &raw); err != nil {
		return nil, err
	}

	projects, err := decodeProjects(raw)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func decodeProjects(raw json.RawMessage) ([]models.Project, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.Project{}, nil
	}

	if raw[0] == '{' {
		// Only the wrapped listing is accepted. Any other object, such as a
		// maintenance message, must not read as an empty collection.
		var wrapped struct {
			Projects json.RawMessage `json:"projects"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode projects: %w", err)
		}
		if wrapped.Projects == nil {
			return nil, fmt.Errorf("decode projects: response has no projects list")
		}
		raw = wrapped.Projects
		if bytes.Equal(raw, []byte("null")) {
			return []models.Project{}, nil
		}
	}

	projects := []models.Project{}
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}

// UpdateProject sends the editable fields of one project and returns the
// server's representation of the result. The project is nil when the server
// accepted the change without sending a body.
func (c *Client) UpdateProject(ctx context.Context, id string, fields models.ProjectUpdate) (*models.Project, error) {
	if id == "" {
		return nil, fmt.Errorf("update project: empty id")
	}
	if err := models.Validate(fields); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "update project", http.MethodPut, c.endpoints.Project(id), fields, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var project models.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return nil, fmt.Errorf("update project: decode response: %w", err)
	}
	if project.ID == "" {
		project.ID = id
	}
	return &project, nil
}

// DeleteProject removes one project on the backend.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete project: empty id")
	}
	return c.doJSON(ctx, "delete project", http.MethodDelete, c.endpoints.Project(id), nil, nil)
}

// UploadProject creates a project from a multipart form carrying its fields
// and cover image. The payload is validated before anything is sent.
func (c *Client) UploadProject(ctx context.Context, upload models.ProjectUpload) (*models.UploadResponse, error) {
	if err := models.Validate(upload); err != nil {
		return nil, err
	}

	fields := []formField{
		{"projectName", upload.Name},
		{"deployLink", upload.DeployLink},
		{"projectcode", upload.CodeLink},
		{"description", upload.Description},
	}
	body, contentType, err := encodeMultipart(fields, upload.ImageName, upload.Image)
	if err != nil {
		return nil, fmt.Errorf("upload project: %w", err)
	}

	var resp models.UploadResponse
	if err := c.do(ctx, "upload project", http.MethodPost, c.endpoints.Upload(), body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadImage replaces the cover image of an existing project.
func (c *Client) UploadImage(ctx context.Context, id, name string, image io.Reader) (*models.UploadResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("upload image: empty id")
	}
	if image == nil {
		return nil, &models.ValidationError{Fields: []models.FieldError{{Field: "image", Rule: "required"}}}
	}

	body, contentType, err := encodeMultipart(nil, name, image)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	var resp models.UploadResponse
	if err := c.do(ctx, "upload image", http.MethodPost, c.endpoints.UploadImage(id), body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProjectNumbers reads the project count summary. The endpoint has answered
// with a bare number, {"count": n} and {"total": n} over time.
func (c *Client) ProjectNumbers(ctx context.Context) (*models.ProjectStats, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "project numbers", http.MethodGet, c.endpoints.ProjectNumbers(), nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if n, err := strconv.Atoi(string(raw)); err == nil {
		return &models.ProjectStats{Total: n}, nil
	}

	var payload struct {
		Count *int `json:"count"`
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("project numbers: decode response: %w", err)
	}
	switch {
	case payload.Total != nil:
		return &models.ProjectStats{Total: *payload.Total}, nil
	case payload.Count != nil:
		return &models.ProjectStats{Total: *payload.Count}, nil
	}
	return nil, fmt.Errorf("project numbers: response carries no count")
}

// ListImages lists the stored cover images. Entries may be objects or bare
// URLs; a bare URL is named after its last path segment.
func (c *Client) ListImages(ctx context.Context) ([]models.Image, error) {
	var raw []json.RawMessage
	if err := c.doJSON(ctx, "list images", http.MethodGet, c.endpoints.Images(), nil, &raw); err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(raw))
	for _, item := range raw {
		var s string
		if json.Unmarshal(item, &s) == nil {
			images = append(images, models.Image{Name: path.Base(s), URL: s})
			continue
		}
		var img models.Image
		if err := json.Unmarshal(item, &img); err != nil {
			return nil, fmt.Errorf("list images: decode entry: %w", err)
		}
		images = append(images, img)
	}
	return images, nil
}

// Helper functions

type formField struct {
	name  string
	value string
}

func encodeMultipart(fields []formField, fileName string, file io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if fileName == "" {
		fileName = "image"
	}
	part, err := w.CreateFormFile("image", filepath.Base(fileName))
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy image: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
