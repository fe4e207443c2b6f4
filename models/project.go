package models

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// Project is a portfolio entry as the backend returns it.
// The ID and CreatedAt are assigned by the server and never minted locally.
type Project struct {
	ID          string     `json:"_id" yaml:"id"`
	Name        string     `json:"projectName" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Image       string     `json:"image" yaml:"image"`
	DeployLink  string     `json:"deployLink,omitempty" yaml:"deploy_link,omitempty"`
	CodeLink    string     `json:"projectcode,omitempty" yaml:"code_link,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier.
func (p *Project) UnmarshalJSON(data []byte) error {
	type Alias Project
	aux := struct {
		*Alias
		AltID string `json:"id"`
	}{Alias: (*Alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// Timestamp returns the creation time of the project. When the server did not
// send createdAt, the time is derived from the ID: a 24 hex digit object id
// carries its creation second in the first four bytes, and a purely numeric
// id is read as unix milliseconds. ok is false when neither applies.
func (p Project) Timestamp() (t time.Time, ok bool) {
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		return *p.CreatedAt, true
	}
	return timeFromID(p.ID)
}

func timeFromID(id string) (time.Time, bool) {
	if len(id) == 24 {
		if b, err := hex.DecodeString(id[:8]); err == nil {
			secs := int64(b[0])<<24 | int64(b[1])<<16 | int64(b[2])<<8 | int64(b[3])
			return time.Unix(secs, 0).UTC(), true
		}
	}
	// Date.now() style ids: 13 digits for any date after 2001.
	if len(id) >= 12 && len(id) <= 16 {
		if ms, err := strconv.ParseInt(id, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// ProjectUpdate carries the editable fields of a project.
// Nil fields are left untouched by the server.
type ProjectUpdate struct {
	Name        *string `json:"projectName,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty" validate:"omitempty,url"`
	DeployLink  *string `json:"deployLink,omitempty" validate:"omitempty,url"`
	CodeLink    *string `json:"projectcode,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Image == nil &&
		u.DeployLink == nil && u.CodeLink == nil
}

// Apply copies the set fields onto p.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.DeployLink != nil {
		p.DeployLink = *u.DeployLink
	}
	if u.CodeLink != nil {
		p.CodeLink = *u.CodeLink
	}
}

// ProjectUpload is the multipart payload for creating a project.
// Name, deploy link and image are required before anything is sent.
type ProjectUpload struct {
	Name        string    `form:"projectName" validate:"required,max=255"`
	DeployLink  string    `form:"deployLink" validate:"required,url"`
	CodeLink    string    `form:"projectcode"`
	Description string    `form:"description"`
	ImageName   string    `form:"imageName" validate:"required_with=Image"`
	Image       io.Reader `form:"image" validate:"required"`
}

// UploadResponse is returned by the upload endpoints.
type UploadResponse struct {
	Message  string   `json:"message,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Project  *Project `json:"project,omitempty"`
}

// Image is a stored cover image.
type Image struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
