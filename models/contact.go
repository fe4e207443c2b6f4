package models

// ContactMessage is submitted by the public contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,min=3,max=5000"`
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProjectStats is the summary served by the project numbers endpoint.
type ProjectStats struct {
	Total int `json:"total" yaml:"total"`
}
