package models

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued by the backend.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}
