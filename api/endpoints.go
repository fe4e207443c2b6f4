package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints maps logical backend operations to concrete URLs.
// It is built once from the configured origin and never changes afterwards.
type Endpoints struct {
	base *url.URL
}

// NewEndpoints validates baseURL and returns the endpoint mapping for it.
// Any path on baseURL is kept as a prefix, so a backend mounted under a
// sub-path works unchanged.
func NewEndpoints(baseURL string) (*Endpoints, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: missing host", baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	return &Endpoints{base: u}, nil
}

// MustEndpoints is NewEndpoints for origins known to be valid.
func MustEndpoints(baseURL string) *Endpoints {
	e, err := NewEndpoints(baseURL)
	if err != nil {
		panic(err)
	}
	return e
}

// Base returns the origin every endpoint is built on.
func (e *Endpoints) Base() string {
	return e.base.String()
}

func (e *Endpoints) Login() string          { return e.join("portfolio", "login") }
func (e *Endpoints) Contact() string        { return e.join("portfolio", "contact") }
func (e *Endpoints) Projects() string       { return e.join("api", "projects") }
func (e *Endpoints) Upload() string         { return e.join("api", "upload") }
func (e *Endpoints) Images() string         { return e.join("api", "images") }
func (e *Endpoints) ProjectNumbers() string { return e.join("api", "projectnumbers") }
func (e *Endpoints) Health() string         { return e.join("health") }

// Project addresses a single project for update and delete.
func (e *Endpoints) Project(id string) string {
	return e.join("api", "projects", id)
}

// UploadImage addresses the cover image of a single project.
func (e *Endpoints) UploadImage(id string) string {
	return e.join("api", "uploadimage", id)
}

// join appends escaped path segments to the base URL.
func (e *Endpoints) join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return e.base.String() + "/" + strings.Join(escaped, "/")
}
