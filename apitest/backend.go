// Package apitest provides an in-memory stand-in for the portfolio backend.
// It speaks the same routes and payloads as the deployed service and is used
// by tests and by cmd/devapi for local development.
package apitest

import (
	"fmt"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"folio/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Demo admin account accepted by the login route.
const (
	Email    = "admin@portfolio.com"
	Password = "admin123"
	Token    = "apitest-token"
)

type failure struct {
	method string
	path   string
	status int
}

// Backend holds the fake service state. All methods are safe for concurrent use.
type Backend struct {
	mu       sync.Mutex
	projects []models.Project
	contacts []models.ContactMessage
	images   map[string][]byte
	failures []failure
	requests int
	now      func() time.Time
}

func NewBackend() *Backend {
	return &Backend{
		images: map[string][]byte{},
		now:    time.Now,
	}
}

// SetClock replaces the clock used for createdAt and generated ids.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Reset drops all state, including pending failures.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.projects = nil
	b.contacts = nil
	b.images = map[string][]byte{}
	b.failures = nil
	b.requests = 0
}

// Seed appends projects as-is. Missing ids are generated.
func (b *Backend) Seed(projects ...models.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range projects {
		if p.ID == "" {
			p.ID = b.newIDLocked()
		}
		b.projects = append(b.projects, p)
	}
}

// Projects returns a copy of the stored collection in insertion order.
func (b *Backend) Projects() []models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.projects)
}

// Contacts returns the contact messages received so far.
func (b *Backend) Contacts() []models.ContactMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.contacts)
}

// Requests counts requests that reached the router.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// FailNext makes the next request matching method and path answer with status.
func (b *Backend) FailNext(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, path: path, status: status})
}

// Router builds the gin engine serving the backend routes.
func (b *Backend) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.countRequests(), b.injectFailures())

	r.GET("/health", HealthCheck)

	portfolio := r.Group("/portfolio")
	portfolio.POST("/login", b.login)
	portfolio.POST("/contact", b.contact)

	api := r.Group("/api")
	api.GET("/projects", b.listProjects)
	api.GET("/projectnumbers", b.projectNumbers)
	api.GET("/images", b.listImages)
	api.GET("/images/:name", b.getImage)

	admin := api.Group("", AuthRequired(Token))
	admin.PUT("/projects/:id", b.updateProject)
	admin.DELETE("/projects/:id", b.deleteProject)
	admin.POST("/upload", b.upload)
	admin.POST("/uploadimage/:id", b.uploadImage)

	return r
}

func (b *Backend) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.requests++
		b.mu.Unlock()
		c.Next()
	}
}

func (b *Backend) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		idx := slices.IndexFunc(b.failures, func(f failure) bool {
			return f.method == c.Request.Method && f.path == c.Request.URL.Path
		})
		var status int
		if idx >= 0 {
			status = b.failures[idx].status
			b.failures = slices.Delete(b.failures, idx, idx+1)
		}
		b.mu.Unlock()

		if idx >= 0 {
			c.AbortWithStatusJSON(status, gin.H{"message": "injected failure"})
			return
		}
		c.Next()
	}
}

// newIDLocked returns an object-id shaped identifier: 4 bytes of creation
// time followed by 8 random bytes, hex encoded.
func (b *Backend) newIDLocked() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%08x%s", uint32(b.now().Unix()), random[:16])
}

func (b *Backend) indexLocked(id string) int {
	return slices.IndexFunc(b.projects, func(p models.Project) bool { return p.ID == id })
}

// Server is a Backend served over a local httptest listener.
type Server struct {
	*Backend
	*httptest.Server
}

// NewServer starts a fake backend. Close it when done.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)
	b := NewBackend()
	return &Server{Backend: b, Server: httptest.NewServer(b.Router())}
}
