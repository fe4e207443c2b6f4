package middleware

import (
	"context"
	"fmt"

	"folio/session"
)

// DefaultLoginPath is where blocked views are sent.
const DefaultLoginPath = "/admin/login"

// View renders one screen of the admin or public interface.
type View interface {
	Render(ctx context.Context) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context) error

func (f ViewFunc) Render(ctx context.Context) error { return f(ctx) }

// Decision is the outcome of a guard check. A zero Decision allows rendering.
type Decision struct {
	Redirect string
	// Replace asks the navigator to replace the current history entry so
	// back-navigation cannot return to the guarded view.
	Replace bool
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// RedirectError is returned by a guarded view instead of rendering it.
type RedirectError struct {
	To      string
	Replace bool
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("login required: redirecting to %s", e.To)
}

// Guard gates views on the presence of a session token. It never contacts
// the backend; an expired or revoked token still passes.
type Guard struct {
	tokens    session.TokenReader
	loginPath string
}

func NewGuard(tokens session.TokenReader, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Guard{tokens: tokens, loginPath: loginPath}
}

// Check reads the token slot now and decides. Any non-empty token passes,
// the same rule the api client uses to attach it.
func (g *Guard) Check() Decision {
	if g.tokens.Token() != "" {
		return Decision{}
	}
	return Decision{Redirect: g.loginPath, Replace: true}
}

// Protect wraps v so every render re-checks the token slot first.
func (g *Guard) Protect(v View) View {
	return ViewFunc(func(ctx context.Context) error {
		d := g.Check()
		if !d.Allowed() {
			return &RedirectError{To: d.Redirect, Replace: d.Replace}
		}
		return v.Render(ctx)
	})
}

// AuthRequired returns a wrapper that guards views behind a session token.
func AuthRequired(tokens session.TokenReader, loginPath string) func(View) View {
	return NewGuard(tokens, loginPath).Protect
}
