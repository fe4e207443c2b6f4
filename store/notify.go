package store

import (
	"errors"

	"folio/api"
	"folio/models"

	"go.uber.org/zap"
)

// Notice is a short user-facing message about the outcome of an action.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a logger. It is the default when no
// Notifier is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(n Notice) {
	fields := []zap.Field{zap.String("title", n.Title), zap.String("description", n.Description)}
	if n.Destructive {
		l.Logger.Warn("notice", fields...)
		return
	}
	l.Logger.Info("notice", fields...)
}

var deleteFailed = Notice{
	Title:       "Error",
	Description: "Failed to delete project.",
	Destructive: true,
}

func uploadFailureMessage(err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return "Please fill in all fields and select a file to upload."
	}
	return api.Message(err, "Failed to upload project.")
}
