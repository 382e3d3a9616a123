package model

// NotifyLevel selects the tone of a notification.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)

// Notification is a channel-agnostic message emitted at the end of a run and
// after each revert.
type Notification struct {
	Level NotifyLevel
	Title string
	Body  string
}
