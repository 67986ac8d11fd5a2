package scheduler

import "github.com/gen2brain/beeep"

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier sends notifications through the OS notification center.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func init() {
	beeep.AppName = "studyr"
}
