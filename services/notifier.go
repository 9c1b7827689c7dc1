package services

// Notifier receives a named event after every committed mutation. Delivery
// is fire-and-forget and must never block the caller; implementations drop
// events rather than wait.
type Notifier interface {
	Publish(event string, entityID interface{})
}

// NopNotifier is the default when no hub is wired (tests, CLIs).
type NopNotifier struct{}

func (NopNotifier) Publish(string, interface{}) {}
