package services

// Notifier pushes entity-change events to a user's connected clients so they
// can refresh cached data. Implementations must not block.
type Notifier interface {
	NotifyChange(userID, entity, action string)
}

// NopNotifier discards all notifications. Useful in tests and tools.
type NopNotifier struct{}

// NotifyChange implements Notifier.
func (NopNotifier) NotifyChange(userID, entity, action string) {}
