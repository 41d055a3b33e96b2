package enrollment

import "time"

// Notifier receives a best-effort signal after an enrollment's last lesson
// is completed. Implementations must not assume they run on the request
// path; failures are logged by the engine and never surfaced to callers.
type Notifier interface {
	NotifyCompleted(enrolledAt, completedAt time.Time) error
}
