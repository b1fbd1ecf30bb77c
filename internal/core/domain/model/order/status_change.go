package order

import "time"

// StatusChange is an entry of the append-only status history.
type StatusChange struct {
	Status    Status
	ChangedAt time.Time
}
