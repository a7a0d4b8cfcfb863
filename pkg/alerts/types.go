package alerts

import "context"

// Level indicates the urgency of a balance alert.
type Level string

const (
	LevelWarning Level = "warning" // Balance below the warning line
	LevelAlarm   Level = "alarm"   // Balance below the alarm line
)

// Alert represents a low-balance notification for a room.
type Alert struct {
	Level    Level   `json:"level"`
	RoomID   string  `json:"room_id"`
	RoomName string  `json:"room_name"`
	Balance  float64 `json:"balance"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
}

// Notifier sends alerts to external push providers.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
