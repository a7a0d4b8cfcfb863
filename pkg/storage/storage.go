package storage

import (
	"context"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

// Store defines the persistence layer for the room registry and the
// per-room reading tables.
type Store interface {
	// ListRooms returns every registered room.
	ListRooms(ctx context.Context) ([]model.Room, error)

	// GetRoom retrieves a room by id.
	GetRoom(ctx context.Context, id string) (*model.Room, error)

	// UpsertRoom creates or replaces a room record and provisions its
	// reading table.
	UpsertRoom(ctx context.Context, room model.Room) error

	// UpdateRoom overwrites the metadata of an existing room.
	UpdateRoom(ctx context.Context, room model.Room) error

	// DeleteRoom removes a room record and drops its reading table.
	DeleteRoom(ctx context.Context, id string) error

	// AppendReading stores one balance observation for a room. A reading
	// with an existing timestamp replaces the previous one.
	AppendReading(ctx context.Context, roomID string, reading model.Reading) error

	// ListReadings returns a room's full time series in timestamp order.
	ListReadings(ctx context.Context, roomID string) ([]model.Reading, error)

	// Close releases resources.
	Close() error
}
