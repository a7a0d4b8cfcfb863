package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the discriminator carried in every API response envelope.
type Status string

const (
	StatusSuccess Status = "success" // Request handled, data is valid
	StatusError   Status = "error"   // Auth, storage or server failure
	StatusFail    Status = "fail"    // Request validation failure
)

// Envelope is the uniform API response body.
type Envelope struct {
	Status Status `json:"status"`
	Msg    any    `json:"msg"`
	Data   any    `json:"data"`
}

// Room represents one electricity-metered unit.
//
// The JSON shape matches the API wire contract; the YAML shape matches the
// local room declaration file, where table_name is always derived and the
// push target is never sent over the wire.
type Room struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	TableName string `json:"table_name" yaml:"-"`
	Group     string `json:"room_group" yaml:"group"`
	Push      string `json:"-" yaml:"push,omitempty"`
}

// Reading is one timestamped balance observation for a room.
type Reading struct {
	Timestamp   int64   `json:"timestamp"`
	Electricity float64 `json:"electricity"`
}

var (
	roomIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// RoomTableName derives the per-room reading table name from a room id.
// The derivation is deterministic; callers never pick table names
// independently.
func RoomTableName(id string) string {
	return "room_" + strings.ReplaceAll(id, "-", "_")
}

// ValidRoomID reports whether id is safe to use as a room identifier.
func ValidRoomID(id string) bool {
	return id != "" && roomIDPattern.MatchString(id)
}

// ValidTableName reports whether name is safe to splice into schema DDL.
// Table identifiers cannot be parameterized, so everything that reaches
// the store must pass this allow-list first.
func ValidTableName(name string) bool {
	return name != "" && tableNamePattern.MatchString(name)
}

// Validate checks a room record at the API and config boundaries.
func (r Room) Validate() error {
	if !ValidRoomID(r.ID) {
		return fmt.Errorf("invalid room id %q", r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("room %q: missing name", r.ID)
	}
	if r.TableName != "" && r.TableName != RoomTableName(r.ID) {
		return fmt.Errorf("room %q: table_name %q does not match derived name %q",
			r.ID, r.TableName, RoomTableName(r.ID))
	}
	return nil
}
