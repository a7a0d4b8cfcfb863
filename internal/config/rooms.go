package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

type roomsFile struct {
	Rooms []model.Room `yaml:"rooms"`
}

// LoadRooms reads the room declaration YAML and validates it against the
// configured push targets. The declaration order is preserved; the poller
// visits rooms in this order.
func LoadRooms(path string, pushes map[string]PushConfig) ([]model.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms file %s: %w", path, err)
	}

	var rf roomsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rooms file %s: %w", path, err)
	}
	if len(rf.Rooms) == 0 {
		return nil, fmt.Errorf("rooms file %s: no rooms declared", path)
	}

	seen := make(map[string]struct{}, len(rf.Rooms))
	for i := range rf.Rooms {
		room := &rf.Rooms[i]
		if err := room.Validate(); err != nil {
			return nil, fmt.Errorf("rooms file %s: %w", path, err)
		}
		if _, dup := seen[room.ID]; dup {
			return nil, fmt.Errorf("rooms file %s: duplicate room id %q", path, room.ID)
		}
		seen[room.ID] = struct{}{}

		if room.Push != "" {
			if _, ok := pushes[room.Push]; !ok {
				return nil, fmt.Errorf("rooms file %s: room %q references undefined push target %q",
					path, room.ID, room.Push)
			}
		}

		room.TableName = model.RoomTableName(room.ID)
	}

	return rf.Rooms, nil
}
