package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

// Reconciler synchronizes the locally declared room list with the remote
// registry.
type Reconciler struct {
	registry Registry
	rooms    []model.Room
	logger   *slog.Logger
}

// NewReconciler creates a reconciler over the given local room declarations.
func NewReconciler(registry Registry, rooms []model.Room, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		rooms:    rooms,
		logger:   logger,
	}
}

// Run performs one reconciliation pass. Failing to read the remote registry
// is fatal and returned; failures on individual rooms are logged and
// skipped, since later passes self-heal. Remote rooms absent locally are
// deleted only when prune is set.
func (r *Reconciler) Run(ctx context.Context, prune bool) error {
	r.logger.Info("synchronizing room registry", "rooms", len(r.rooms), "prune", prune)

	remote, err := r.registry.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list remote rooms: %w", err)
	}

	remoteByID := make(map[string]model.Room, len(remote))
	for _, room := range remote {
		remoteByID[room.ID] = room
	}
	localIDs := make(map[string]struct{}, len(r.rooms))
	for _, room := range r.rooms {
		localIDs[room.ID] = struct{}{}
	}

	for _, room := range r.rooms {
		if _, ok := remoteByID[room.ID]; ok {
			continue
		}
		if err := r.registry.CreateRoom(ctx, withTableName(room)); err != nil {
			r.logger.Error("register room failed", "room", room.ID, "error", err)
			continue
		}
		r.logger.Info("room registered", "room", room.ID)
	}

	if prune {
		for _, room := range remote {
			if _, ok := localIDs[room.ID]; ok {
				continue
			}
			if err := r.registry.DeleteRoom(ctx, room.ID); err != nil {
				r.logger.Error("prune room failed", "room", room.ID, "error", err)
				continue
			}
			r.logger.Info("room pruned", "room", room.ID)
		}
	}

	for _, room := range r.rooms {
		current, ok := remoteByID[room.ID]
		if !ok {
			continue
		}
		if current.Name == room.Name && current.Group == room.Group {
			continue
		}
		if err := r.registry.UpdateRoom(ctx, withTableName(room)); err != nil {
			r.logger.Error("update room failed", "room", room.ID, "error", err)
			continue
		}
		r.logger.Info("room metadata updated", "room", room.ID)
	}

	r.logger.Info("room registry synchronized")
	return nil
}

func withTableName(room model.Room) model.Room {
	room.TableName = model.RoomTableName(room.ID)
	return room
}
