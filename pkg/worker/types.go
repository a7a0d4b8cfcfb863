// Package worker holds the reconcile-and-poll core: it keeps the remote
// room registry in sync with the local declarations and periodically
// ingests balance readings, alerting on low balances.
package worker

import (
	"context"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

// Registry is the subset of the ingest API the worker depends on.
// *apiclient.Client satisfies it.
type Registry interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	CreateRoom(ctx context.Context, room model.Room) error
	UpdateRoom(ctx context.Context, room model.Room) error
	DeleteRoom(ctx context.Context, id string) error
	AppendReading(ctx context.Context, id string, reading model.Reading) error
}

// BalanceReader reads room balances within one authenticated session.
type BalanceReader interface {
	Balance(ctx context.Context, roomID string) (float64, error)
}

// Source is the measurement source. Login is called once per poll cycle;
// sessions are never reused across cycles so that server-side expiry
// self-heals.
type Source interface {
	Login(ctx context.Context) (BalanceReader, error)
}
