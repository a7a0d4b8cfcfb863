package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Illustar0/oneMonitor/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, table_name, room_group FROM rooms ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.TableName, &r.Group); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *SQLite) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	var r model.Room
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, table_name, room_group FROM rooms WHERE id = ?", id,
	).Scan(&r.ID, &r.Name, &r.TableName, &r.Group)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &r, nil
}

func (s *SQLite) UpsertRoom(ctx context.Context, room model.Room) error {
	table, err := readingTable(room.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"REPLACE INTO rooms (id, name, table_name, room_group) VALUES (?, ?, ?, ?)",
		room.ID, room.Name, table, room.Group,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert room: %w", err)
	}

	// Identifier is sanitizer-derived, never caller-chosen.
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			timestamp   INTEGER PRIMARY KEY NOT NULL,
			electricity REAL NOT NULL
		)`, table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create reading table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateRoom(ctx context.Context, room model.Room) error {
	table, err := readingTable(room.ID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET name = ?, table_name = ?, room_group = ? WHERE id = ?",
		room.Name, table, room.Group, room.ID,
	)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("room %q not found", room.ID)
	}
	return nil
}

func (s *SQLite) DeleteRoom(ctx context.Context, id string) error {
	table, err := readingTable(id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete room: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop reading table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (s *SQLite) AppendReading(ctx context.Context, roomID string, reading model.Reading) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !model.ValidTableName(room.TableName) {
		return fmt.Errorf("room %q: stored table name %q fails sanitizer", roomID, room.TableName)
	}

	// Duplicate timestamps overwrite, last writer wins.
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (timestamp, electricity) VALUES (?, ?)", room.TableName),
		reading.Timestamp, reading.Electricity,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *SQLite) ListReadings(ctx context.Context, roomID string) ([]model.Reading, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !model.ValidTableName(room.TableName) {
		return nil, fmt.Errorf("room %q: stored table name %q fails sanitizer", roomID, room.TableName)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT timestamp, electricity FROM %s ORDER BY timestamp", room.TableName))
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var readings []model.Reading
	for rows.Next() {
		var r model.Reading
		if err := rows.Scan(&r.Timestamp, &r.Electricity); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// readingTable derives and validates the schema identifier for a room's
// reading table.
func readingTable(roomID string) (string, error) {
	if !model.ValidRoomID(roomID) {
		return "", fmt.Errorf("invalid room id %q", roomID)
	}
	table := model.RoomTableName(roomID)
	if !model.ValidTableName(table) {
		return "", fmt.Errorf("room %q: derived table name %q fails sanitizer", roomID, table)
	}
	return table, nil
}
