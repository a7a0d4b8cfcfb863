package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Illustar0/oneMonitor/pkg/model"
	"github.com/Illustar0/oneMonitor/pkg/storage"
)

// Server exposes the authenticated ingest API over a Store.
type Server struct {
	store   storage.Store
	authKey string
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates an ingest API server.
func NewServer(store storage.Store, authKey string, logger *slog.Logger) *Server {
	s := &Server{
		store:   store,
		authKey: authKey,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /rooms", s.withAuth(s.handleListRooms))
	s.mux.HandleFunc("POST /rooms", s.withAuth(s.handleCreateRoom))
	s.mux.HandleFunc("GET /rooms/{id}", s.withAuth(s.handleListReadings))
	s.mux.HandleFunc("POST /rooms/{id}", s.withAuth(s.handleAppendReading))
	s.mux.HandleFunc("PUT /rooms/{id}", s.withAuth(s.handleUpdateRoom))
	s.mux.HandleFunc("DELETE /rooms/{id}", s.withAuth(s.handleDeleteRoom))
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		s.logger.Error("list rooms", "error", err)
		writeError(w, err.Error())
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeSuccess(w, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeFail(w, "invalid request body: "+err.Error())
		return
	}
	if err := room.Validate(); err != nil {
		writeFail(w, err.Error())
		return
	}

	if err := s.store.UpsertRoom(ctx, room); err != nil {
		s.logger.Error("upsert room", "room", room.ID, "error", err)
		writeError(w, err.Error())
		return
	}
	s.logger.Info("room registered", "room", room.ID)
	writeSuccess(w, nil)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	id := r.PathValue("id")
	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeFail(w, "invalid request body: "+err.Error())
		return
	}
	room.ID = id
	if err := room.Validate(); err != nil {
		writeFail(w, err.Error())
		return
	}

	if err := s.store.UpdateRoom(ctx, room); err != nil {
		s.logger.Error("update room", "room", id, "error", err)
		writeError(w, err.Error())
		return
	}
	s.logger.Info("room updated", "room", id)
	writeSuccess(w, nil)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	id := r.PathValue("id")
	if !model.ValidRoomID(id) {
		writeFail(w, "invalid room id")
		return
	}

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		s.logger.Error("delete room", "room", id, "error", err)
		writeError(w, err.Error())
		return
	}
	s.logger.Info("room deleted", "room", id)
	writeSuccess(w, nil)
}

func (s *Server) handleAppendReading(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	id := r.PathValue("id")
	var reading model.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		writeFail(w, "invalid request body: "+err.Error())
		return
	}
	if reading.Timestamp <= 0 {
		writeFail(w, "timestamp must be positive")
		return
	}
	if reading.Electricity < 0 {
		writeFail(w, "electricity must be non-negative")
		return
	}

	if err := s.store.AppendReading(ctx, id, reading); err != nil {
		s.logger.Error("append reading", "room", id, "error", err)
		writeError(w, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	id := r.PathValue("id")
	readings, err := s.store.ListReadings(ctx, id)
	if err != nil {
		s.logger.Error("list readings", "room", id, "error", err)
		writeError(w, err.Error())
		return
	}
	if readings == nil {
		readings = []model.Reading{}
	}
	writeSuccess(w, readings)
}

func timeoutCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}
