package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illustar0/oneMonitor/internal/server"
	"github.com/Illustar0/oneMonitor/pkg/model"
	"github.com/Illustar0/oneMonitor/pkg/storage"
)

const testAuthKey = "test-key"

func setupServer(t *testing.T) *server.Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return server.NewServer(store, testAuthKey, logger)
}

func doRequest(t *testing.T, srv *server.Server, method, path, authKey string, body string) (*httptest.ResponseRecorder, model.Envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authKey != "" {
		req.Header.Set("Authorization", authKey)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var env model.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return w, env
}

func TestServer_Health(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Auth_Missing(t *testing.T) {
	srv := setupServer(t)
	w, env := doRequest(t, srv, "GET", "/rooms", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, model.StatusError, env.Status)
}

func TestServer_Auth_Wrong(t *testing.T) {
	srv := setupServer(t)
	w, env := doRequest(t, srv, "GET", "/rooms", "wrong-key", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, model.StatusError, env.Status)
}

func TestServer_CreateAndListRooms(t *testing.T) {
	srv := setupServer(t)

	w, env := doRequest(t, srv, "POST", "/rooms", testAuthKey,
		`{"id":"99-11-403","name":"403","table_name":"room_99_11_403","room_group":"Building 99"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusSuccess, env.Status)

	w, env = doRequest(t, srv, "GET", "/rooms", testAuthKey, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "99-11-403", rooms[0].ID)
	assert.Equal(t, "room_99_11_403", rooms[0].TableName)
}

func TestServer_CreateRoom_ValidationFail(t *testing.T) {
	srv := setupServer(t)

	// Hostile id
	w, env := doRequest(t, srv, "POST", "/rooms", testAuthKey,
		`{"id":"r1; DROP TABLE rooms","name":"x","room_group":"g"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.StatusFail, env.Status)

	// Mismatched table name
	w, env = doRequest(t, srv, "POST", "/rooms", testAuthKey,
		`{"id":"r1","name":"x","table_name":"room_other","room_group":"g"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.StatusFail, env.Status)

	// Garbage body
	w, env = doRequest(t, srv, "POST", "/rooms", testAuthKey, `{not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.StatusFail, env.Status)
}

func TestServer_ReadingRoundTrip(t *testing.T) {
	srv := setupServer(t)

	_, env := doRequest(t, srv, "POST", "/rooms", testAuthKey,
		`{"id":"r1","name":"r1","room_group":"g"}`)
	require.Equal(t, model.StatusSuccess, env.Status)

	w, env := doRequest(t, srv, "POST", "/rooms/r1", testAuthKey,
		`{"timestamp":1700000000,"electricity":42.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusSuccess, env.Status)

	w, env = doRequest(t, srv, "GET", "/rooms/r1", testAuthKey, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var readings []model.Reading
	require.NoError(t, json.Unmarshal(data, &readings))
	require.Len(t, readings, 1)
	assert.Equal(t, int64(1700000000), readings[0].Timestamp)
	assert.InDelta(t, 42.5, readings[0].Electricity, 0.0001)
}

func TestServer_AppendReading_Validation(t *testing.T) {
	srv := setupServer(t)
	_, env := doRequest(t, srv, "POST", "/rooms", testAuthKey, `{"id":"r1","name":"r1","room_group":"g"}`)
	require.Equal(t, model.StatusSuccess, env.Status)

	w, env := doRequest(t, srv, "POST", "/rooms/r1", testAuthKey, `{"timestamp":0,"electricity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.StatusFail, env.Status)

	w, env = doRequest(t, srv, "POST", "/rooms/r1", testAuthKey, `{"timestamp":100,"electricity":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.StatusFail, env.Status)
}

func TestServer_AppendReading_UnknownRoom(t *testing.T) {
	srv := setupServer(t)
	w, env := doRequest(t, srv, "POST", "/rooms/nope", testAuthKey,
		`{"timestamp":100,"electricity":1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, model.StatusError, env.Status)
}

func TestServer_UpdateRoom(t *testing.T) {
	srv := setupServer(t)
	_, env := doRequest(t, srv, "POST", "/rooms", testAuthKey, `{"id":"r1","name":"old","room_group":"g1"}`)
	require.Equal(t, model.StatusSuccess, env.Status)

	w, env := doRequest(t, srv, "PUT", "/rooms/r1", testAuthKey,
		`{"id":"r1","name":"new","room_group":"g2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusSuccess, env.Status)

	_, env = doRequest(t, srv, "GET", "/rooms", testAuthKey, "")
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "new", rooms[0].Name)
	assert.Equal(t, "g2", rooms[0].Group)
}

func TestServer_DeleteRoom(t *testing.T) {
	srv := setupServer(t)
	_, env := doRequest(t, srv, "POST", "/rooms", testAuthKey, `{"id":"r1","name":"r1","room_group":"g"}`)
	require.Equal(t, model.StatusSuccess, env.Status)

	w, env := doRequest(t, srv, "DELETE", "/rooms/r1", testAuthKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusSuccess, env.Status)

	_, env = doRequest(t, srv, "GET", "/rooms", testAuthKey, "")
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(data, &rooms))
	assert.Empty(t, rooms)
}
