package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Illustar0/oneMonitor/pkg/model"
)

// withAuth enforces the shared-secret credential and writes an access log
// line with a per-request id.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		if s.authKey == "" || r.Header.Get("Authorization") != s.authKey {
			s.logger.Warn("unauthorized request",
				"id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
			)
			writeEnvelope(w, http.StatusUnauthorized, model.Envelope{
				Status: model.StatusError,
				Msg:    "AuthKey is not carried or is incorrect",
			})
			return
		}

		next(w, r)

		s.logger.Info("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func writeEnvelope(w http.ResponseWriter, code int, env model.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, model.Envelope{Status: model.StatusSuccess, Msg: "", Data: data})
}

func writeFail(w http.ResponseWriter, msg any) {
	writeEnvelope(w, http.StatusUnprocessableEntity, model.Envelope{Status: model.StatusFail, Msg: msg})
}

func writeError(w http.ResponseWriter, msg any) {
	writeEnvelope(w, http.StatusInternalServerError, model.Envelope{Status: model.StatusError, Msg: msg})
}
