package wsserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/protocol"
	"github.com/mo-shahab/pong-authority/store"
)

// Router wires the websocket endpoint next to the small HTTP surface:
// health, session issuance, a JSON view of the world and, when clientDir is
// set, the static client.
func Router(wsh *WebSocketHandler, origin, clientDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if origin != "" {
		r.Use(cors(origin))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/session", wsh.handleSession)
	r.Get("/state", wsh.handleState)
	r.Handle("/ws", wsh)

	if clientDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(clientDir)))
	}
	return r
}

func (wsh *WebSocketHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	id := identity.New()
	token, exp, err := wsh.Issuer.Issue(id)
	if err != nil {
		wsh.log.Error().Err(err).Msg("failed to issue session")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		PlayerID:  id.String(),
		Token:     token,
		ExpiresAt: exp.Unix(),
	})
}

func (wsh *WebSocketHandler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := wsh.Engine.Snapshot(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "world not initialized"})
		return
	}
	if err != nil {
		wsh.log.Error().Err(err).Msg("failed to read snapshot")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	s, err := protocol.SnapshotStruct(snap)
	if err != nil {
		wsh.log.Error().Err(err).Msg("failed to encode snapshot")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		wsh.log.Error().Err(err).Msg("failed to marshal snapshot")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cors allows a single browser origin to call the HTTP endpoints.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "600")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
