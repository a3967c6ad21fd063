package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// kvMaxTTL caps how long a bridge value may live. The store exists to hand a
// login token from the web checkout back to the extension, which polls within
// seconds.
const (
	kvDefaultTTL = 10 * time.Minute
	kvMaxTTL     = time.Hour
)

type kvSetRequest struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	TTLSec int    `json:"ttlSec,omitempty"`
}

// KVGet reads a bridge value.
func (a *App) KVGet(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	value, found, err := a.KV.Get(r.Context(), key)
	if err != nil {
		a.Logger.Error().Err(err).Str("key", key).Msg("kv read failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	if !found {
		a.error(w, http.StatusNotFound, "NOT_FOUND")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// KVSet writes a bridge value with a bounded TTL.
func (a *App) KVSet(w http.ResponseWriter, r *http.Request) {
	var req kvSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" || req.Value == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	ttl := kvDefaultTTL
	if req.TTLSec > 0 {
		ttl = time.Duration(req.TTLSec) * time.Second
	}
	if ttl > kvMaxTTL {
		ttl = kvMaxTTL
	}

	if err := a.KV.Set(r.Context(), req.Key, req.Value, ttl); err != nil {
		a.Logger.Error().Err(err).Str("key", req.Key).Msg("kv write failed")
		a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}
