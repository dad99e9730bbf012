package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/elfshop/storebot/internal/chat"
	"github.com/go-chi/chi/v5"
)

// WebhookHandler receives inbound chat events from the gateway. Each request
// is one inbound event and runs as its own task; per-identity serialization
// happens downstream in the session store.
type WebhookHandler struct {
	Dispatch func(ctx context.Context, ev chat.Event)
}

type inboundEvent struct {
	From     string    `json:"from"`
	Kind     chat.Kind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	ImageRef string    `json:"image_ref,omitempty"`
	Data     string    `json:"data,omitempty"` // action token
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhook/events", h.handleEvent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *WebhookHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var in inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.From == "" || !in.Kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing from or kind"})
		return
	}

	ev := chat.Event{From: in.From, Kind: in.Kind, Text: in.Text, ImageRef: in.ImageRef}
	if in.Kind == chat.KindAction {
		act, err := chat.ParseAction(in.Data)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad action token"})
			return
		}
		ev.Action = act
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	h.Dispatch(ctx, ev)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
