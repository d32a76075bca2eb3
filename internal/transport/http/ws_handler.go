package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"media-choice-service/internal/app"
)

type WSHandler struct {
	service  *app.WidgetService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.WidgetService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type togglePayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one learner's widget.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	learnerID := r.URL.Query().Get("learnerId")
	if questionID == "" || learnerID == "" {
		http.Error(w, "missing questionId or learnerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	attached, err := h.service.Attach(ctx, questionID, learnerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, questionID, learnerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	// Queued before the update pump starts so clients always see it first.
	send <- outboundMessage[any]{Type: "attached", Payload: attached}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "view", Payload: view}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.dispatch(ctx, questionID, learnerID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	cancel()
	h.service.Detach(context.WithoutCancel(ctx), questionID, learnerID)
	close(send)
	<-writerDone
}

// dispatch runs one client command. State changes reach the client through
// the subscription, so only results and errors are answered directly.
func (h *WSHandler) dispatch(ctx context.Context, questionID, learnerID string, inbound inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch inbound.Type {
	case "toggle":
		var payload togglePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid toggle payload"), true
		}
		_, err = h.service.Toggle(ctx, questionID, learnerID, payload.Index)
	case "check":
		_, st, err := h.service.Check(ctx, questionID, learnerID)
		if err != nil {
			return errorMessage(err.Error()), true
		}
		return outboundMessage[any]{Type: "result", Payload: st}, true
	case "showSolutions":
		_, err = h.service.ShowSolutions(ctx, questionID, learnerID)
	case "hideSolutions":
		_, err = h.service.HideSolutions(ctx, questionID, learnerID)
	case "retry":
		_, err = h.service.Retry(ctx, questionID, learnerID)
	case "reset":
		_, err = h.service.Reset(ctx, questionID, learnerID)
	default:
		return errorMessage("unsupported message type"), true
	}
	if err != nil {
		return errorMessage(err.Error()), true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
