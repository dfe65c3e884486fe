package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gameofchests/internal/api/apierr"
	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/participant"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPongWait   = time.Minute
	socketPingPeriod = socketPongWait * 9 / 10
	socketSendBuffer = 16
)

// Intent types accepted over the socket
const (
	IntentJoin   = "join"
	IntentLeave  = "leave"
	IntentAssume = "assume"
	IntentOffer  = "offer"
	IntentPlace  = "place"
	IntentReset  = "reset"
)

// Message types sent over the socket
const (
	MessageSnapshot = "snapshot"
	MessageOK       = "ok"
	MessageError    = "error"
)

// Intent is one client request sent over the socket
type Intent struct {
	// ID is echoed back in the reply
	ID           string `json:"id,omitempty"`
	Type         string `json:"type"`
	Role         string `json:"role,omitempty"`
	Basket       *int   `json:"basket,omitempty"`
	Coin         *int   `json:"coin,omitempty"`
	CoinCount    *int   `json:"coin_count,omitempty"`
	Compensation *int   `json:"compensation,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
}

// Message is one server message sent over the socket
type Message struct {
	Type  string           `json:"type"`
	ID    string           `json:"id,omitempty"`
	Room  *response.Room   `json:"room,omitempty"`
	Role  string           `json:"role,omitempty"`
	Error *apierr.APIError `json:"error,omitempty"`
}

// SocketHandler serves a two-way WebSocket session for one room.
// Snapshots are pushed on every commit; intents are answered with ok or error.
type SocketHandler struct {
	roomController room.ControllerInterface
	gameController game.ControllerInterface
	storage        storage.Storage
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewSocketHandler creates a new WebSocket handler
func NewSocketHandler(
	roomController room.ControllerInterface,
	gameController game.ControllerInterface,
	storage storage.Storage,
	logger *slog.Logger,
) *SocketHandler {
	return &SocketHandler{
		roomController: roomController,
		gameController: gameController,
		storage:        storage,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "websocket")),
	}
}

// Serve handles GET /api/v1/rooms/{id}/ws
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())
	id := roomID(r)

	if _, err := h.roomController.GetRoom(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := participant.NewSession(ctx, caller, h.roomController, h.gameController, h.storage, h.logger)
	defer session.Close()

	out := newOutbox()
	session.OnChange(func(snap participant.Snapshot) {
		room := response.RoomFromSnapshot(snap)
		out.snapshot(Message{Type: MessageSnapshot, Room: &room, Role: string(snap.Role)})
	})

	writerDone := make(chan struct{})
	go h.writeLoop(ctx, conn, out, writerDone)

	if err := session.Watch(ctx, id); err != nil {
		out.reply(errorMessage("", err))
	}

	h.readLoop(ctx, conn, session, id, out)
	cancel()
	<-writerDone
}

func (h *SocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *participant.Session, id model.RoomID, out *outbox) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	for {
		var intent Intent
		if err := conn.ReadJSON(&intent); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed", slog.Any("error", err))
			}
			return
		}

		if err := h.apply(ctx, session, id, intent); err != nil {
			out.reply(errorMessage(intent.ID, err))
			continue
		}
		out.reply(Message{Type: MessageOK, ID: intent.ID})
	}
}

// apply translates one intent into a session call
func (h *SocketHandler) apply(ctx context.Context, session *participant.Session, id model.RoomID, intent Intent) error {
	switch intent.Type {
	case IntentJoin:
		hint, err := model.ParseRole(intent.Role)
		if err != nil {
			return err
		}
		return session.JoinRoom(ctx, id, hint)

	case IntentLeave:
		if err := session.LeaveRoom(ctx); err != nil {
			return err
		}
		// Keep watching as a spectator
		return session.Watch(ctx, id)

	case IntentAssume:
		role, err := model.ParseRole(intent.Role)
		if err != nil {
			return err
		}
		if role == "" {
			return apierr.NewInvalidRequestError("role is required")
		}
		req := request.AssumeRoleRequest{CoinCount: intent.CoinCount, Compensation: intent.Compensation}
		return session.AssumeRole(ctx, room.AssumeParams{
			Role:        role,
			Settings:    req.Settings(),
			DisplayName: intent.DisplayName,
		})

	case IntentOffer:
		if intent.Basket == nil {
			return apierr.NewInvalidRequestError("basket is required")
		}
		return session.OfferBasket(ctx, *intent.Basket)

	case IntentPlace:
		if intent.Coin == nil {
			return apierr.NewInvalidRequestError("coin is required")
		}
		return session.PlaceCoin(ctx, *intent.Coin)

	case IntentReset:
		req := request.ResetGameRequest{CoinCount: intent.CoinCount, Compensation: intent.Compensation}
		return session.ResetGame(ctx, req.Params())
	}
	return apierr.NewInvalidRequestError("unknown intent type " + intent.Type)
}

func (h *SocketHandler) writeLoop(ctx context.Context, conn *websocket.Conn, out *outbox, done chan struct{}) {
	defer close(done)
	defer conn.Close()

	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-out.replies:
			if !h.write(conn, msg) {
				return
			}

		case <-out.ready:
			msg, ok := out.takeSnapshot()
			if ok && !h.write(conn, msg) {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(socketWriteWait))
			return
		}
	}
}

func (h *SocketHandler) write(conn *websocket.Conn, msg Message) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", slog.Any("error", err))
		return false
	}
	return true
}

// outbox queues replies in order and keeps only the newest unsent snapshot
type outbox struct {
	replies chan Message
	ready   chan struct{}

	mu     sync.Mutex
	latest *Message
}

func newOutbox() *outbox {
	return &outbox{
		replies: make(chan Message, socketSendBuffer),
		ready:   make(chan struct{}, 1),
	}
}

// reply queues msg, dropping it if the client is too slow
func (o *outbox) reply(msg Message) {
	select {
	case o.replies <- msg:
	default:
	}
}

func (o *outbox) snapshot(msg Message) {
	o.mu.Lock()
	o.latest = &msg
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

func (o *outbox) takeSnapshot() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.latest == nil {
		return Message{}, false
	}
	msg := *o.latest
	o.latest = nil
	return msg, true
}

func errorMessage(id string, err error) Message {
	_, apiErr := apierr.Describe(err)
	return Message{Type: MessageError, ID: id, Error: &apiErr}
}
