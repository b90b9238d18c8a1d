// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/yanivhq/yaniv-service/internal/auth"
	"github.com/yanivhq/yaniv-service/internal/database"
	"github.com/yanivhq/yaniv-service/internal/middleware"
	"github.com/yanivhq/yaniv-service/internal/models"
	"github.com/yanivhq/yaniv-service/internal/room"
)

// WSHandler upgrades the connection and runs the message loop for one
// participant. Every participant gets a connection-scoped identity up
// front; an authenticate message may swap in a token-backed one before the
// client enters a room.
func WSHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"yaniv"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			srv.Log.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		if conn.Subprotocol() != "yaniv" {
			srv.Log.Warnf("client connected with invalid subprotocol: %s", conn.Subprotocol())
			conn.Close(BadSubprotocolError, "client must use the 'yaniv' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(srv.Log, r.RemoteAddr, r.URL.Path)

		cl := newClient(conn, srv.Log)
		defer cl.shutdown()

		// A reconnect token lets a dropped client come back as the same
		// identity without a separate authenticate round trip.
		token, err := auth.CreateJWT(cl.playerID().String())
		if err != nil {
			srv.Log.WithError(err).Warn("failed to mint session token")
		}
		cl.send(map[string]string{
			"type":     "welcome",
			"playerId": cl.playerID().String(),
			"token":    token,
		})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		readMessages(ctx, cl, srv)

		// Read loop exit means the connection is gone; let the room decide
		// whether the seat is held or vacated.
		if code := cl.roomCode(); code != "" {
			if rm, ok := srv.Registry.GetRoom(code); ok {
				rm.HandleDisconnect(cl.playerID())
			}
			if sink, ok := srv.sinkFor(code); ok {
				sink.unbind(cl.playerID())
			}
		}
		middleware.LogWebSocketDisconnect(srv.Log, r.RemoteAddr, r.URL.Path, nil)
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

// readMessages pulls client messages until the connection or context dies.
// Malformed frames are dropped without a reply; only legality and
// authorization failures travel back as room_error.
func readMessages(ctx context.Context, cl *client, srv *Server) {
	for {
		msgType, data, err := cl.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				srv.Log.Infof("WebSocket closed normally for player %s", cl.playerID())
			} else if strings.Contains(err.Error(), "context canceled") {
				srv.Log.Infof("WebSocket context canceled for player %s", cl.playerID())
			} else {
				srv.Log.Warnf("WebSocket read error for player %s: %v", cl.playerID(), err)
			}
			return
		}
		if msgType != websocket.MessageText {
			srv.Log.Warnf("ignoring non-text frame from player %s", cl.playerID())
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			srv.Log.Warnf("dropping malformed message from player %s: %v", cl.playerID(), err)
			continue
		}
		dispatch(cl, srv, &msg)
	}
}

func dispatch(cl *client, srv *Server, msg *ClientMessage) {
	switch msg.Type {
	case msgPing:
		cl.send(map[string]string{"type": "pong"})

	case msgAuthenticate:
		handleAuthenticate(cl, srv, msg)

	case msgCreateRoom:
		handleCreateRoom(cl, srv, msg)

	case msgJoinRoom:
		handleJoinRoom(cl, srv, msg)

	case msgLeaveRoom:
		if rm, sink, ok := currentRoom(cl, srv); ok {
			rm.RemovePlayer(cl.playerID(), true)
			sink.unbind(cl.playerID())
			cl.setRoom("")
		}

	case msgAddAI:
		if rm, _, ok := currentRoom(cl, srv); ok {
			name := msg.Name
			if name == "" {
				name = "Bot"
			}
			relayErr(cl, rm.AddAIPlayer(cl.playerID(), name, msg.Avatar))
		}

	case msgRemovePlayer:
		rm, _, ok := currentRoom(cl, srv)
		if !ok {
			return
		}
		target, err := uuid.Parse(msg.PlayerID)
		if err != nil {
			srv.Log.Warnf("dropping remove_player with malformed id %q", msg.PlayerID)
			return
		}
		relayErr(cl, rm.KickPlayer(cl.playerID(), target))

	case msgStartGame:
		if rm, _, ok := currentRoom(cl, srv); ok {
			relayErr(cl, rm.StartGame(cl.playerID()))
		}

	case msgThrowCards:
		rm, _, ok := currentRoom(cl, srv)
		if !ok {
			return
		}
		ids, err := msg.cardIDs()
		if err != nil {
			srv.Log.Warnf("dropping throw_cards from player %s: %v", cl.playerID(), err)
			return
		}
		relayErr(cl, rm.ExecuteMove(cl.playerID(), ids, msg.drawSource()))

	case msgCallYaniv:
		if rm, _, ok := currentRoom(cl, srv); ok {
			relayErr(cl, rm.CallYaniv(cl.playerID()))
		}

	case msgStick:
		if rm, _, ok := currentRoom(cl, srv); ok {
			relayErr(cl, rm.ExecuteStick(cl.playerID()))
		}

	case msgSkipStick:
		if rm, _, ok := currentRoom(cl, srv); ok {
			relayErr(cl, rm.SkipStick(cl.playerID()))
		}

	case msgChat:
		if rm, _, ok := currentRoom(cl, srv); ok {
			rm.Chat(cl.playerID(), msg.Text)
		}

	default:
		srv.Log.Warnf("dropping unknown message type %q from player %s", msg.Type, cl.playerID())
	}
}

// handleAuthenticate swaps the connection-scoped identity for a
// token-backed one. Refused once the client is seated anywhere; rooms key
// seats by player ID.
func handleAuthenticate(cl *client, srv *Server, msg *ClientMessage) {
	if cl.roomCode() != "" {
		cl.sendError("cannot re-authenticate while in a room")
		return
	}
	sub, err := auth.AuthenticateJWT(msg.Token)
	if err != nil {
		cl.conn.Close(InvalidAuthTokenError, "invalid or expired token")
		return
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		cl.conn.Close(InvalidAuthTokenError, "invalid token subject")
		return
	}
	cl.setIdentity(id)

	reply := map[string]string{"type": "authenticated", "playerId": id.String()}
	// A persisted guest gets their last display name back, so a
	// reconnecting client can prefill it.
	if database.Enabled() {
		dbCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if g, err := database.GetGuest(dbCtx, id); err == nil {
			reply["name"] = g.DisplayName
		}
	}
	cl.send(reply)
}

func handleCreateRoom(cl *client, srv *Server, msg *ClientMessage) {
	if cl.roomCode() != "" {
		cl.sendError("already in a room")
		return
	}
	if msg.Name == "" {
		cl.sendError("a display name is required")
		return
	}
	settings := models.DefaultRoomSettings()
	if msg.Settings != nil {
		settings = *msg.Settings
	}
	rm, sink, err := srv.createRoom(settings)
	if err != nil {
		cl.sendError(err.Error())
		return
	}
	sink.bind(cl)
	if err := rm.AddPlayer(cl.playerID(), msg.Name, msg.Avatar, false); err != nil {
		sink.unbind(cl.playerID())
		cl.sendError(err.Error())
		return
	}
	cl.setRoom(rm.Code)
	persistGuest(srv, cl.playerID(), msg.Name)
	cl.send(map[string]string{"type": "room_created", "roomCode": rm.Code})
}

func handleJoinRoom(cl *client, srv *Server, msg *ClientMessage) {
	if cl.roomCode() != "" {
		cl.sendError("already in a room")
		return
	}
	if msg.Name == "" {
		cl.sendError("a display name is required")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(msg.RoomCode))
	rm, ok := srv.Registry.GetRoom(code)
	if !ok {
		cl.sendError("room not found")
		return
	}
	sink, ok := srv.sinkFor(code)
	if !ok {
		cl.sendError("room not found")
		return
	}

	sink.bind(cl)
	err := rm.AddPlayer(cl.playerID(), msg.Name, msg.Avatar, false)
	if errors.Is(err, room.ErrGameInProgress) {
		// Mid-game joins only work as a rejoin onto a held seat.
		_, err = rm.TryRejoinPlayer(msg.Name, msg.Avatar, cl.playerID())
	}
	if err != nil {
		sink.unbind(cl.playerID())
		cl.sendError(err.Error())
		return
	}
	cl.setRoom(code)
	persistGuest(srv, cl.playerID(), msg.Name)
	cl.send(map[string]string{"type": "room_joined", "roomCode": code})
}

// currentRoom resolves the client's room and sink; silently a no-op for
// clients that are not in a room, matching the drop policy for protocol
// misuse.
func currentRoom(cl *client, srv *Server) (*room.Room, *roomSink, bool) {
	code := cl.roomCode()
	if code == "" {
		return nil, nil, false
	}
	rm, ok := srv.Registry.GetRoom(code)
	if !ok {
		cl.setRoom("")
		return nil, nil, false
	}
	sink, ok := srv.sinkFor(code)
	if !ok {
		cl.setRoom("")
		return nil, nil, false
	}
	return rm, sink, true
}

// relayErr forwards a room rejection to the offending client only.
func relayErr(cl *client, err error) {
	if err != nil {
		cl.sendError(err.Error())
	}
}

// persistGuest records the participant when a database is configured.
// Gameplay never waits on the write.
func persistGuest(srv *Server, id uuid.UUID, name string) {
	if !database.Enabled() {
		return
	}
	go func() {
		dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.UpsertGuest(dbCtx, id, name); err != nil {
			srv.Log.WithError(err).Warn("failed to persist guest participant")
		}
	}()
}
