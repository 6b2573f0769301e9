package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// WebsocketHandler upgrades connections and echoes text frames back.
type WebsocketHandler struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWebsocketHandler(log zerolog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Echo handles GET /api/v2/ws/echo. Each text message is answered with
// "echo: <message>" until the peer disconnects.
//
// @Summary      Websocket echo
// @Tags         realtime
// @Success      101
// @Router       /api/v2/ws/echo [get]
func (h *WebsocketHandler) Echo(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				h.log.Debug().Err(err).Msg("websocket read ended")
			}
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, append([]byte("echo: "), msg...)); err != nil {
			h.log.Debug().Err(err).Msg("websocket write failed")
			return nil
		}
	}
}
