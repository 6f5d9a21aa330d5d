package ws_summary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	http_common "github.com/bmmjam/taptap/internal/delivery/http/common"
	"github.com/bmmjam/taptap/internal/model"
	usecase_session "github.com/bmmjam/taptap/internal/usecase/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS policy is any-origin for the whole API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	hub     *Hub
	session *usecase_session.Usecase

	logger *slog.Logger
}

func NewController(hub *Hub, session *usecase_session.Usecase) *Controller {
	return &Controller{
		hub:     hub,
		session: session,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:room/live", c.live)
}

// live upgrades the connection, sends the current summary immediately
// and keeps pushing updates until the client goes away.
func (c *Controller) live(ctx *gin.Context) {
	room := model.RoomCode(ctx.Param("room"))

	sum, err := c.session.GetSummary(ctx, room)
	if err != nil {
		if errors.Is(err, usecase_session.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
			return
		}
		c.logger.Error("failed to get summary", "error", err)
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 8),
		Room: room,
	}
	c.hub.RegisterClient(client)

	go c.hub.StartClientWriting(client)
	go c.hub.StartClientReading(client)

	c.hub.SummaryChanged(room, sum)
}
