package handlers

import (
	"kiosk/models"
	"kiosk/state"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	streamBuffer    = 32
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
)

// GetScene returns the loaded scene descriptor.
func (h *Handlers) GetScene(c *gin.Context) {
	desc, origin, err := h.app.Scene()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"origin":     origin,
		"descriptor": desc,
		"loading":    h.app.Loading(),
		"caption":    h.app.Caption(),
	})
}

// GetSceneGraph returns the built scene graph including exhibit nodes.
func (h *Handlers) GetSceneGraph(c *gin.Context) {
	g, err := h.app.Graph()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetUI returns the state machine snapshot.
func (h *Handlers) GetUI(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.UI.Snapshot())
}

// PostUIEvent feeds one renderer input event to the state machine.
func (h *Handlers) PostUIEvent(c *gin.Context) {
	var ev state.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tr, err := h.app.HandleEvent(ev)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"transition": tr, "snapshot": h.app.UI.Snapshot()}
	if tr.OpenExhibit > 0 {
		resp["exhibit"] = h.app.ExhibitInfo(tr.OpenExhibit)
	}
	c.JSON(http.StatusOK, resp)
}

// PostFPS updates the window caption from the renderer frame counter.
func (h *Handlers) PostFPS(c *gin.Context) {
	var req models.FPSReport
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"caption": h.app.ReportFPS(req.FPS)})
}

// StreamUI upgrades to a websocket that first sends the snapshot and then
// every handled transition.
func (h *Handlers) StreamUI(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("UI stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := "ws-" + uuid.NewString()
	events := h.app.UI.Subscribe(id, streamBuffer)
	defer h.app.UI.Unsubscribe(id)

	if err := writeJSON(conn, gin.H{"type": "snapshot", "snapshot": h.app.UI.Snapshot()}); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingEvery)
	defer ticker.Stop()

	for {
		select {
		case tr, ok := <-events:
			if !ok {
				return
			}
			if err := writeJSON(conn, gin.H{"type": "transition", "transition": tr}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-h.app.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "kiosk shutting down"),
				time.Now().Add(streamWriteWait))
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(v)
}
