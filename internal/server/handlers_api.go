package server

import (
	"net/http"

	"telephone-draw/internal/web"

	"github.com/gin-gonic/gin"
)

type roomURI struct {
	RoomID string `uri:"roomID" binding:"required,roomid"`
}

func (s *Server) handleGetRoom(c *gin.Context) {
	var req roomURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	snap, ok := s.registry.Snapshot(req.RoomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.roomSummaries()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"rooms":       s.registry.Len(),
		"connections": s.ws.Len(),
	})
}

func (s *Server) roomSummaries() []web.RoomSummary {
	summaries := make([]web.RoomSummary, 0)
	for _, room := range s.registry.Summaries() {
		summaries = append(summaries, web.RoomSummary{
			ID:      room.ID,
			Phase:   string(room.Phase),
			Players: room.Players,
		})
	}
	return summaries
}
