package server

import (
	"telephone-draw/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHome(c *gin.Context) {
	templ.Handler(web.Home(s.roomSummaries())).ServeHTTP(c.Writer, c.Request)
}
