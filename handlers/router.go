package handlers

import (
	"kiosk/core"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS, the client access list and
// every API route. A nil acl admits every client.
func NewRouter(h *Handlers, acl *core.AccessList) *gin.Engine {
	r := gin.Default()

	r.Use(accessControl(acl))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/api/health")
	})

	h.Register(r)
	return r
}

// accessControl rejects clients outside acl. The socket peer address is
// checked, never forwarding headers.
func accessControl(acl *core.AccessList) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !acl.AllowsHost(c.RemoteIP()) {
			log.Printf("Rejected API request from %s: %s %s", c.RemoteIP(), c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			return
		}
		c.Next()
	}
}
