// Package root serves the endpoints that don't belong to a resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used by load balancers to check if the server is alive
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate answers 200 when the JWT middleware in front of it accepted the token
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID": c.GetString("userID"),
	})
}
