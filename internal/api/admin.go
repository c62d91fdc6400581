package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminDashboardHandler greets an admin; role enforcement lives in middleware
func AdminDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("userID") // Set by the JWT middleware
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the admin dashboard",
			"user_id": userID, // Opaque admin user ID
		})
	}
}
