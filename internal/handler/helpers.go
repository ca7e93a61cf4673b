package handler

import "github.com/gin-gonic/gin"

// errorDetail writes the error body shape the API exposes on every failure.
func errorDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
