package http

import "github.com/gin-gonic/gin"

// Envelope es la forma uniforme de toda respuesta del API:
// {success, data, message}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
	c.Abort()
}
