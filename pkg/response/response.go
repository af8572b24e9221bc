package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the API response envelope.
type Body struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK sends 200 with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends 201 with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Fail aborts the handler chain with an error envelope.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Body{Success: false, Error: msg})
}

func BadRequest(c *gin.Context, msg string)   { Fail(c, http.StatusBadRequest, msg) }
func Unauthorized(c *gin.Context, msg string) { Fail(c, http.StatusUnauthorized, msg) }

// PayloadTooLarge is used when the upload exceeds MAX_UPLOAD_MB.
func PayloadTooLarge(c *gin.Context, msg string) { Fail(c, http.StatusRequestEntityTooLarge, msg) }

// UnprocessableEntity is used when the recording decoded but could not be transcribed.
func UnprocessableEntity(c *gin.Context, msg string) { Fail(c, http.StatusUnprocessableEntity, msg) }

func Internal(c *gin.Context, msg string) { Fail(c, http.StatusInternalServerError, msg) }
