package handlers

import (
	"errors"
	"net/http"

	"storeadmin/internal/chatwoot"
	"storeadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

type ChatwootHandler struct {
	inbox  *chatwoot.Inbox
	logger *logger.Logger
}

func NewChatwootHandler(inbox *chatwoot.Inbox, logger *logger.Logger) *ChatwootHandler {
	return &ChatwootHandler{
		inbox:  inbox,
		logger: logger,
	}
}

// PostEvent accepts a widget payload, either a JSON object or a JSON-encoded
// string, and delivers it to anyone waiting on fetch-info.
func (h *ChatwootHandler) PostEvent(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	payload, err := chatwoot.ParseMessage(raw)
	if err != nil {
		var parseErr *chatwoot.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.inbox.Deliver(payload)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"contact": payload.Data.Contact,
		"agent":   payload.Data.CurrentAgent,
	}})
}

// GetInfo returns the latest widget payload. With wait=true it blocks for
// the next delivery, mirroring the widget's fetch-info round trip and its
// five second deadline.
func (h *ChatwootHandler) GetInfo(c *gin.Context) {
	if c.Query("wait") == "true" {
		payload, err := h.inbox.Await(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": payload, "request": chatwoot.FetchInfoMessage})
		return
	}

	payload := h.inbox.Latest()
	if payload == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "message": "No Chatwoot data received yet."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payload})
}
