package handlers

import (
	"net/http"

	"storeadmin/internal/logger"
	"storeadmin/internal/registry"

	"github.com/gin-gonic/gin"
)

type ServerHandler struct {
	registry *registry.Registry
	logger   *logger.Logger
}

func NewServerHandler(reg *registry.Registry, logger *logger.Logger) *ServerHandler {
	return &ServerHandler{
		registry: reg,
		logger:   logger,
	}
}

func (h *ServerHandler) List(c *gin.Context) {
	servers, err := h.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": servers})
}

func (h *ServerHandler) Create(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		URL            string `json:"url" binding:"required"`
		ConsumerKey    string `json:"consumerKey" binding:"required"`
		ConsumerSecret string `json:"consumerSecret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.registry.Add(req.Name, req.URL, req.ConsumerKey, req.ConsumerSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create server"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": profile})
}

func (h *ServerHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var updates registry.ProfileUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Update(id, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Server updated"})
}

func (h *ServerHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.registry.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete server"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *ServerHandler) Activate(c *gin.Context) {
	id := c.Param("id")

	if err := h.registry.SetActive(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Server activated"})
}

// Check probes one server and returns the fresh status without persisting it.
func (h *ServerHandler) Check(c *gin.Context) {
	id := c.Param("id")

	servers, err := h.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}

	for _, server := range servers {
		if server.ID != id {
			continue
		}
		status, errorMessage := h.registry.CheckStatus(c.Request.Context(), server)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"status":       status,
			"errorMessage": errorMessage,
		}})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
}

// CheckAll probes every server sequentially, persists the results and returns
// the refreshed collection.
func (h *ServerHandler) CheckAll(c *gin.Context) {
	if err := h.registry.CheckAllStatuses(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check server statuses"})
		return
	}

	servers, err := h.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": servers})
}
