package handlers

import (
	"net/http"

	"storeadmin/internal/erpnext"
	"storeadmin/internal/kvstore"
	"storeadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

type ERPNextHandler struct {
	store  kvstore.Store
	client *erpnext.Client
	logger *logger.Logger
}

func NewERPNextHandler(store kvstore.Store, logger *logger.Logger) *ERPNextHandler {
	return &ERPNextHandler{
		store:  store,
		client: erpnext.NewClient(),
		logger: logger,
	}
}

func (h *ERPNextHandler) settings(c *gin.Context) (erpnext.Settings, bool) {
	settings, err := erpnext.LoadSettings(h.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ERPNext settings"})
		return erpnext.Settings{}, false
	}
	if !settings.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": erpnext.ErrNotConfigured.Error()})
		return erpnext.Settings{}, false
	}
	return settings, true
}

func (h *ERPNextHandler) GetSettings(c *gin.Context) {
	settings, err := erpnext.LoadSettings(h.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ERPNext settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *ERPNextHandler) UpdateSettings(c *gin.Context) {
	var settings erpnext.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := erpnext.SaveSettings(h.store, settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save ERPNext settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

// Test runs the connectivity self-test and returns the step-by-step trace
// alongside the result. Credentials may come in the body; stored settings
// are the fallback so the saved configuration can be verified too.
func (h *ERPNextHandler) Test(c *gin.Context) {
	var req erpnext.Settings
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if !req.Configured() {
		stored, err := erpnext.LoadSettings(h.store)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ERPNext settings"})
			return
		}
		if req.URL == "" {
			req.URL = stored.URL
		}
		if req.APIKey == "" {
			req.APIKey = stored.APIKey
		}
		if req.APISecret == "" {
			req.APISecret = stored.APISecret
		}
	}

	var trace []gin.H
	result := h.client.TestConnection(c.Request.Context(), req.URL, req.APIKey, req.APISecret,
		func(step string, details map[string]interface{}) {
			h.logger.Debug("ERPNext self-test: %s", step)
			trace = append(trace, gin.H{"step": step, "details": details})
		})

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"message": result.Message,
		"details": result.Details,
		"trace":   trace,
	})
}

func (h *ERPNextHandler) ListClients(c *gin.Context) {
	settings, ok := h.settings(c)
	if !ok {
		return
	}

	clients, err := h.client.FetchCustomers(c.Request.Context(), settings.URL, settings.APIKey, settings.APISecret, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}

func (h *ERPNextHandler) GetClient(c *gin.Context) {
	settings, ok := h.settings(c)
	if !ok {
		return
	}

	client, err := h.client.FetchCustomerDetail(c.Request.Context(), settings.URL, settings.APIKey, settings.APISecret, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": client})
}

func (h *ERPNextHandler) ListClientOrders(c *gin.Context) {
	settings, ok := h.settings(c)
	if !ok {
		return
	}

	orders, err := h.client.FetchCustomerOrders(c.Request.Context(), settings.URL, settings.APIKey, settings.APISecret, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (h *ERPNextHandler) ListClientComments(c *gin.Context) {
	settings, ok := h.settings(c)
	if !ok {
		return
	}

	comments, err := h.client.FetchCustomerComments(c.Request.Context(), settings.URL, settings.APIKey, settings.APISecret, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}
