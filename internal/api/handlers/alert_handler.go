package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	service *service.ReplenishService
}

func NewAlertHandler(service *service.ReplenishService) *AlertHandler {
	return &AlertHandler{service: service}
}

// List handles GET /alerts?unresolved=true
func (h *AlertHandler) List(c *gin.Context) {
	unresolvedOnly := strings.EqualFold(c.DefaultQuery("unresolved", "false"), "true")

	alerts, err := h.service.ListAlerts(c.Request.Context(), unresolvedOnly)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// Summary handles GET /alerts/summary
func (h *AlertHandler) Summary(c *gin.Context) {
	summary, err := h.service.AlertSummary(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Resolve handles POST /alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	alertID := strings.TrimSpace(c.Param("id"))
	if alertID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.service.ResolveAlert(c.Request.Context(), alertID); err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resolved": alertID})
}

// ProductOrdered handles POST /products/:id/ordered, the purchase-order
// creation hook that resolves the product's open alerts.
func (h *AlertHandler) ProductOrdered(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.OnPurchaseOrderCreated(c.Request.Context(), productID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID})
}
