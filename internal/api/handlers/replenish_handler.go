package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReplenishHandler struct {
	service *service.ReplenishService
}

func NewReplenishHandler(service *service.ReplenishService) *ReplenishHandler {
	return &ReplenishHandler{service: service}
}

// GetRecommendation handles GET /products/:id/recommendation
func (h *ReplenishHandler) GetRecommendation(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.GetRecommendation(c.Request.Context(), productID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetLeadTimeProfile handles GET /suppliers/:id/lead_time
func (h *ReplenishHandler) GetLeadTimeProfile(c *gin.Context) {
	supplierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "0"))
	profile, err := h.service.GetLeadTimeProfile(c.Request.Context(), supplierID, months)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetSalesProfile handles GET /products/:id/sales_profile
func (h *ReplenishHandler) GetSalesProfile(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "0"))
	profile, err := h.service.GetSalesProfile(c.Request.Context(), productID, months)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type scanRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

// Scan handles POST /scan. An empty body scans the whole catalog.
func (h *ReplenishHandler) Scan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	result, err := h.service.Scan(c.Request.Context(), req.ProductIDs)
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "scan failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":  result.Summary,
		"alerts":   result.Alerts,
		"scanned":  result.Scanned,
		"skipped":  result.Skipped,
		"duration": result.Duration.String(),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func respondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsNoData(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
