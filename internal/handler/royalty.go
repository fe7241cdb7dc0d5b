package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/model"
	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/service"
)

type RoyaltyHandler struct {
	svc *service.SettlementService
}

func NewRoyaltyHandler(svc *service.SettlementService) *RoyaltyHandler {
	return &RoyaltyHandler{svc: svc}
}

func (h *RoyaltyHandler) GetRoyalty(c *gin.Context) {
	resp, err := h.svc.GetRoyalty(c.Param("collection"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RoyaltyHandler) SetRoyalty(c *gin.Context) {
	var req model.SetRoyaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.SetRoyalty(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
