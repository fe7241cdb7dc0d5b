package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/model"
	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/service"
)

type MarketHandler struct {
	svc *service.SettlementService
}

func NewMarketHandler(svc *service.SettlementService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func (h *MarketHandler) BuyNFT(c *gin.Context) {
	var req model.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	ev, err := h.svc.Buy(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

func (h *MarketHandler) BuyBundle(c *gin.Context) {
	var req model.BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	evs, err := h.svc.BuyBundle(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlements": evs})
}

func (h *MarketHandler) AcceptOffer(c *gin.Context) {
	var req model.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	ev, err := h.svc.AcceptOffer(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ev)
}
