package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/model"
	"github.com/opensettle/marketgate/internal/pkg/apperrors"
	"github.com/opensettle/marketgate/internal/service"
)

// AdminHandler exposes market configuration and, for deployments on the
// in-memory ledgers, asset and fund provisioning.
type AdminHandler struct {
	svc *service.SettlementService
}

func NewAdminHandler(svc *service.SettlementService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetConfig())
}

func (h *AdminHandler) SetMarketPayee(c *gin.Context) {
	var req model.SetAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.SetMarketPayee(c.Request.Context(), req.Address); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) SetMarketPercent(c *gin.Context) {
	var req model.SetPercentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.SetMarketPercent(c.Request.Context(), req.FeeBps); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) SetPaymentToken(c *gin.Context) {
	var req model.SetAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.SetPaymentToken(c.Request.Context(), req.Address); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) MintAsset(c *gin.Context) {
	var req model.MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.MintAsset(req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) MintFunds(c *gin.Context) {
	var req model.MintFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.MintFunds(req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ApproveAsset(c *gin.Context) {
	var req model.ApproveAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.ApproveAsset(req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ApproveFunds(c *gin.Context) {
	var req model.ApproveFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if err := h.svc.ApproveFunds(req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) OwnerOf(c *gin.Context) {
	resp, err := h.svc.OwnerOf(c.Param("collection"), c.Param("token_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) BalanceOf(c *gin.Context) {
	resp, err := h.svc.BalanceOf(c.Param("address"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
