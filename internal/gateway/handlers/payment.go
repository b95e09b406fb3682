package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pankaj72885/care.xyz/internal/booking/repository"
	paysvc "github.com/Pankaj72885/care.xyz/internal/payment/service"
)

type PaymentHandler struct {
	svc  *paysvc.PaymentSvc
	repo *repository.BookingRepo
}

func NewPaymentHandler(svc *paysvc.PaymentSvc, repo *repository.BookingRepo) *PaymentHandler {
	return &PaymentHandler{svc: svc, repo: repo}
}

// POST /v1/payments/charges/card
func (h *PaymentHandler) ChargeCard(c *gin.Context) {
	var in struct {
		BookingID string `json:"booking_id" binding:"required"`
		CardToken string `json:"card_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := h.svc.CreateCardCharge(c.Request.Context(), callerID(c), in.BookingID, in.CardToken)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"charge_id": ch.ID, "status": ch.Status,
		"amount": ch.Amount, "currency": ch.Currency,
		"authorize_uri": ch.AuthorizeURI,
	})
}

// POST /v1/payments/charges/source: offsite flows that finish through
// the webhook.
func (h *PaymentHandler) ChargeSource(c *gin.Context) {
	var in struct {
		BookingID string `json:"booking_id" binding:"required"`
		SourceID  string `json:"source_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := h.svc.CreateSourceCharge(c.Request.Context(), callerID(c), in.BookingID, in.SourceID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"charge_id": ch.ID, "status": ch.Status,
		"amount": ch.Amount, "currency": ch.Currency,
		"authorize_uri": ch.AuthorizeURI,
	})
}

// GET /v1/payments/charges/:id: client polling after a redirect flow.
func (h *PaymentHandler) GetCharge(c *gin.Context) {
	ch, err := h.svc.GetCharge(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charge_id": ch.ID, "status": ch.Status, "amount": ch.Amount, "currency": ch.Currency})
}

// GET /payments/return: landing page after an offsite authorize redirect.
// The real outcome arrives through the webhook, so this only acknowledges.
func (h *PaymentHandler) Return(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "received", "message": "payment is being processed"})
}

// GET /v1/admin/payments
func (h *PaymentHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	payments, total, err := h.repo.ListPayments(c.Request.Context(), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total, "page": page + 1, "page_size": size})
}
