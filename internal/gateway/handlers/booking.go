package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/domain"
	"github.com/Pankaj72885/care.xyz/internal/booking/repository"
	booksvc "github.com/Pankaj72885/care.xyz/internal/booking/service"
)

type BookingHandler struct {
	svc  *booksvc.BookingSvc
	repo *repository.BookingRepo
}

func NewBookingHandler(svc *booksvc.BookingSvc, repo *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{svc: svc, repo: repo}
}

// POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var in struct {
		ServiceID     string `json:"service_id" binding:"required"`
		DurationUnit  string `json:"duration_unit" binding:"required"`
		DurationValue int    `json:"duration_value" binding:"required"`
		Division      string `json:"division" binding:"required"`
		District      string `json:"district" binding:"required"`
		City          string `json:"city" binding:"required"`
		Area          string `json:"area" binding:"required"`
		Address       string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.Create(c.Request.Context(), callerID(c), booksvc.CreateInput{
		ServiceID:     in.ServiceID,
		DurationUnit:  domain.DurationUnit(in.DurationUnit),
		DurationValue: in.DurationValue,
		Division:      in.Division,
		District:      in.District,
		City:          in.City,
		Area:          in.Area,
		Address:       in.Address,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /v1/bookings: the caller's own bookings.
func (h *BookingHandler) ListMine(c *gin.Context) {
	page, size := pageParams(c)
	bookings, total, err := h.svc.ListForUser(c.Request.Context(), callerID(c), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page + 1, "page_size": size})
}

// GET /v1/bookings/:id: owner or admin; the payment row rides along when
// one exists.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), callerID(c), isAdmin(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	out := gin.H{"booking": b}
	if p, err := h.repo.PaymentByBookingID(c.Request.Context(), b.ID); err == nil {
		out["payment"] = p
	} else if !errors.Is(err, apperr.ErrNotFound) {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.svc.Cancel(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /v1/bookings/:id/complete
func (h *BookingHandler) Complete(c *gin.Context) {
	b, err := h.svc.Complete(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ---------- admin ----------

// GET /v1/admin/bookings?status=
func (h *BookingHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	bookings, total, err := h.svc.ListAll(c.Request.Context(), page, size, domain.Status(c.Query("status")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page + 1, "page_size": size})
}

// PUT /v1/admin/bookings/:id/status: lifecycle rules apply.
func (h *BookingHandler) AdminSetStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.AdminSetStatus(c.Request.Context(), c.Param("id"), domain.Status(in.Status))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /v1/admin/bookings/:id/status/force: bypasses lifecycle rules.
func (h *BookingHandler) AdminForceStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.AdminForceStatus(c.Request.Context(), c.Param("id"), domain.Status(in.Status))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
