package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catsvc "github.com/Pankaj72885/care.xyz/internal/catalog/service"
)

type CatalogHandler struct {
	svc *catsvc.CatalogSvc
}

func NewCatalogHandler(svc *catsvc.CatalogSvc) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type serviceInput struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	BaseRate    int64  `json:"base_rate" binding:"required"`
	ImageURL    string `json:"image_url"`
}

func (in serviceInput) toSvc() catsvc.ServiceInput {
	return catsvc.ServiceInput{
		Title: in.Title, Slug: in.Slug, Description: in.Description,
		Category: in.Category, BaseRate: in.BaseRate, ImageURL: in.ImageURL,
	}
}

// GET /v1/services?page=&page_size=&category=
// Public listing only shows active services.
func (h *CatalogHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	services, total, err := h.svc.List(c.Request.Context(), page, size, c.Query("category"), true)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services, "total": total, "page": page + 1, "page_size": size})
}

// GET /v1/services/:slug
func (h *CatalogHandler) GetBySlug(c *gin.Context) {
	svc, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ---------- admin ----------

// GET /v1/admin/services: includes inactive rows.
func (h *CatalogHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	services, total, err := h.svc.List(c.Request.Context(), page, size, c.Query("category"), false)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services, "total": total, "page": page + 1, "page_size": size})
}

// POST /v1/admin/services
func (h *CatalogHandler) Create(c *gin.Context) {
	var in serviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	svc, err := h.svc.Create(c.Request.Context(), in.toSvc())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// PUT /v1/admin/services/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	var in serviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	svc, err := h.svc.Update(c.Request.Context(), c.Param("id"), in.toSvc())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// POST /v1/admin/services/:id/toggle
func (h *CatalogHandler) Toggle(c *gin.Context) {
	svc, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DELETE /v1/admin/services/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
