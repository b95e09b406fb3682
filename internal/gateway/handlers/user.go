package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pankaj72885/care.xyz/internal/user/domain"
	usersvc "github.com/Pankaj72885/care.xyz/internal/user/service"
)

type UserHandler struct {
	svc *usersvc.UserSvc
}

func NewUserHandler(svc *usersvc.UserSvc) *UserHandler {
	return &UserHandler{svc: svc}
}

func userJSON(u *domain.User) gin.H {
	nid := ""
	if u.NID != nil {
		nid = *u.NID
	}
	return gin.H{
		"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role,
		"contact": u.Contact, "nid": nid,
		"division": u.Division, "district": u.District, "upazila": u.Upazila,
		"address": u.Address, "image_url": u.ImageURL,
		"created_at": u.CreatedAt,
	}
}

// GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), callerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

// PATCH /v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var in struct {
		Name     string `json:"name"`
		Contact  string `json:"contact"`
		NID      string `json:"nid"`
		Division string `json:"division"`
		District string `json:"district"`
		Upazila  string `json:"upazila"`
		Address  string `json:"address"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), callerID(c), usersvc.UpdateProfileInput{
		Name: in.Name, Contact: in.Contact, NID: in.NID,
		Division: in.Division, District: in.District, Upazila: in.Upazila,
		Address: in.Address, ImageURL: in.ImageURL,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

// POST /v1/auth/complete-profile: records NID and contact after a first
// OAuth sign-in.
func (h *UserHandler) CompleteProfile(c *gin.Context) {
	var in struct {
		NID     string `json:"nid" binding:"required"`
		Contact string `json:"contact" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.CompleteProfile(c.Request.Context(), callerID(c), in.NID, in.Contact); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ---------- admin ----------

// GET /v1/admin/users?page=&page_size=&q=&role=
func (h *UserHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	users, total, err := h.svc.List(c.Request.Context(), page, size, c.Query("q"), c.Query("role"))
	if err != nil {
		respondErr(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "total": total, "page": page + 1, "page_size": size})
}

// GET /v1/admin/users/:id
func (h *UserHandler) AdminGet(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

// PUT /v1/admin/users/:id
func (h *UserHandler) AdminUpdate(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email"`
		Contact string `json:"contact"`
		NID     string `json:"nid"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.AdminUpdate(c.Request.Context(), c.Param("id"), usersvc.AdminUpdateUserInput{
		Name: in.Name, Email: in.Email, Contact: in.Contact, NID: in.NID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

// PUT /v1/admin/users/:id/role
func (h *UserHandler) AdminSetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), callerID(c), c.Param("id"), domain.Role(in.Role))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

// PUT /v1/admin/users/:id/password
func (h *UserHandler) AdminResetPassword(c *gin.Context) {
	var in struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("id"), in.Password); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DELETE /v1/admin/users/:id
func (h *UserHandler) AdminDelete(c *gin.Context) {
	if err := h.svc.AdminDelete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
