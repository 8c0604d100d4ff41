package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/profile"
	"github.com/virelio/ai-workspace/internal/workspace"
	"gorm.io/gorm"
)

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if len(req.NewPassword) < 8 {
		common.Fail(c, http.StatusBadRequest, 10005, "password must be at least 8 characters")
		return
	}

	if err := h.Profiles.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, profile.ErrWrongPassword):
			common.Fail(c, http.StatusUnauthorized, 40103, "invalid password")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 20002, "failed to change password")
		}
		return
	}

	common.OK(c, gin.H{"changed": true})
}

type deleteAccountReq struct {
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason"`
}

// DeleteAccount removes the account row and every piece of cached
// state tied to it: queued job rows, the redis identity snapshot and
// the in-memory workspace session.
func (h *Handler) DeleteAccount(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req deleteAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Profiles.DeleteAccount(c.Request.Context(), uid, req.Password); err != nil {
		switch {
		case errors.Is(err, profile.ErrWrongPassword):
			common.Fail(c, http.StatusUnauthorized, 40103, "invalid password")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 20002, "failed to delete account")
		}
		return
	}

	if err := h.DB.Where("user_id = ?", uid).Delete(&workspace.Job{}).Error; err != nil {
		log.Printf("delete jobs for user=%d: %v", uid, err)
	}
	_ = h.Redis.ClearIdentity(c.Request.Context(), uid)
	h.Workspace.DropSession(uid)

	if req.Reason != "" {
		log.Printf("account deleted user=%d reason=%q", uid, req.Reason)
	}

	common.OK(c, gin.H{"deleted": true})
}
