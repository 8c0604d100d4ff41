package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/profile"
	"gorm.io/gorm"
)

func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	user, err := h.Profiles.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "profile not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "failed to load profile")
		return
	}

	common.OK(c, user)
}

func (h *Handler) UpsertProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var fields profile.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	user, err := h.Profiles.Upsert(c.Request.Context(), uid, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "profile not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to save profile")
		return
	}

	common.OK(c, user)
}
