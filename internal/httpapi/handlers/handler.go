package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/config"
	"github.com/virelio/ai-workspace/internal/email"
	"github.com/virelio/ai-workspace/internal/httpapi/middleware"
	"github.com/virelio/ai-workspace/internal/profile"
	"github.com/virelio/ai-workspace/internal/store/redisstore"
	"github.com/virelio/ai-workspace/internal/workspace"
	"gorm.io/gorm"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       *redisstore.Store
	SMTPSetting email.SMTPConfig
	Profiles    *profile.Service
	Workspace   *workspace.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, r *redisstore.Store, ws *workspace.Service) *Handler {
	return &Handler{
		DB:    db,
		Cfg:   cfg,
		Redis: r,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		Profiles:  profile.NewService(db),
		Workspace: ws,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
