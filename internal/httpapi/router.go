package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/config"
	"github.com/virelio/ai-workspace/internal/httpapi/handlers"
	"github.com/virelio/ai-workspace/internal/httpapi/middleware"
	"github.com/virelio/ai-workspace/internal/store/redisstore"
	"github.com/virelio/ai-workspace/internal/workspace"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, ws *workspace.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, ws)

	r.GET("/ping", h.Ping)

	// captcha
	r.POST("/captcha", h.SendCaptcha)

	// signup
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUserByID)

	// auth
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.POST("/signout", h.SignOut)

	// profile and account (JWT required)
	authGroup.GET("/profile", h.GetProfile)
	authGroup.PUT("/profile", h.UpsertProfile)
	authGroup.PUT("/password", h.ChangePassword)
	authGroup.DELETE("/account", h.DeleteAccount)

	// model catalog
	authGroup.GET("/models", h.ListModelCatalog)

	// workspace (JWT required)
	authGroup.GET("/workspace/conversations", h.ListConversations)
	authGroup.POST("/workspace/conversations", h.CreateConversation)
	authGroup.POST("/workspace/conversations/:id/select", h.SelectConversation)
	authGroup.PUT("/workspace/conversations/:id/title", h.RenameConversation)
	authGroup.DELETE("/workspace/conversations/:id", h.DeleteConversation)
	authGroup.POST("/workspace/messages", h.SendMessage)
	authGroup.POST("/workspace/messages/async", h.SendMessageAsync)
	authGroup.GET("/workspace/jobs/:job_id", h.GetJob)

	return r
}
