package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/virelio/ai-workspace/internal/catalog"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/workspace"
	"gorm.io/gorm"
)

// ListModelCatalog returns the static category/model registry for the
// selector UI.
func (h *Handler) ListModelCatalog(c *gin.Context) {
	common.OK(c, gin.H{
		"categories":    catalog.Categories(),
		"default_model": catalog.DefaultModel(),
	})
}

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	st := h.Workspace.Store(uid)
	common.OK(c, gin.H{
		"conversations": st.List(),
		"active_id":     st.ActiveID(),
	})
}

func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	conv := h.Workspace.Store(uid).CreateConversation()
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) SelectConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	id := c.Param("id")
	if !h.Workspace.Store(uid).SetActive(id) {
		common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
		return
	}
	common.OK(c, gin.H{"active_id": id})
}

type renameConversationReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) RenameConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req renameConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	id := c.Param("id")
	if !h.Workspace.Store(uid).RenameConversation(id, req.Title) {
		common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
		return
	}

	conv, _ := h.Workspace.Store(uid).Get(id)
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	id := c.Param("id")
	if !h.Workspace.Store(uid).DeleteConversation(id) {
		common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
		return
	}
	common.OK(c, gin.H{"deleted": id})
}

type sendMessageReq struct {
	Content     string   `json:"content" binding:"required"`
	ModelID     string   `json:"model_id"`
	Attachments []string `json:"attachments"`
}

// SendMessage is the synchronous path: the reply (or the failure,
// folded into the conversation) is in the response.
func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	conv, err := h.Workspace.Send(c.Request.Context(), uid, req.ModelID, req.Content, req.Attachments)
	if err != nil {
		if errors.Is(err, workspace.ErrUnknownModel) {
			common.Fail(c, http.StatusBadRequest, 10030, "unknown model")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to send message")
		return
	}

	common.OK(c, gin.H{"conversation": conv})
}

// SendMessageAsync queues the inference and returns a job id to poll.
func (h *Handler) SendMessageAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	job, _, err := h.Workspace.SendAsync(c.Request.Context(), uid, req.ModelID, req.Content, req.Attachments, idempoKeyPtr)
	if err != nil {
		if errors.Is(err, workspace.ErrUnknownModel) {
			common.Fail(c, http.StatusBadRequest, 10030, "unknown model")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	common.OK(c, gin.H{
		"job_id":          job.ID,
		"conversation_id": job.ConversationID,
	})
}

// GetJob reports a job's state; the first poll that sees a terminal
// job also delivers the result into the conversation.
func (h *Handler) GetJob(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	job, conv, err := h.Workspace.ResolveJob(c.Request.Context(), uid, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	resp := gin.H{
		"job": gin.H{
			"id":              job.ID,
			"conversation_id": job.ConversationID,
			"status":          job.Status,
			"error":           job.Error,
			"created_at":      job.CreatedAt,
			"updated_at":      job.UpdatedAt,
		},
	}
	if conv != nil {
		resp["conversation"] = conv
	}
	common.OK(c, resp)
}
