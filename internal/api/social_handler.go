package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SocialHandler serves presence, direct messages and the feed.
type SocialHandler struct {
	presence service.PresenceService
	messages service.MessageService
	feed     service.FeedService
	logger   *zap.Logger
}

func NewSocialHandler(presence service.PresenceService, messages service.MessageService, feed service.FeedService, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{presence: presence, messages: messages, feed: feed, logger: logger}
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

// queryLimit reads ?limit=, returning 0 (service default) when absent.
func queryLimit(c *gin.Context) (int64, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// --- Presence ---

// Heartbeat godoc
// @Summary Mark the caller online
// @Description Must be repeated before the presence TTL lapses to stay online.
// @Tags Presence
// @Security BearerAuth
// @Success 204 "Online"
// @Router /presence/heartbeat [post]
func (h *SocialHandler) Heartbeat(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.presence.Heartbeat(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GoOffline godoc
// @Summary Mark the caller offline immediately
// @Tags Presence
// @Security BearerAuth
// @Success 204 "Offline"
// @Router /presence/offline [post]
func (h *SocialHandler) GoOffline(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.presence.Offline(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPresence godoc
// @Summary Get a user's online state and last seen time
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} service.PresenceStatus
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{userId}/presence [get]
func (h *SocialHandler) GetPresence(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	status, err := h.presence.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// --- Messages ---

// SendMessage godoc
// @Summary Send a direct message
// @Description Only a trainer and their active students can write to each other. Admins can write to anyone.
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Recipient ID"
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 403 {object} gin.H "Users are not linked"
// @Router /messages/{userId} [post]
func (h *SocialHandler) SendMessage(c *gin.Context) {
	senderID, ok := callerID(c)
	if !ok {
		return
	}
	recipientID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), senderID, recipientID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetConversation godoc
// @Summary Get the latest messages with another user, newest first
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other user ID"
// @Param limit query int false "Max messages (default 50)"
// @Success 200 {array} domain.Message
// @Router /messages/{userId} [get]
func (h *SocialHandler) GetConversation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	list, err := h.messages.Conversation(c.Request.Context(), userID, otherID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// MarkRead godoc
// @Summary Mark every message from a user as read
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Sender ID"
// @Success 200 {object} MarkReadResponse
// @Router /messages/{userId}/read [post]
func (h *SocialHandler) MarkRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	n, err := h.messages.MarkRead(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MarkReadResponse{Marked: n})
}

// --- Feed ---

// GetFeed godoc
// @Summary Page through the feed, newest first
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max posts (default 20)"
// @Param before query string false "RFC3339 cursor; posts strictly older are returned"
// @Success 200 {array} domain.Post
// @Router /feed [get]
func (h *SocialHandler) GetFeed(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = &t
	}
	posts, err := h.feed.List(c.Request.Context(), before, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(posts))
}

// CreatePost godoc
// @Summary Publish a post
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body CreatePostRequest true "Text and/or image URL"
// @Success 201 {object} domain.Post
// @Failure 400 {object} gin.H "Empty post"
// @Router /feed [post]
func (h *SocialHandler) CreatePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	post, err := h.feed.CreatePost(c.Request.Context(), userID, req.Content, req.ImageURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ToggleLike godoc
// @Summary Like a post, or take the like back
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Success 200 {object} domain.Post
// @Failure 404 {object} gin.H "Post not found"
// @Router /feed/{postId}/like [post]
func (h *SocialHandler) ToggleLike(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	post, err := h.feed.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post (author or admin)
// @Tags Feed
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /feed/{postId} [delete]
func (h *SocialHandler) DeletePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	if err := h.feed.DeletePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
