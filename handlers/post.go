package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnect/models"
	"devconnect/store"
	"devconnect/validation"
)

type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreatePost handles POST /api/posts. The author's current name and avatar
// are copied onto the post so later profile edits don't rewrite history.
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.serverError(c, "create post", err)
		return
	}

	post := &models.Post{
		ID:       primitive.NewObjectID(),
		User:     user.ID,
		Name:     user.Name,
		Avatar:   user.Avatar,
		Text:     req.Text,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     time.Now().Unix(),
	}

	if err := h.posts.Insert(ctx, post); err != nil {
		h.serverError(c, "create post", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts handles GET /api/posts, newest first.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := dbContext()
	defer cancel()

	posts, err := h.posts.FindAll(ctx)
	if err != nil {
		h.serverError(c, "list posts", err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// getPost loads the post named in the path parameter. A nil return means
// the 404 response has already been written.
func (h *Handler) getPost(c *gin.Context) *models.Post {
	postID, err := primitive.ObjectIDFromHex(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil
	}

	ctx, cancel := dbContext()
	defer cancel()

	post, err := h.posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil
	}
	if err != nil {
		h.serverError(c, "get post", err)
		return nil
	}

	return post
}

// GetPost handles GET /api/posts/:post_id.
func (h *Handler) GetPost(c *gin.Context) {
	if post := h.getPost(c); post != nil {
		c.JSON(http.StatusOK, post)
	}
}

// DeletePost handles DELETE /api/posts/:post_id. Only the author may delete.
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	post := h.getPost(c)
	if post == nil {
		return
	}

	if post.User != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := h.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.serverError(c, "delete post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:post_id. Liking twice is rejected.
func (h *Handler) LikePost(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	post := h.getPost(c)
	if post == nil {
		return
	}

	if post.LikedBy(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post already liked"})
		return
	}
	post.Likes = append([]models.Like{{User: userID}}, post.Likes...)

	ctx, cancel := dbContext()
	defer cancel()

	if err := h.posts.Replace(ctx, post); err != nil {
		h.serverError(c, "like post", err)
		return
	}

	c.JSON(http.StatusOK, post.Likes)
}

// UnlikePost handles PUT /api/posts/unlike/:post_id. Unliking a post the
// caller hasn't liked is rejected; exactly one entry is removed otherwise.
func (h *Handler) UnlikePost(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	post := h.getPost(c)
	if post == nil {
		return
	}

	if !post.LikedBy(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post has not yet been liked"})
		return
	}
	for i, l := range post.Likes {
		if l.User == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			break
		}
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := h.posts.Replace(ctx, post); err != nil {
		h.serverError(c, "unlike post", err)
		return
	}

	c.JSON(http.StatusOK, post.Likes)
}

// AddComment handles POST /api/posts/comment/:post_id. Comments are
// prepended and snapshot the commenter's name and avatar.
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	post := h.getPost(c)
	if post == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.serverError(c, "add comment", err)
		return
	}

	comment := models.Comment{
		ID:     primitive.NewObjectID(),
		User:   user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
		Text:   req.Text,
		Date:   time.Now().Unix(),
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)

	if err := h.posts.Replace(ctx, post); err != nil {
		h.serverError(c, "add comment", err)
		return
	}

	c.JSON(http.StatusOK, post.Comments)
}

// DeleteComment handles DELETE /api/posts/comment/:post_id/:comment_id.
// Only the comment's author may remove it, and exactly that entry goes.
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("comment_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment does not exist"})
		return
	}

	post := h.getPost(c)
	if post == nil {
		return
	}

	idx := -1
	for i, cm := range post.Comments {
		if cm.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment does not exist"})
		return
	}
	if post.Comments[idx].User != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)

	ctx, cancel := dbContext()
	defer cancel()

	if err := h.posts.Replace(ctx, post); err != nil {
		h.serverError(c, "delete comment", err)
		return
	}

	c.JSON(http.StatusOK, post.Comments)
}
