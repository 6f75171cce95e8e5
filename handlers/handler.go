package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnect/config"
	"devconnect/githubapi"
	"devconnect/middleware"
	"devconnect/models"
)

// Store interfaces consumed by the handlers. The Mongo implementations live
// in the store package; tests substitute mocks.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProfileStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	FindAll(ctx context.Context) ([]models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	FindAll(ctx context.Context) ([]models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Replace(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type RepoLister interface {
	ListRepos(ctx context.Context, username string) ([]githubapi.Repo, error)
}

type Handler struct {
	users    UserStore
	profiles ProfileStore
	posts    PostStore
	github   RepoLister
	cfg      *config.Config
	log      *logrus.Logger
}

func New(users UserStore, profiles ProfileStore, posts PostStore, github RepoLister, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		users:    users,
		profiles: profiles,
		posts:    posts,
		github:   github,
		cfg:      cfg,
		log:      log,
	}
}

const dbTimeout = 10 * time.Second

func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// currentUserID reads the authenticated user id placed in the context by the
// auth middleware. A false return means the response has been written.
func (h *Handler) currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// serverError logs the cause and answers with a detail-free 500.
func (h *Handler) serverError(c *gin.Context, op string, err error) {
	h.log.WithFields(logrus.Fields{"op": op, "error": err.Error()}).Error("server error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
