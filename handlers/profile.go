package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnect/githubapi"
	"devconnect/models"
	"devconnect/store"
	"devconnect/validation"
)

type ProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status" binding:"required"`
	Skills         string `json:"skills" binding:"required"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type ExperienceRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationRequest struct {
	School       string `json:"school" binding:"required"`
	Degree       string `json:"degree" binding:"required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required"`
	From         string `json:"from" binding:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// splitSkills normalizes a comma-delimited skills string into an ordered
// list of trimmed tokens, dropping empties.
func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// GetMyProfile handles GET /api/profiles/me.
func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is no profile for this user"})
		return
	}
	if err != nil {
		h.serverError(c, "my profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertProfile handles POST /api/profiles: create the caller's profile or
// merge fields into the existing one. Optional fields omitted from the
// payload are left untouched, not cleared.
func (h *Handler) UpsertProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		profile = &models.Profile{
			User:       userID,
			Experience: []models.Experience{},
			Education:  []models.Education{},
		}
	} else if err != nil {
		h.serverError(c, "upsert profile", err)
		return
	}

	profile.Status = req.Status
	profile.Skills = splitSkills(req.Skills)
	if req.Company != "" {
		profile.Company = req.Company
	}
	if req.Website != "" {
		profile.Website = req.Website
	}
	if req.Location != "" {
		profile.Location = req.Location
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if req.GithubUsername != "" {
		profile.GithubUsername = req.GithubUsername
	}
	if req.Youtube != "" {
		profile.Social.Youtube = req.Youtube
	}
	if req.Twitter != "" {
		profile.Social.Twitter = req.Twitter
	}
	if req.Facebook != "" {
		profile.Social.Facebook = req.Facebook
	}
	if req.Linkedin != "" {
		profile.Social.Linkedin = req.Linkedin
	}
	if req.Instagram != "" {
		profile.Social.Instagram = req.Instagram
	}
	profile.UpdatedAt = time.Now().Unix()

	if err := h.profiles.Save(ctx, profile); err != nil {
		h.serverError(c, "upsert profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListProfiles handles GET /api/profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx, cancel := dbContext()
	defer cancel()

	profiles, err := h.profiles.FindAll(ctx)
	if err != nil {
		h.serverError(c, "list profiles", err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfileByUserID handles GET /api/profiles/:user_id. Malformed ids are
// indistinguishable from missing profiles: both are 404.
func (h *Handler) GetProfileByUserID(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		h.serverError(c, "profile by user", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteAccount handles DELETE /api/profiles: remove the caller's user and
// profile. Posts are removed only when the cascade flag is configured;
// otherwise they survive with their author snapshot.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := h.profiles.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(c, "delete account", err)
		return
	}

	postsRemoved := false
	if h.cfg.CascadeDeletePosts {
		if err := h.posts.DeleteByUser(ctx, userID); err != nil {
			h.serverError(c, "delete account", err)
			return
		}
		postsRemoved = true
	}

	if err := h.users.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(c, "delete account", err)
		return
	}

	msg := "User deleted. Posts were kept."
	if postsRemoved {
		msg = "User deleted, including posts."
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg})
}

// AddExperience handles PUT /api/profiles/experience: prepend an entry so
// the list stays most-recent-first.
func (h *Handler) AddExperience(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req ExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is no profile for this user"})
		return
	}
	if err != nil {
		h.serverError(c, "add experience", err)
		return
	}

	entry := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	}
	profile.Experience = append([]models.Experience{entry}, profile.Experience...)

	if err := h.profiles.Save(ctx, profile); err != nil {
		h.serverError(c, "add experience", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteExperience handles DELETE /api/profiles/experience/:exp_id. An id
// matching no entry is a 404, never a removal of some other element.
func (h *Handler) DeleteExperience(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	expID, err := primitive.ObjectIDFromHex(c.Param("exp_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Experience entry not found"})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is no profile for this user"})
		return
	}
	if err != nil {
		h.serverError(c, "delete experience", err)
		return
	}

	idx := -1
	for i, e := range profile.Experience {
		if e.ID == expID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Experience entry not found"})
		return
	}
	profile.Experience = append(profile.Experience[:idx], profile.Experience[idx+1:]...)

	if err := h.profiles.Save(ctx, profile); err != nil {
		h.serverError(c, "delete experience", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// AddEducation handles PUT /api/profiles/education.
func (h *Handler) AddEducation(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req EducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is no profile for this user"})
		return
	}
	if err != nil {
		h.serverError(c, "add education", err)
		return
	}

	entry := models.Education{
		ID:           primitive.NewObjectID(),
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	}
	profile.Education = append([]models.Education{entry}, profile.Education...)

	if err := h.profiles.Save(ctx, profile); err != nil {
		h.serverError(c, "add education", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteEducation handles DELETE /api/profiles/education/:edu_id.
func (h *Handler) DeleteEducation(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	eduID, err := primitive.ObjectIDFromHex(c.Param("edu_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Education entry not found"})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is no profile for this user"})
		return
	}
	if err != nil {
		h.serverError(c, "delete education", err)
		return
	}

	idx := -1
	for i, e := range profile.Education {
		if e.ID == eduID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Education entry not found"})
		return
	}
	profile.Education = append(profile.Education[:idx], profile.Education[idx+1:]...)

	if err := h.profiles.Save(ctx, profile); err != nil {
		h.serverError(c, "delete education", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GithubRepos handles GET /api/profiles/github/:username: proxy the user's
// latest public repos. Unknown users are a 404; any other upstream failure
// is a 502.
func (h *Handler) GithubRepos(c *gin.Context) {
	ctx, cancel := dbContext()
	defer cancel()

	repos, err := h.github.ListRepos(ctx, c.Param("username"))
	if errors.Is(err, githubapi.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Github profile found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Github is unavailable"})
		return
	}

	c.JSON(http.StatusOK, repos)
}
