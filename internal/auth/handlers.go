package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller exposes the authentication endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
}

// NewController creates the authentication controller. rateLimiter may be
// nil, in which case logins are only throttled by the per-account lockout.
func NewController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes attaches the auth endpoints to the router.
func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/auth")
	api.POST("/signup", ctrl.Signup)
	api.POST("/login", ctrl.Login)
	api.POST("/logout", ctrl.Logout)
	api.GET("/me", ctrl.Me)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new account with password credentials.
func (ctrl *Controller) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	user, err := ctrl.service.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and establishes a session.
func (ctrl *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	ip := c.ClientIP()
	if ctrl.rateLimiter != nil {
		if allowed, retryAfter := ctrl.rateLimiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many login attempts"})
			return
		}
	}

	user, err := ctrl.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if ctrl.rateLimiter != nil {
			ctrl.rateLimiter.RecordFailure(ip, req.Email)
		}
		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": err.Error()})
			return
		}
		// Do not distinguish unknown email from wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}
	if ctrl.rateLimiter != nil {
		ctrl.rateLimiter.RecordSuccess(ip, req.Email)
	}

	if err := ctrl.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// Logout destroys the current session.
func (ctrl *Controller) Logout(c *gin.Context) {
	if err := ctrl.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to destroy session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// Me returns the authenticated account.
func (ctrl *Controller) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
		return
	}

	user, err := ctrl.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
