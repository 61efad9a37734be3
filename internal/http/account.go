package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/session"
)

const contextKeyAccount = "account"

var _ SessionState = (*session.Session)(nil)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

// SessionResponse describes the current login state.
type SessionResponse struct {
	State     string         `json:"state"`
	Account   *entities.User `json:"account,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

type AccountController struct {
	session SessionState
}

func NewAccountController(s SessionState) *AccountController {
	return &AccountController{session: s}
}

// Register creates an account. It does not log in.
// POST /api/register
func (ac *AccountController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	id, err := ac.session.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondDomainError(c, err, "register")
		return
	}

	respondCreated(c, gin.H{"id": id, "username": req.Username, "email": req.Email})
}

// Login switches the session to the matching account.
// POST /api/login
func (ac *AccountController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ac.session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		State:     session.LoggedIn.String(),
		Account:   user,
		SessionID: ac.session.SessionID(),
	})
}

// Logout ends the session. Logging out while logged out succeeds.
// POST /api/logout
func (ac *AccountController) Logout(c *gin.Context) {
	ac.session.Logout(c.Request.Context())
	respondSuccess(c, "logged out")
}

// Current returns the login state.
// GET /api/session
func (ac *AccountController) Current(c *gin.Context) {
	user := ac.session.CurrentAccount()
	if user == nil {
		c.JSON(http.StatusOK, SessionResponse{State: session.LoggedOut.String()})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		State:     session.LoggedIn.String(),
		Account:   user,
		SessionID: ac.session.SessionID(),
	})
}

// RequireLogin rejects requests while the session is logged out and stores
// the current account in the gin context.
func RequireLogin(s SessionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.CurrentAccount()
		if user == nil {
			respondDomainError(c, session.ErrNotLoggedIn, "require login")
			c.Abort()
			return
		}
		c.Set(contextKeyAccount, user)
		c.Request = c.Request.WithContext(s.Context(c.Request.Context()))
		c.Next()
	}
}

// currentAccount returns the account stored by RequireLogin.
func currentAccount(c *gin.Context) *entities.User {
	if v, ok := c.Get(contextKeyAccount); ok {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}
