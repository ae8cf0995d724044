package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/http/middlewares"
	"github.com/staynest/staynest/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id user.ID) (user.User, error)
}

type SessionIssuer interface {
	Issue(ident auth.Identity) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   SessionIssuer
	cfg   config.Config
}

func NewAuthHandler(users UserStore, jwt SessionIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
		cfg:   cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=140"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSONUnprocessable(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, hash, req.Name)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondUnprocessable(ctx, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	// PasswordHash is json:"-", so the digest never leaves the process
	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSONUnprocessable(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "User not found")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if !security.VerifyPassword(foundUser.PasswordHash, req.Password) {
		RespondUnprocessable(ctx, "incorrect_password", "Incorrect password", nil)
		return
	}

	token, err := h.jwt.Issue(auth.Identity{UserID: foundUser.ID, Email: foundUser.Email})

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, foundUser)
}

// Profile reports the caller's identity, or null for anonymous callers. The
// route runs behind OptionalAuth, so an invalid cookie never reaches here.
func (h *AuthHandler) Profile(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		ctx.JSON(http.StatusOK, nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, ident.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "not_found", "User not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, true)
}

// Cookie helpers. The session rides an HTTP-only cookie; cross-site
// frontends need SameSite=None, which browsers only accept over HTTPS,
// hence the prod switch.

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string) {
	secure := h.cfg.Env == "prod"

	if secure {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}

	ctx.SetCookie(
		middlewares.SessionCookieName,
		raw,
		int(h.cfg.SessionTTL.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"

	if secure {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}

	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
