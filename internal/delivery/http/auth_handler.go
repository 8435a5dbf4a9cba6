package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	accounts domain.AccountRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts domain.AccountRepository) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// AccountOutput represents account data in API responses
type AccountOutput struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  string `json:"balance"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string         `json:"token"`
	Account *AccountOutput `json:"account"`
}

// Login handles account login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	account, err := h.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	token, err := middleware.GenerateJWT(account.ID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	cookie := &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	}
	c.SetCookie(cookie)

	return SuccessResponse(c, LoginResponse{
		Token: token,
		Account: &AccountOutput{
			ID:       account.ID.String(),
			Username: account.Username,
			Balance:  account.Balance.StringFixed(2),
		},
	})
}

// Logout handles account logout
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1, // Delete cookie
	}
	c.SetCookie(cookie)

	return SuccessMessageResponse(c, "Logged out", nil)
}

// Register handles account registration. New accounts start with the
// default paper balance.
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}
	if len(req.Password) < 6 {
		return BadRequestResponse(c, "Password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to hash password", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	account := domain.NewAccount(req.Username, string(hashedPassword))
	if err := h.accounts.Create(ctx, account); err != nil {
		return ConflictResponse(c, "Username already taken")
	}

	return CreatedResponse(c, &AccountOutput{
		ID:       account.ID.String(),
		Username: account.Username,
		Balance:  account.Balance.StringFixed(2),
	})
}

// DeleteAccount removes the authenticated account; trade records cascade.
// DELETE /api/auth/me
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.accounts.Delete(ctx, accountID); err != nil {
		return NotFoundResponse(c, "Account not found")
	}

	return SuccessMessageResponse(c, "Account deleted", nil)
}
