package handlers

import (
	"fmt"
	"net/http"

	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/repositories/base"
	"fleet-tracker/internal/utils"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "fleet-tracker-session"

// AuthHandler serves session-based account endpoints.
type AuthHandler struct {
	users  repositories.UserRepository
	store  *sessions.CookieStore
	logger *utils.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users repositories.UserRepository, secret string, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		store:  sessions.NewCookieStore([]byte(secret)),
		logger: logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateAccount registers a new user with a bcrypt-hashed password.
func (h *AuthHandler) CreateAccount(c echo.Context) error {
	var request credentialsRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if request.Username == "" || request.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Errorf("Failed to hash password: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create account")
	}

	user := models.User{Username: request.Username, Password: string(hashed)}
	if err := h.users.Create(&user); err != nil {
		if base.IsDuplicateEntity(err) {
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		}
		h.logger.Errorf("Failed to create account: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create account")
	}

	return c.JSON(http.StatusCreated, utils.SuccessResponse("Account created successfully", nil))
}

// Login validates credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var request credentialsRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if request.Username == "" || request.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	user, err := h.users.GetByUsername(request.Username)
	if err != nil {
		if base.IsEntityNotFound(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		h.logger.Errorf("Failed to look up user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	session, _ := h.store.Get(c.Request(), sessionName)
	session.Values["username"] = user.Username
	if err := session.Save(c.Request(), c.Response()); err != nil {
		h.logger.Errorf("Failed to save session: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Login successful", nil))
}

// Logout clears the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	session, _ := h.store.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		h.logger.Errorf("Failed to clear session: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Logged out successfully", nil))
}
