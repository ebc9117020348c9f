package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

const (
	apiName    = "Go Starter Pack API"
	apiVersion = "1.0.0"
)

// APIHandler serves the JSON endpoints under /api.
type APIHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewAPIHandler(auth ports.AuthService, users ports.UserService) *APIHandler {
	return &APIHandler{auth: auth, users: users}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type versionResponse struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

type createdUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type testUserResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	User    createdUser `json:"user"`
}

type listedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type usersResponse struct {
	Users []listedUser `json:"users"`
}

type echoResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Health reports that the API is up.
//
// @Summary      API health
// @Tags         api
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /api/health [get]
func (h *APIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Status: "healthy", Message: apiName + " is running"})
}

// Version reports the API name and version.
//
// @Summary      API version
// @Tags         api
// @Produce      json
// @Success      200  {object}  versionResponse
// @Router       /api/version [get]
func (h *APIHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, versionResponse{Version: apiVersion, Name: apiName})
}

// CreateTestUser inserts the fixed development account.
//
// @Summary      Create the test user
// @Tags         api
// @Produce      json
// @Success      200  {object}  testUserResponse
// @Failure      400  {object}  statusResponse
// @Router       /api/test-user [post]
func (h *APIHandler) CreateTestUser(c echo.Context) error {
	user, err := h.auth.CreateTestUser(c.Request().Context())
	if errors.Is(err, domain.ErrUserExists) {
		return c.JSON(http.StatusBadRequest, statusResponse{Status: "error", Message: "Test user already exists"})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, testUserResponse{
		Status:  "success",
		Message: "Test user created successfully",
		User:    createdUser{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

// ListUsers returns the public fields of every user.
//
// @Summary      List users
// @Tags         api
// @Produce      json
// @Success      200  {object}  usersResponse
// @Router       /api/users [get]
func (h *APIHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]listedUser, 0, len(users))
	for _, u := range users {
		out = append(out, listedUser{ID: u.ID, Username: u.Username, Email: u.Email, IsActive: u.IsActive})
	}
	return c.JSON(http.StatusOK, usersResponse{Users: out})
}

// Echo returns the submitted JSON body unchanged.
//
// @Summary      Echo a JSON body
// @Tags         api
// @Accept       json
// @Produce      json
// @Param        body  body      object  false  "Any JSON value"
// @Success      200   {object}  echoResponse
// @Failure      400   {object}  statusResponse
// @Router       /api/echo [post]
func (h *APIHandler) Echo(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	data := json.RawMessage("null")
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			return c.JSON(http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid JSON body"})
		}
		data = json.RawMessage(trimmed)
	}
	return c.JSON(http.StatusOK, echoResponse{Message: "Echo successful", Data: data})
}
