package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	h "gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Username) == "" {
		errs = append(errs, "username is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate implements Validator. A mismatched confirmation password is
// rejected here; the session store never sees the request.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email != "" && !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	if s.ConfirmPassword != s.Password {
		errs = append(errs, "passwords do not match")
	}
	return errs
}

// AuthResponse is the response body for POST /auth/login and POST /auth/signup
type AuthResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	Identity  *domain.Identity `json:"identity"`
}

type AuthController struct {
	Logger        *slog.Logger
	Authenticator domain.Authenticator
	Session       domain.SessionStore
	Tokens        domain.TokenIssuer
	Mailer        domain.Mailer
}

func NewAuthController(logger *slog.Logger, authenticator domain.Authenticator, session domain.SessionStore, tokens domain.TokenIssuer, mailer domain.Mailer) *AuthController {
	return &AuthController{
		Logger:        logger,
		Authenticator: authenticator,
		Session:       session,
		Tokens:        tokens,
		Mailer:        mailer,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username and password. On success the identity becomes the active session and a bearer token is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type, and identity"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, err := c.Authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "Invalid credentials")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "An error occurred during login.")
		return
	}
	if err := c.Session.Login(r.Context(), *identity); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "An error occurred during login.")
		return
	}
	token, err := c.Tokens.Issue(identity)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "An error occurred during login.")
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, AuthResponse{Token: token, TokenType: "Bearer", Identity: identity})
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Register with name, optional email, and password. A fresh identity ID is assigned, the identity becomes the active session, and a bearer token is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains token, token_type, and identity"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	form := domain.SignUpForm{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
	}
	identity, err := c.Authenticator.SignUp(r.Context(), form)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "Signup failed. Please try again.")
		return
	}
	if err := c.Session.Login(r.Context(), *identity); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "Signup failed. Please try again.")
		return
	}
	token, err := c.Tokens.Issue(identity)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "Signup failed. Please try again.")
		return
	}
	if c.Mailer != nil && identity.Email != "" {
		if err := c.Mailer.Send(identity.Email, "Welcome to Gatherly",
			"", "Hi "+identity.Name+", your account is ready."); err != nil {
			c.Logger.Warn("welcome email not sent", "err", err)
		}
	}

	h.WriteJSONSuccess(w, http.StatusCreated, AuthResponse{Token: token, TokenType: "Bearer", Identity: identity})
}

// Logout godoc
// @Summary Log out
// @Description Clears the active session and removes the persisted identity. Idempotent.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Session.Logout(r.Context()); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, nil)
}

// Me godoc
// @Summary Get the active identity
// @Description Returns the identity held by the session store, or 404 when logged out.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the identity"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	identity := c.Session.Current()
	if identity == nil {
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not logged in")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, identity)
}
