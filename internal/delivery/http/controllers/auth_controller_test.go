package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthenticator implements domain.Authenticator for handler tests.
type fakeAuthenticator struct {
	loginErr       error
	loginIdentity  *domain.Identity
	signUpErr      error
	signUpIdentity *domain.Identity
	lastUsername   string
	lastPassword   string
	lastForm       domain.SignUpForm
}

func (f *fakeAuthenticator) Login(_ context.Context, username, password string) (*domain.Identity, error) {
	f.lastUsername = username
	f.lastPassword = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginIdentity, nil
}

func (f *fakeAuthenticator) SignUp(_ context.Context, form domain.SignUpForm) (*domain.Identity, error) {
	f.lastForm = form
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpIdentity, nil
}

// fakeSessionStore implements domain.SessionStore and records calls.
type fakeSessionStore struct {
	loginErr   error
	logoutErr  error
	current    *domain.Identity
	lastLogin  *domain.Identity
	logoutCall int
}

func (f *fakeSessionStore) Login(_ context.Context, identity domain.Identity) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.lastLogin = &identity
	f.current = &identity
	return nil
}

func (f *fakeSessionStore) Logout(_ context.Context) error {
	f.logoutCall++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.current = nil
	return nil
}

func (f *fakeSessionStore) Current() *domain.Identity {
	return f.current
}

// fakeTokenIssuer implements domain.TokenIssuer.
type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(_ *domain.Identity) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

// fakeMailer implements domain.Mailer and records the last send.
type fakeMailer struct {
	err         error
	sends       int
	lastTo      string
	lastSubject string
}

func (f *fakeMailer) Send(to, subject, _, _ string) error {
	f.sends++
	f.lastTo = to
	f.lastSubject = subject
	return f.err
}

func TestAuthController_Login(t *testing.T) {
	identity := &domain.Identity{ID: 1, Name: "user"}

	tests := []struct {
		name           string
		body           string
		authErr        error
		sessionErr     error
		tokenErr       error
		wantStatus     int
		wantBodySubstr string
		checkResponse  func(t *testing.T, resp AuthResponse, session *fakeSessionStore)
	}{
		{
			name:       "success",
			body:       `{"username":"user","password":"password"}`,
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp AuthResponse, session *fakeSessionStore) {
				assert.Equal(t, "tok-123", resp.Token)
				assert.Equal(t, "Bearer", resp.TokenType)
				require.NotNil(t, resp.Identity)
				assert.Equal(t, int64(1), resp.Identity.ID)
				require.NotNil(t, session.lastLogin, "session must hold the identity")
				assert.Equal(t, int64(1), session.lastLogin.ID)
			},
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing username",
			body:           `{"password":"password"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "username is required",
		},
		{
			name:           "missing password",
			body:           `{"username":"user"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "password is required",
		},
		{
			name:           "wrong credentials",
			body:           `{"username":"user","password":"nope"}`,
			authErr:        domain.ErrInvalidCredentials,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "Invalid credentials",
		},
		{
			name:           "backend error",
			body:           `{"username":"user","password":"password"}`,
			authErr:        errors.New("backend unreachable"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "An error occurred during login.",
		},
		{
			name:           "session persist error",
			body:           `{"username":"user","password":"password"}`,
			sessionErr:     errors.New("storage write failed"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "An error occurred during login.",
		},
		{
			name:           "token issue error",
			body:           `{"username":"user","password":"password"}`,
			tokenErr:       errors.New("signing failed"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "An error occurred during login.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{loginErr: tt.authErr, loginIdentity: identity}
			session := &fakeSessionStore{loginErr: tt.sessionErr}
			tokens := &fakeTokenIssuer{token: "tok-123", err: tt.tokenErr}
			ctrl := NewAuthController(testLogger, auth, session, tokens, nil)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				tt.checkResponse(t, resp, session)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestAuthController_SignUp(t *testing.T) {
	identity := &domain.Identity{ID: 9000000001, Name: "Ada", Email: "ada@example.com"}

	tests := []struct {
		name           string
		body           string
		signUpIdentity *domain.Identity
		signUpErr      error
		wantStatus     int
		wantBodySubstr string
		wantMailSends  int
		checkForm      func(t *testing.T, form domain.SignUpForm)
	}{
		{
			name:           "success sends welcome email",
			body:           `{"name":"Ada","email":"Ada@Example.com","password":"secret1","confirm_password":"secret1"}`,
			signUpIdentity: identity,
			wantStatus:     http.StatusCreated,
			wantMailSends:  1,
			checkForm: func(t *testing.T, form domain.SignUpForm) {
				assert.Equal(t, "Ada", form.Name)
				assert.Equal(t, "ada@example.com", form.Email, "email is lowercased")
				assert.Equal(t, "secret1", form.Password)
			},
		},
		{
			name:           "success without email skips welcome email",
			body:           `{"name":"Ada","password":"secret1","confirm_password":"secret1"}`,
			signUpIdentity: &domain.Identity{ID: 9000000002, Name: "Ada"},
			wantStatus:     http.StatusCreated,
			wantMailSends:  0,
		},
		{
			name:           "missing name",
			body:           `{"email":"ada@example.com","password":"secret1","confirm_password":"secret1"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "name is required",
		},
		{
			name:           "invalid email",
			body:           `{"name":"Ada","email":"not-an-email","password":"secret1","confirm_password":"secret1"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid email format",
		},
		{
			name:           "short password",
			body:           `{"name":"Ada","password":"abc","confirm_password":"abc"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "at least 6 characters",
		},
		{
			name:           "password mismatch",
			body:           `{"name":"Ada","password":"secret1","confirm_password":"secret2"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "passwords do not match",
		},
		{
			name:           "backend error",
			body:           `{"name":"Ada","password":"secret1","confirm_password":"secret1"}`,
			signUpErr:      errors.New("backend unreachable"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "Signup failed. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{signUpErr: tt.signUpErr, signUpIdentity: tt.signUpIdentity}
			session := &fakeSessionStore{}
			mailer := &fakeMailer{}
			ctrl := NewAuthController(testLogger, auth, session, &fakeTokenIssuer{token: "tok-456"}, mailer)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, "tok-456", resp.Token)
				require.NotNil(t, resp.Identity)
				assert.Equal(t, tt.signUpIdentity.ID, resp.Identity.ID)
				require.NotNil(t, session.lastLogin, "session must hold the new identity")
				assert.Equal(t, tt.signUpIdentity.ID, session.lastLogin.ID)
				assert.Equal(t, tt.wantMailSends, mailer.sends, "welcome email sends")
				if tt.wantMailSends > 0 {
					assert.Equal(t, "ada@example.com", mailer.lastTo)
					assert.Contains(t, mailer.lastSubject, "Welcome")
				}
				if tt.checkForm != nil {
					tt.checkForm(t, auth.lastForm)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestAuthController_SignUp_MailerFailureIsNotFatal(t *testing.T) {
	auth := &fakeAuthenticator{signUpIdentity: &domain.Identity{ID: 2, Name: "Ada", Email: "ada@example.com"}}
	mailer := &fakeMailer{err: errors.New("ses throttled")}
	ctrl := NewAuthController(testLogger, auth, &fakeSessionStore{}, &fakeTokenIssuer{token: "tok"}, mailer)
	body := `{"name":"Ada","email":"ada@example.com","password":"secret1","confirm_password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	ctrl.SignUp(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, "signup succeeds even when the welcome email fails")
	assert.Equal(t, 1, mailer.sends)
}

func TestAuthController_Logout(t *testing.T) {
	t.Run("success clears session", func(t *testing.T) {
		session := &fakeSessionStore{current: &domain.Identity{ID: 1, Name: "user"}}
		ctrl := NewAuthController(testLogger, &fakeAuthenticator{}, session, &fakeTokenIssuer{}, nil)
		req := httptest.NewRequest(http.MethodPost, "http://test/auth/logout", nil)
		rr := httptest.NewRecorder()

		ctrl.Logout(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, session.logoutCall)
		assert.Nil(t, session.current)
	})

	t.Run("logout when already logged out is ok", func(t *testing.T) {
		session := &fakeSessionStore{}
		ctrl := NewAuthController(testLogger, &fakeAuthenticator{}, session, &fakeTokenIssuer{}, nil)
		req := httptest.NewRequest(http.MethodPost, "http://test/auth/logout", nil)
		rr := httptest.NewRecorder()

		ctrl.Logout(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		session := &fakeSessionStore{logoutErr: errors.New("storage delete failed")}
		ctrl := NewAuthController(testLogger, &fakeAuthenticator{}, session, &fakeTokenIssuer{}, nil)
		req := httptest.NewRequest(http.MethodPost, "http://test/auth/logout", nil)
		rr := httptest.NewRecorder()

		ctrl.Logout(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "storage delete failed")
	})
}

func TestAuthController_Me(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		session := &fakeSessionStore{current: &domain.Identity{ID: 1, Name: "user"}}
		ctrl := NewAuthController(testLogger, &fakeAuthenticator{}, session, &fakeTokenIssuer{}, nil)
		req := httptest.NewRequest(http.MethodGet, "http://test/auth/me", nil)
		rr := httptest.NewRecorder()

		ctrl.Me(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var identity domain.Identity
		require.NoError(t, json.Unmarshal(dataBytes, &identity))
		assert.Equal(t, int64(1), identity.ID)
		assert.Equal(t, "user", identity.Name)
	})

	t.Run("logged out", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeAuthenticator{}, &fakeSessionStore{}, &fakeTokenIssuer{}, nil)
		req := httptest.NewRequest(http.MethodGet, "http://test/auth/me", nil)
		rr := httptest.NewRecorder()

		ctrl.Me(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "not logged in")
	})
}
