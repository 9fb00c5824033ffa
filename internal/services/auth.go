package services

import (
	"context"
	"net/http"

	"github.com/Diwwy20/pp-food-client/internal/api"
	"github.com/Diwwy20/pp-food-client/internal/authclient"
	"github.com/Diwwy20/pp-food-client/internal/domain"
)

// AuthFailureKey maps an auth call failure to the localization key the UI
// shows. Non-API errors (network and friends) map to "operationFailed".
func AuthFailureKey(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return api.AuthErrorKey(apiErr.Message)
	}
	return "operationFailed"
}

// AuthService covers the /auth surface: credential exchange, registration
// with email verification, password recovery and profile management.
// Calls that establish a session store the returned access token; the
// refresh cookie is handled by the client's jar.
type AuthService struct {
	client *authclient.Client
}

func NewAuthService(client *authclient.Client) *AuthService {
	return &AuthService{client: client}
}

type RegisterRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// authData is the envelope payload shared by the session-establishing
// auth endpoints.
type authData struct {
	User        *domain.User `json:"user,omitempty"`
	AccessToken string       `json:"accessToken,omitempty"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	env, err := s.client.Do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return s.adoptSession(env.Decode, true)
}

// Register creates an account; the session is established later, once the
// email is verified. Returns the backend message for the UI to show.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	env, err := s.client.Do(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// VerifyEmail consumes the emailed OTP/token and, like login, establishes
// the session.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	env, err := s.client.Do(ctx, http.MethodPost, "/auth/verify-email", map[string]string{
		"token": token,
	})
	if err != nil {
		return nil, err
	}
	return s.adoptSession(env.Decode, true)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/auth/resend-otp", map[string]string{
		"email": email,
	})
	return err
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{
		"email": email,
	})
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	})
	return err
}

// Me fetches the current session's user during bootstrap (silent refresh);
// the refresh cookie authenticates the call and a fresh access token may
// ride along in the response.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	env, err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return s.adoptSession(env.Decode, false)
}

type ProfileUpdate struct {
	FirstName string
	LastName  string
	NickName  string
	Image     *FormFile
}

// UpdateProfile sends the profile fields, and the image when present, as a
// multipart form.
func (s *AuthService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	fields := map[string]string{
		"firstName": update.FirstName,
		"lastName":  update.LastName,
		"nickName":  update.NickName,
	}
	var files []FormFile
	if update.Image != nil {
		files = append(files, *update.Image)
	}
	body, contentType, err := encodeMultipart(fields, files...)
	if err != nil {
		return nil, err
	}

	env, err := s.client.Do(ctx, http.MethodPut, "/auth/me", nil,
		authclient.WithRawBody(body, contentType))
	if err != nil {
		return nil, err
	}

	var data authData
	if err := env.Decode(&data); err != nil {
		return nil, err
	}
	return data.User, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := s.client.Do(ctx, http.MethodPut, "/auth/me/change-password", map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	return err
}

// Logout invalidates the session server-side and drops the local token
// either way.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/auth/logout", nil)
	s.client.Tokens().Clear()
	return err
}

// adoptSession decodes an auth payload and stores the access token when one
// is present. requireToken distinguishes login-like calls from /auth/me,
// where the token is optional.
func (s *AuthService) adoptSession(decode func(interface{}) error, requireToken bool) (*domain.User, error) {
	var data authData
	if err := decode(&data); err != nil {
		return nil, err
	}
	if data.AccessToken != "" {
		s.client.Tokens().SetAccessToken(data.AccessToken)
	} else if requireToken {
		s.client.Tokens().Clear()
	}
	return data.User, nil
}
