package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/http/handlers"
	mw "github.com/localserve/localserve-api/internal/http/middleware"
	"github.com/localserve/localserve-api/internal/http/response"
	"github.com/localserve/localserve-api/internal/platform/auth"
	"github.com/localserve/localserve-api/internal/service"
	"github.com/localserve/localserve-api/pkg/config"
)

// ---------- Stubs ----------

type stubAuthService struct {
	signUp         func(ctx context.Context, req *domain.SignUpRequest) (*service.SignUpResult, error)
	signIn         func(ctx context.Context, req *domain.SignInRequest) (*service.SignInResult, error)
	verifyEmail    func(ctx context.Context, token string) (*domain.AccountInfo, error)
	verifyPhone    func(ctx context.Context, req *domain.VerifyPhoneRequest) (*service.SignInResult, error)
	changePassword func(ctx context.Context, accountID int64, req *domain.ChangePasswordRequest) error
	forgotPassword func(ctx context.Context, req *domain.ForgotPasswordRequest) (string, error)
	resetPassword  func(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*service.SignInResult, error)
}

func (s *stubAuthService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*service.SignUpResult, error) {
	return s.signUp(ctx, req)
}

func (s *stubAuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*service.SignInResult, error) {
	return s.signIn(ctx, req)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) (*domain.AccountInfo, error) {
	return s.verifyEmail(ctx, token)
}

func (s *stubAuthService) VerifyPhone(ctx context.Context, req *domain.VerifyPhoneRequest) (*service.SignInResult, error) {
	return s.verifyPhone(ctx, req)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, accountID int64, req *domain.ChangePasswordRequest) error {
	return s.changePassword(ctx, accountID, req)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) (string, error) {
	return s.forgotPassword(ctx, req)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*service.SignInResult, error) {
	return s.resetPassword(ctx, token, req)
}

type stubAccountService struct {
	get func(ctx context.Context, id int64) (*domain.AccountInfo, error)
}

func (s *stubAccountService) Get(ctx context.Context, id int64) (*domain.AccountInfo, error) {
	return s.get(ctx, id)
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.AccountInfo, error) {
	return nil, domain.ErrNotFound
}

func (s *stubAccountService) Delete(ctx context.Context, id int64) error { return domain.ErrNotFound }

func (s *stubAccountService) List(ctx context.Context, limit, offset int) ([]domain.AccountInfo, error) {
	return []domain.AccountInfo{}, nil
}

func (s *stubAccountService) UpdateRole(ctx context.Context, id int64, role string) error {
	return domain.ErrNotFound
}

type stubCatalogService struct{}

func (s *stubCatalogService) List(ctx context.Context) ([]domain.Service, error) {
	return []domain.Service{}, nil
}

func (s *stubCatalogService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalogService) Search(ctx context.Context, name string) ([]domain.Service, error) {
	return []domain.Service{}, nil
}

func (s *stubCatalogService) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	return nil, domain.ErrConflict
}

func (s *stubCatalogService) Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalogService) SetActive(ctx context.Context, id int64, active bool) (*domain.Service, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalogService) Delete(ctx context.Context, id int64) error { return domain.ErrNotFound }

func (s *stubCatalogService) Seed(ctx context.Context) (int, error) { return 0, nil }

// ---------- Helpers ----------

var testIssuer = auth.NewTokenIssuer("test-secret")

func newTestRouter(authSvc service.AuthService, devMode bool) http.Handler {
	cfg := &config.Config{}
	cfg.Email.DevMode = devMode

	h := handlers.New(authSvc, &stubAccountService{
		get: func(ctx context.Context, id int64) (*domain.AccountInfo, error) {
			return &domain.AccountInfo{ID: id, Role: domain.RoleUser, Email: "asha@example.com"}, nil
		},
	}, &stubCatalogService{}, cfg)

	return h.Router(mw.NewAuthenticator(testIssuer))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	token, err := testIssuer.Issue(1, role, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func accountInfo() *domain.AccountInfo {
	return &domain.AccountInfo{ID: 1, Role: domain.RoleUser, Name: "Asha", Email: "asha@example.com"}
}

// ---------- Tests ----------

func TestSignUpHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signUp: func(_ context.Context, req *domain.SignUpRequest) (*service.SignUpResult, error) {
				return &service.SignUpResult{Account: accountInfo(), VerifyToken: "tok123"}, nil
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)

		data := env.Data.(map[string]any)
		assert.Equal(t, "tok123", data["verify_token"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "asha@example.com", user["email"])
	})

	t.Run("production response omits the verification token", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signUp: func(_ context.Context, _ *domain.SignUpRequest) (*service.SignUpResult, error) {
				return &service.SignUpResult{Account: accountInfo(), VerifyToken: "tok123"}, nil
			},
		}, false)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		data := env.Data.(map[string]any)
		assert.NotContains(t, data, "verify_token")
		assert.Contains(t, data, "user")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signUp: func(_ context.Context, _ *domain.SignUpRequest) (*service.SignUpResult, error) {
				return nil, domain.ErrConflict
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "already exists", env.Error)
	})

	t.Run("validation failure names the field", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signUp: func(_ context.Context, _ *domain.SignUpRequest) (*service.SignUpResult, error) {
				return nil, domain.NewValidationError("password", "must be at least 6 characters")
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "123",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Error, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{}, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignInHandler(t *testing.T) {
	t.Run("token response", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signIn: func(_ context.Context, _ *domain.SignInRequest) (*service.SignInResult, error) {
				return &service.SignInResult{Token: "jwt123", ExpiresIn: 3600, Account: accountInfo()}, nil
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signin", map[string]string{
			"email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := env.Data.(map[string]any)
		assert.Equal(t, "jwt123", data["token"])
		assert.Equal(t, float64(3600), data["expires_in"])
	})

	t.Run("phone step-up carries no token", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signIn: func(_ context.Context, _ *domain.SignInRequest) (*service.SignInResult, error) {
				return &service.SignInResult{OTPRequired: true, OTP: "123456"}, nil
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signin", map[string]string{
			"email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := env.Data.(map[string]any)
		assert.Equal(t, true, data["otp_required"])
		assert.NotContains(t, data, "token")
	})

	t.Run("wrong credentials", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signIn: func(_ context.Context, _ *domain.SignInRequest) (*service.SignInResult, error) {
				return nil, domain.ErrInvalidCredentials
			},
		}, true)

		rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/signin", map[string]string{
			"email": "asha@example.com", "password": "wrong",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unverified email is forbidden", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			signIn: func(_ context.Context, _ *domain.SignInRequest) (*service.SignInResult, error) {
				return nil, domain.ErrEmailNotVerified
			},
		}, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/signin", map[string]string{
			"email": "asha@example.com", "password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "email not verified", env.Error)
	})
}

func TestVerifyEmailHandler(t *testing.T) {
	t.Run("bad token", func(t *testing.T) {
		router := newTestRouter(&stubAuthService{
			verifyEmail: func(_ context.Context, token string) (*domain.AccountInfo, error) {
				return nil, domain.ErrInvalidOrExpiredToken
			},
		}, true)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email/deadbeef", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("verified", func(t *testing.T) {
		var got string
		router := newTestRouter(&stubAuthService{
			verifyEmail: func(_ context.Context, token string) (*domain.AccountInfo, error) {
				got = token
				info := accountInfo()
				info.IsEmailVerified = true
				return info, nil
			},
		}, true)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email/tok123", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok123", got)
	})
}

func TestForgotPasswordHandler(t *testing.T) {
	stub := &stubAuthService{
		forgotPassword: func(_ context.Context, _ *domain.ForgotPasswordRequest) (string, error) {
			return "reset-tok", nil
		},
	}
	body := map[string]string{"email": "asha@example.com"}

	t.Run("dev mode surfaces the token", func(t *testing.T) {
		router := newTestRouter(stub, true)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password", body, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := env.Data.(map[string]any)
		assert.Equal(t, "reset-tok", data["reset_token"])
	})

	t.Run("production keeps the token out of the response", func(t *testing.T) {
		router := newTestRouter(stub, false)

		rec, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password", body, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, env.Data)
	})
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&stubAuthService{}, true)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		rec, env := doJSON(t, router, http.MethodGet, "/api/v1/users/me", nil, bearer(t, domain.RoleUser))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("non-admin blocked from admin routes", func(t *testing.T) {
		rec, env := doJSON(t, router, http.MethodGet, "/api/v1/users/", nil, bearer(t, domain.RoleUser))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "admins only", env.Error)
	})

	t.Run("admin passes", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/users/", nil, bearer(t, domain.RoleAdmin))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubAuthService{}, true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
