package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/greeting-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register       func(ctx context.Context, input usecase.RegisterInput) (domain.UserProfile, error)
	login          func(ctx context.Context, email, password string) (string, error)
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, rawToken, newPassword string) error
	profile        func(ctx context.Context, email string) (domain.UserProfile, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, input usecase.RegisterInput) (domain.UserProfile, error) {
	return f.register(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	return f.forgotPassword(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	return f.resetPassword(ctx, rawToken, newPassword)
}

func (f *fakeAuthUsecase) Profile(ctx context.Context, email string) (domain.UserProfile, error) {
	return f.profile(ctx, email)
}

// withSession stands in for the auth middleware.
func withSession(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.EmailKey, email)
		c.Next()
	}
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, testLogger)

	r := gin.New()
	r.POST("/users/register", h.Register)
	r.POST("/users/login", h.Login)
	r.POST("/users/forgot-password", h.ForgotPassword)
	r.POST("/users/reset-password", h.ResetPassword)
	r.GET("/users/me", withSession("user-1", "ada@example.com"), h.Me)
	return r
}

func doJSON(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// ---- Register ----

func TestRegister_Success_Returns201WithProfile(t *testing.T) {
	var got usecase.RegisterInput
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, input usecase.RegisterInput) (domain.UserProfile, error) {
			got = input
			return domain.UserProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, nil
		},
	}

	w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/register",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"s3cret"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", w.Code, w.Body)
	}
	if got.Password != "s3cret" || got.FirstName != "Ada" {
		t.Errorf("usecase input = %+v", got)
	}
	body := decodeBody(t, w)
	if body["email"] != "ada@example.com" || body["first_name"] != "Ada" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["password_hash"]; ok {
		t.Error("response must not carry password material")
	}
}

func TestRegister_BadRequest_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}
	r := newAuthEngine(uc)

	for _, body := range []string{
		`{bad json}`,
		`{"email":"not-an-email","password":"x"}`,
		`{"email":"ada@example.com"}`,
	} {
		if w := doJSON(r, http.MethodPost, "/users/register", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: too long", domain.ErrValidation), http.StatusBadRequest},
		{"duplicate", fmt.Errorf("%w: %w", domain.ErrRegistrationFailed, domain.ErrDuplicateEmail), http.StatusConflict},
		{"dependency", fmt.Errorf("%w: %w", domain.ErrRegistrationFailed, domain.ErrDependencyFailure), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				register: func(_ context.Context, _ usecase.RegisterInput) (domain.UserProfile, error) {
					return domain.UserProfile{}, tt.err
				},
			}
			w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/register",
				`{"email":"ada@example.com","password":"s3cret"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// ---- Login ----

func TestLogin_Success_ReturnsToken(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, password string) (string, error) {
			if email != "ada@example.com" || password != "s3cret" {
				t.Errorf("login(%q, %q)", email, password)
			}
			return "signed.jwt.token", nil
		},
	}

	w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/login", `{"email":"ada@example.com","password":"s3cret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decodeBody(t, w)["token"]; got != "signed.jwt.token" {
		t.Errorf("token = %v", got)
	}
}

func TestLogin_InvalidCredentials_Returns401WithSameBody(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	r := newAuthEngine(uc)

	unknown := doJSON(r, http.MethodPost, "/users/login", `{"email":"nobody@example.com","password":"x"}`)
	wrong := doJSON(r, http.MethodPost, "/users/login", `{"email":"ada@example.com","password":"wrong"}`)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d/%d, want 401/401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("bodies differ: %s vs %s", unknown.Body, wrong.Body)
	}
}

func TestLogin_DependencyFailure_Returns503(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (string, error) {
			return "", fmt.Errorf("%w: db down", domain.ErrDependencyFailure)
		},
	}

	w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/login", `{"email":"ada@example.com","password":"x"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

// ---- ForgotPassword ----

func TestForgotPassword_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"sent", nil, http.StatusOK},
		{"unknown email", domain.ErrUserNotFound, http.StatusNotFound},
		{"dispatch failure", fmt.Errorf("%w: resend", domain.ErrDependencyFailure), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				forgotPassword: func(_ context.Context, _ string) error { return tt.err },
			}
			w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/forgot-password", `{"email":"ada@example.com"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestForgotPassword_InvalidEmail_Returns400(t *testing.T) {
	w := doJSON(newAuthEngine(&fakeAuthUsecase{}), http.MethodPost, "/users/forgot-password", `{"email":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- ResetPassword ----

func TestResetPassword_PassesTokenAndPassword(t *testing.T) {
	var gotToken, gotPassword string
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, rawToken, newPassword string) error {
			gotToken, gotPassword = rawToken, newPassword
			return nil
		},
	}

	w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/reset-password?token=abc.def.ghi", `{"password":"n3w"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotToken != "abc.def.ghi" || gotPassword != "n3w" {
		t.Errorf("reset(%q, %q)", gotToken, gotPassword)
	}
}

func TestResetPassword_MissingToken_Returns400(t *testing.T) {
	w := doJSON(newAuthEngine(&fakeAuthUsecase{}), http.MethodPost, "/users/reset-password", `{"password":"n3w"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", fmt.Errorf("%w: expired", domain.ErrTokenInvalid), http.StatusUnauthorized},
		{"user gone", domain.ErrUserNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: empty", domain.ErrValidation), http.StatusBadRequest},
		{"dependency", fmt.Errorf("%w: redis", domain.ErrDependencyFailure), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				resetPassword: func(_ context.Context, _, _ string) error { return tt.err },
			}
			w := doJSON(newAuthEngine(uc), http.MethodPost, "/users/reset-password?token=t", `{"password":"n3w"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// ---- Me ----

func TestMe_ReturnsProfileForSessionEmail(t *testing.T) {
	uc := &fakeAuthUsecase{
		profile: func(_ context.Context, email string) (domain.UserProfile, error) {
			return domain.UserProfile{FirstName: "Ada", Email: email}, nil
		},
	}

	w := doJSON(newAuthEngine(uc), http.MethodGet, "/users/me", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decodeBody(t, w)["email"]; got != "ada@example.com" {
		t.Errorf("email = %v", got)
	}
}

func TestMe_UserGone_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		profile: func(_ context.Context, _ string) (domain.UserProfile, error) {
			return domain.UserProfile{}, domain.ErrUserNotFound
		},
	}

	if w := doJSON(newAuthEngine(uc), http.MethodGet, "/users/me", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
