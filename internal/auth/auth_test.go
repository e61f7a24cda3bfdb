package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testKey = "test-hmac-key"

func signToken(t *testing.T, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestValidateAcceptsSignedToken(t *testing.T) {
	v := NewJWTValidator(testKey)
	claims, err := v.Validate(signToken(t, "user-1", time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want %q", claims.UserID, "user-1")
	}
}

func TestValidateStripsBearerPrefix(t *testing.T) {
	v := NewJWTValidator(testKey)
	if _, err := v.Validate("Bearer " + signToken(t, "user-1", time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	v := NewJWTValidator(testKey)
	_, err := v.Validate(signToken(t, "user-1", -time.Minute))
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	v := NewJWTValidator("other-key")
	_, err := v.Validate(signToken(t, "user-1", time.Hour))
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	v := NewJWTValidator(testKey)
	for _, token := range []string{"", "not-a-jwt", "Bearer "} {
		if _, err := v.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestResolveIdentityPrefersJWT(t *testing.T) {
	v := NewJWTValidator(testKey)
	identity, err := v.ResolveIdentity(signToken(t, "user-1", time.Hour), "guest-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.IsGuest || identity.UserID != "user-1" {
		t.Errorf("identity = %+v, want authenticated user-1", identity)
	}
}

func TestResolveIdentityGuestToken(t *testing.T) {
	v := NewJWTValidator(testKey)
	identity, err := v.ResolveIdentity("", "guest-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !identity.IsGuest {
		t.Error("expected guest identity")
	}
}

func TestResolveIdentityNoCredentials(t *testing.T) {
	v := NewJWTValidator(testKey)
	if _, err := v.ResolveIdentity("", ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestResolveIdentityBadJWTNotDowngradedToGuest(t *testing.T) {
	v := NewJWTValidator(testKey)
	if _, err := v.ResolveIdentity("garbage", "guest-abc"); err == nil {
		t.Error("expected error for invalid JWT even with guest token present")
	}
}

func TestMiddlewareAuthenticates(t *testing.T) {
	v := NewJWTValidator(testKey)
	e := echo.New()

	handler := MiddlewareFunc(v)(func(c echo.Context) error {
		userID, err := RequireAuth(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", time.Hour))
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("body = %q, want user id", rec.Body.String())
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	v := NewJWTValidator(testKey)
	e := echo.New()

	handler := MiddlewareFunc(v)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("error = %v, want 401", err)
	}
}
