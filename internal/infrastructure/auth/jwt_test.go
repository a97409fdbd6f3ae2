package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    uuid.New(),
		Login: "alice",
	}

	token, expiresAt, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if time.Until(expiresAt) > time.Minute || time.Until(expiresAt) < 50*time.Second {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != user.ID || claims.Login != user.Login || claims.Subject != user.ID.String() {
		t.Fatalf("expected claims to match user, got %+v", claims)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: uuid.New(),
		Login:  "expired",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); err == nil || err == domain.ErrExpiredToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := manager.Verify(noUser); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for token without user, got %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher(4)

	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the password")
	}

	if err := hasher.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := hasher.Compare(hash, "wrong horse"); err == nil {
		t.Fatal("expected mismatch")
	}
}
