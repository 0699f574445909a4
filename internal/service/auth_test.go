package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socialhub/internal/config"
	"socialhub/internal/model"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"
)

func newAuthService(store *testutil.Store) *AuthService {
	return NewAuthService(store.RefreshTokens(), &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 3600,
	})
}

func TestAuthService_GenerateTokenPair(t *testing.T) {
	svc := newAuthService(testutil.NewStore())

	pair, err := svc.GenerateTokenPair(context.Background(), 42, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("pair = %+v, want both tokens", pair)
	}

	token, err := jwt.Parse(pair.Access, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("access token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 42 {
		t.Errorf("user_id claim = %v, want 42", claims["user_id"])
	}
	exp, _ := claims.GetExpirationTime()
	if exp == nil || time.Until(exp.Time) > 901*time.Second {
		t.Errorf("exp = %v, want about 15 minutes out", exp)
	}
}

func TestAuthService_RefreshTokens_Rotates(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)

	pair, _ := svc.GenerateTokenPair(ctx, 7, "", "")

	rotated, err := svc.RefreshTokens(ctx, pair.Refresh, "", "")
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if rotated.UserID != 7 || rotated.Refresh == pair.Refresh {
		t.Errorf("rotated = %+v, want a new refresh token for user 7", rotated)
	}
	if store.RevokedTokenCount(7) != 1 {
		t.Errorf("revoked = %d, want the old token revoked", store.RevokedTokenCount(7))
	}
}

func TestAuthService_RefreshTokens_ReuseRevokesFamily(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)

	pair, _ := svc.GenerateTokenPair(ctx, 7, "", "")
	rotated, _ := svc.RefreshTokens(ctx, pair.Refresh, "", "")

	// Presenting the already rotated token again is treated as theft.
	if _, err := svc.RefreshTokens(ctx, pair.Refresh, "", ""); !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("reuse error = %v, want ErrRefreshTokenReused", err)
	}
	if _, err := svc.RefreshTokens(ctx, rotated.Refresh, "", ""); !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Errorf("descendant token should be revoked too, got %v", err)
	}
}

func TestAuthService_RefreshTokens_LinksReplacement(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)
	pair, _ := svc.GenerateTokenPair(ctx, 7, "", "")

	rotated, err := svc.RefreshTokens(ctx, pair.Refresh, "agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}

	old, _ := store.RefreshTokens().FindByTokenHash(ctx, svc.hashToken(pair.Refresh))
	next, err := store.RefreshTokens().FindByTokenHash(ctx, svc.hashToken(rotated.Refresh))
	if err != nil {
		t.Fatalf("rotated token not stored: %v", err)
	}
	if old.ReplacedBy == nil || *old.ReplacedBy != next.ID {
		t.Errorf("replaced_by = %v, want %s", old.ReplacedBy, next.ID)
	}
	if next.UserID != 7 || next.DeviceInfo == nil || *next.DeviceInfo != "agent" {
		t.Errorf("next token = %+v", next)
	}
}

// racingTokenRepo lets a test swap Rotate while keeping the rest of the store.
type racingTokenRepo struct {
	repository.RefreshTokenRepository
	rotateFn func(ctx context.Context, oldID string, next *model.RefreshToken) error
}

func (r *racingTokenRepo) Rotate(ctx context.Context, oldID string, next *model.RefreshToken) error {
	return r.rotateFn(ctx, oldID, next)
}

func TestAuthService_RefreshTokens_ConcurrentRotationRevokesFamily(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	store := testutil.NewStore()
	repo := &racingTokenRepo{
		RefreshTokenRepository: store.RefreshTokens(),
		rotateFn: func(ctx context.Context, oldID string, next *model.RefreshToken) error {
			return model.ErrRefreshTokenReused
		},
	}
	svc := NewAuthService(repo, &config.Config{JWTSecret: "test-secret", AccessTokenMaxAge: 900, RefreshTokenMaxAge: 3600})
	pair, _ := svc.GenerateTokenPair(ctx, 9, "", "")

	// ACT
	_, err := svc.RefreshTokens(ctx, pair.Refresh, "", "")

	// ASSERT
	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("error = %v, want ErrRefreshTokenReused", err)
	}
	if store.RevokedTokenCount(9) != 1 {
		t.Errorf("revoked = %d, want the whole family revoked", store.RevokedTokenCount(9))
	}
}

func TestAuthService_RefreshTokens_Errors(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)

	if _, err := svc.RefreshTokens(ctx, "never-issued", "", ""); !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("unknown token error = %v, want ErrRefreshTokenNotFound", err)
	}

	expired := &model.RefreshToken{UserID: 1, TokenHash: svc.hashToken("old"), ExpiresAt: time.Now().Add(-time.Minute)}
	store.RefreshTokens().Create(ctx, expired)
	if _, err := svc.RefreshTokens(ctx, "old", "", ""); !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("expired token error = %v, want ErrRefreshTokenExpired", err)
	}
}

func TestAuthService_RevokeRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)
	pair, _ := svc.GenerateTokenPair(ctx, 3, "", "")

	if err := svc.RevokeRefreshToken(ctx, pair.Refresh); err != nil {
		t.Fatalf("RevokeRefreshToken() error = %v", err)
	}
	if store.RevokedTokenCount(3) != 1 {
		t.Error("token should be revoked")
	}
	if err := svc.RevokeRefreshToken(ctx, pair.Refresh); !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("second revoke error = %v, want ErrRefreshTokenNotFound", err)
	}
	if err := svc.RevokeRefreshToken(ctx, "unknown"); !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("unknown token error = %v, want ErrRefreshTokenNotFound", err)
	}
}

func TestAuthService_PruneExpiredTokens(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	store := testutil.NewStore()
	svc := newAuthService(store)
	live, _ := svc.GenerateTokenPair(ctx, 4, "", "")
	stale := &model.RefreshToken{
		UserID:    4,
		TokenHash: "stale",
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}
	if err := store.RefreshTokens().Create(ctx, stale); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// ACT
	n, err := svc.PruneExpiredTokens(ctx, 24*time.Hour)

	// ASSERT
	if err != nil {
		t.Fatalf("PruneExpiredTokens() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d tokens, want 1", n)
	}
	if _, err := svc.RefreshTokens(ctx, live.Refresh, "", ""); err != nil {
		t.Errorf("live token should survive pruning: %v", err)
	}
}
