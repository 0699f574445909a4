package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"socialhub/internal/config"
	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/repository"
)

// AuthService issues access tokens and rotates refresh tokens with reuse detection.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
	log              *logrus.Entry
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
		log:              logger.For("AuthService"),
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, raw := s.newRefreshToken(userID, deviceInfo, ipAddress)
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		UserID:  userID,
		Access:  accessToken,
		Refresh: raw,
	}, nil
}

// RefreshTokens validates the refresh token and rotates a new pair. Presenting
// an already revoked token revokes every token of its owner.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshTokenRaw))
	if err != nil {
		return nil, model.ErrRefreshTokenNotFound
	}

	if token.IsRevoked() {
		return nil, s.revokeTokenFamily(ctx, token)
	}

	if token.IsExpired() {
		return nil, model.ErrRefreshTokenExpired
	}

	accessToken, err := s.generateAccessToken(token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	next, raw := s.newRefreshToken(token.UserID, deviceInfo, ipAddress)
	if err := s.refreshTokenRepo.Rotate(ctx, token.ID, next); err != nil {
		if errors.Is(err, model.ErrRefreshTokenReused) {
			// Another request rotated this token between the lookup and now.
			return nil, s.revokeTokenFamily(ctx, token)
		}
		return nil, err
	}

	return &model.TokenPair{
		UserID:  token.UserID,
		Access:  accessToken,
		Refresh: raw,
	}, nil
}

// RevokeRefreshToken revokes a single refresh token. Unknown tokens report
// ErrRefreshTokenNotFound.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshTokenRaw))
	if err != nil {
		if errors.Is(err, model.ErrRefreshTokenNotFound) {
			return err
		}
		return fmt.Errorf("failed to find refresh token: %w", err)
	}
	return s.refreshTokenRepo.Revoke(ctx, token.ID)
}

func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

// PruneExpiredTokens deletes refresh tokens that expired more than olderThan ago.
func (s *AuthService) PruneExpiredTokens(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("Pruned expired refresh tokens")
	}
	return n, nil
}

// revokeTokenFamily revokes every live token of the owner and always reports
// ErrRefreshTokenReused to the caller.
func (s *AuthService) revokeTokenFamily(ctx context.Context, token *model.RefreshToken) error {
	s.log.WithField("user_id", token.UserID).Warn("Refresh token reuse detected, revoking all sessions")
	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, token.UserID); err != nil {
		s.log.WithError(err).WithField("user_id", token.UserID).Error("Token family revocation failed")
	}
	return model.ErrRefreshTokenReused
}

func (s *AuthService) newRefreshToken(userID int64, deviceInfo, ipAddress string) (*model.RefreshToken, string) {
	raw := uuid.New().String()
	token := &model.RefreshToken{
		UserID:    userID,
		TokenHash: s.hashToken(raw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}
	if deviceInfo != "" {
		token.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		token.IPAddress = &ipAddress
	}
	return token, raw
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
