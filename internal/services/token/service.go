package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

// Plain tokens look like "bo_<prefix>.<secret>". The prefix is stored as is
// and used for lookup; only a bcrypt hash of the secret is kept.
const (
	tokenScheme  = "bo_"
	prefixBytes  = 8
	secretBytes  = 32
	maxAttempts  = 5
	touchTimeout = 2 * time.Second
)

type TokenServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTokenService(db *orm.PostgresClient, log *zap.Logger, m *metrics.Metrics) services.TokenService {
	return &TokenServiceImpl{
		db:      db,
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TokenServiceImpl) ListTokens(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Token], error) {
	start := time.Now()
	result, err := s.db.SelectTokensWithPagination(ctx, lib.ListRequest{Query: query})
	s.metrics.ObserveList("token", start)
	if err != nil {
		if lib.IsClientError(err) {
			return nil, err
		}
		s.log.Error("error listing tokens", zap.Error(err))
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return result, nil
}

func (s *TokenServiceImpl) GetToken(ctx context.Context, uid uuid.UUID) (*orm.Token, error) {
	token, err := s.db.SelectTokenByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting token", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select token: %w", err)
	}
	return token, nil
}

func (s *TokenServiceImpl) CreateToken(ctx context.Context, input services.CreateTokenInput) (*orm.Token, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is empty", lib.ErrInvalidArgument)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		prefix, secret, err := generate()
		if err != nil {
			s.log.Error("error generating token", zap.Error(err))
			return nil, "", fmt.Errorf("generate token: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", fmt.Errorf("hash token: %w", err)
		}

		token := &orm.Token{
			Name:      name,
			Prefix:    prefix,
			Hash:      string(hash),
			IsUse:     true,
			ExpiresAt: input.ExpiresAt,
		}

		err = s.db.InsertToken(ctx, token)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Debug("token prefix collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			s.log.Error("error inserting token", zap.Error(err))
			return nil, "", fmt.Errorf("insert token: %w", err)
		}

		return token, tokenScheme + prefix + "." + secret, nil
	}

	return nil, "", fmt.Errorf("%w: token prefix", lib.ErrAlreadyExists)
}

func (s *TokenServiceImpl) UpdateToken(ctx context.Context, uid uuid.UUID, input services.UpdateTokenInput) (*orm.Token, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name is empty", lib.ErrInvalidArgument)
	}

	token, err := s.GetToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		token.Name = strings.TrimSpace(*input.Name)
	}
	if input.IsUse != nil {
		token.IsUse = *input.IsUse
	}
	if input.ExpiresAt != nil {
		token.ExpiresAt = input.ExpiresAt
	}

	if err := s.db.UpdateToken(ctx, token); err != nil {
		s.log.Error("error updating token", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("update token: %w", err)
	}
	return token, nil
}

func (s *TokenServiceImpl) DeleteToken(ctx context.Context, uid uuid.UUID) error {
	token, err := s.GetToken(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.db.DeleteToken(ctx, token); err != nil {
		s.log.Error("error deleting token", zap.String("uid", uid.String()), zap.Error(err))
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *TokenServiceImpl) VerifyToken(ctx context.Context, plain string) (*orm.Token, error) {
	rest, ok := strings.CutPrefix(plain, tokenScheme)
	if !ok {
		return nil, lib.ErrInvalidToken
	}
	prefix, secret, ok := strings.Cut(rest, ".")
	if !ok || prefix == "" || secret == "" {
		return nil, lib.ErrInvalidToken
	}

	token, err := s.db.SelectTokenByPrefix(ctx, prefix)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrInvalidToken
	}
	if err != nil {
		s.log.Error("error selecting token", zap.Error(err))
		return nil, fmt.Errorf("select token: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(token.Hash), []byte(secret)); err != nil {
		return nil, lib.ErrInvalidToken
	}

	now := s.now()
	if !token.IsUse || (token.ExpiresAt != nil && !token.ExpiresAt.After(now)) {
		return nil, lib.ErrInvalidToken
	}

	touchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), touchTimeout)
	defer cancel()
	if err := s.db.TouchToken(touchCtx, token.ID, now); err != nil {
		s.log.Warn("error touching token", zap.Int64("id", token.ID), zap.Error(err))
	} else {
		token.LastUsedAt = &now
	}

	return token, nil
}

func generate() (string, string, error) {
	prefix := make([]byte, prefixBytes)
	if _, err := rand.Read(prefix); err != nil {
		return "", "", err
	}
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}
	return hex.EncodeToString(prefix), base64.RawURLEncoding.EncodeToString(secret), nil
}
