package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/domain/repository"
	pkgAuth "github.com/ganzorig/qpaygate/internal/pkg/auth"
)

// AuthUseCase handles merchant lifecycle and token management.
type AuthUseCase struct {
	merchants repository.MerchantRepository
	hasher    pkgAuth.PasswordHasher
	tokens    pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(merchants repository.MerchantRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{merchants: merchants, hasher: hasher, tokens: strategy}
}

// Register creates a new merchant with login/password and returns an API token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.Merchant, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	merchant, err := u.merchants.Create(ctx, login, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(merchant.ID)
	if err != nil {
		return nil, "", err
	}

	return merchant, token, nil
}

// Authenticate validates credentials and returns an API token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.Merchant, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	merchant, err := u.merchants.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(merchant.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(merchant.ID)
	if err != nil {
		return nil, "", err
	}

	return merchant, token, nil
}

// ParseToken extracts merchant ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
