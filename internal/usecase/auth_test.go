package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	pkgAuth "github.com/ganzorig/qpaygate/internal/pkg/auth"
	testhelpers "github.com/ganzorig/qpaygate/internal/test"
)

func newAuthUseCase() (*AuthUseCase, *testhelpers.MerchantRepositoryStub) {
	repo := testhelpers.NewMerchantRepositoryStub()
	strategy := pkgAuth.NewHMACStrategy("test-secret", pkgAuth.Options{TTL: time.Hour})
	return NewAuthUseCase(repo, pkgAuth.NewBcryptHasher(4), strategy), repo
}

func TestAuthRegisterIssuesToken(t *testing.T) {
	uc, repo := newAuthUseCase()

	merchant, token, err := uc.Register(context.Background(), "shop", "password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merchant.ID == 0 || token == "" {
		t.Fatalf("expected merchant and token, got %+v %q", merchant, token)
	}
	if repo.Merchants["shop"].PasswordHash == "password" {
		t.Fatal("expected password to be hashed")
	}

	id, err := uc.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if id != merchant.ID {
		t.Fatalf("expected merchant %d, got %d", merchant.ID, id)
	}
}

func TestAuthRegisterDuplicateLogin(t *testing.T) {
	uc, _ := newAuthUseCase()

	if _, _, err := uc.Register(context.Background(), "shop", "password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := uc.Register(context.Background(), "shop", "other"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestAuthRegisterRejectsBlankCredentials(t *testing.T) {
	uc, _ := newAuthUseCase()

	if _, _, err := uc.Register(context.Background(), "  ", "password"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := uc.Register(context.Background(), "shop", ""); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	uc, _ := newAuthUseCase()

	if _, _, err := uc.Register(context.Background(), "shop", "password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merchant, token, err := uc.Authenticate(context.Background(), "shop", "password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merchant.Login != "shop" || token == "" {
		t.Fatalf("unexpected result %+v %q", merchant, token)
	}

	if _, _, err := uc.Authenticate(context.Background(), "shop", "wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := uc.Authenticate(context.Background(), "nobody", "password"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestParseTokenRejectsEmptyAndTampered(t *testing.T) {
	uc, _ := newAuthUseCase()

	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := uc.ParseToken("bm90LWEtdG9rZW4="); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
