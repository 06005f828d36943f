package auth

import "time"

// Strategy issues and verifies merchant API tokens.
type Strategy interface {
	IssueToken(merchantID int64) (string, error)
	ParseToken(token string) (int64, error)
}

type Options struct {
	TTL time.Duration
}
