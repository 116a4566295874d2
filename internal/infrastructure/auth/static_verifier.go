package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/gridfan/f1-fantasy/internal/domain/user"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

// StaticTokenVerifier maps pre-shared bearer tokens to principals. It stands
// in for a real identity provider in single-tenant deployments; the HTTP
// layer only sees the TokenVerifier interface, so swapping in a remote
// verifier later touches nothing but wiring.
type StaticTokenVerifier struct {
	byToken map[string]user.Principal
}

// NewStaticTokenVerifier parses "token:userID:username" triples.
func NewStaticTokenVerifier(entries []string) (*StaticTokenVerifier, error) {
	byToken := make(map[string]user.Principal, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("malformed auth token entry %q, want token:userID:username", entry)
		}
		byToken[parts[0]] = user.Principal{UserID: parts[1], Username: parts[2]}
	}

	return &StaticTokenVerifier{byToken: byToken}, nil
}

func (v *StaticTokenVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.byToken[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown access token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// Principals lists every configured identity, used to seed user rows so
// leaderboard queries can resolve usernames.
func (v *StaticTokenVerifier) Principals() []user.Principal {
	out := make([]user.Principal, 0, len(v.byToken))
	for _, principal := range v.byToken {
		out = append(out, principal)
	}
	return out
}
