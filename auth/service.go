package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

// DefaultNamespace is used for callers without a usable identity token.
const DefaultNamespace = "default"

// DefaultClaims lists the identity claims checked in order. Entra ID access
// tokens usually carry preferred_username or upn rather than email.
var DefaultClaims = []string{"email", "preferred_username", "upn", "sub"}

// Service maps the caller's bearer token to the namespace that partitions
// credentials, Graph clients and timesheet drafts.
type Service struct {
	// Fallback is returned when no token is present or no claim matches.
	Fallback string
	// Claims are tried in order; the first non-empty string claim wins.
	Claims []string
	// Parse turns a token string into claims; tokens are verified upstream.
	Parse func(token string) (jwt.MapClaims, error)
}

// Namespace returns the identity of the caller whose token the MCP auth
// middleware placed in ctx.
func (s *Service) Namespace(ctx context.Context) (string, error) {
	if s == nil {
		return DefaultNamespace, nil
	}
	token, err := tokenFrom(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return s.fallback(), nil
	}
	parse := s.Parse
	if parse == nil {
		parse = parseUnverified
	}
	claims, err := parse(token)
	if err != nil {
		return s.fallback(), nil
	}
	if ns := s.match(claims); ns != "" {
		return ns, nil
	}
	return s.fallback(), nil
}

func (s *Service) match(claims jwt.MapClaims) string {
	names := s.Claims
	if len(names) == 0 {
		names = DefaultClaims
	}
	for _, name := range names {
		if v, _ := claims[name].(string); strings.TrimSpace(v) != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

func (s *Service) fallback() string {
	if s.Fallback == "" {
		return DefaultNamespace
	}
	return s.Fallback
}

func tokenFrom(ctx context.Context) (string, error) {
	switch tv := ctx.Value(authorization.TokenKey).(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	case *authorization.Token:
		if tv == nil {
			return "", nil
		}
		return tv.Token, nil
	default:
		return "", fmt.Errorf("unsupported token type %T", tv)
	}
}

func parseUnverified(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	return claims, err
}

// New returns a Service using DefaultClaims and unverified parsing.
func New() *Service {
	return &Service{Fallback: DefaultNamespace, Claims: DefaultClaims, Parse: parseUnverified}
}
