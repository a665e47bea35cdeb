package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/authorization"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestService_Namespace(t *testing.T) {
	testCases := []struct {
		description string
		value       any
		expect      string
		expectErr   bool
	}{
		{description: "no token", value: nil, expect: DefaultNamespace},
		{description: "email claim", value: signed(t, jwt.MapClaims{"email": "Alice@Example.com", "sub": "s1"}), expect: "alice@example.com"},
		{description: "entra preferred_username", value: signed(t, jwt.MapClaims{"preferred_username": "bob@contoso.com", "sub": "s2"}), expect: "bob@contoso.com"},
		{description: "sub only", value: &authorization.Token{Token: signed(t, jwt.MapClaims{"sub": "s3"})}, expect: "s3"},
		{description: "no identity claims", value: signed(t, jwt.MapClaims{"aud": "x"}), expect: DefaultNamespace},
		{description: "malformed token", value: "not-a-jwt", expect: DefaultNamespace},
		{description: "unsupported type", value: 42, expectErr: true},
	}
	srv := New()
	for _, tc := range testCases {
		ctx := context.Background()
		if tc.value != nil {
			ctx = context.WithValue(ctx, authorization.TokenKey, tc.value)
		}
		ns, err := srv.Namespace(ctx)
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		require.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect, ns, tc.description)
	}
}

func TestService_NilAndCustomClaims(t *testing.T) {
	var nilSrv *Service
	ns, err := nilSrv.Namespace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultNamespace, ns)

	srv := &Service{Fallback: "anon", Claims: []string{"oid"}}
	ctx := context.WithValue(context.Background(), authorization.TokenKey, signed(t, jwt.MapClaims{"oid": "OID-1", "email": "x@y.z"}))
	ns, err = srv.Namespace(ctx)
	require.NoError(t, err)
	assert.Equal(t, "oid-1", ns)

	ns, err = srv.Namespace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon", ns)
}
