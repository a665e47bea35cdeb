package graph

import (
	"context"
	"fmt"

	graphusers "github.com/microsoftgraph/msgraph-sdk-go/users"
)

// userSelect is the fixed projection of the signed-in user.
var userSelect = []string{"displayName", "givenName", "mail", "mailboxSettings", "userPrincipalName"}

type UserService struct{ m *Manager }

func NewUserService(m *Manager) *UserService { return &UserService{m: m} }

// Me fetches the signed-in user.
func (s *UserService) Me(ctx context.Context, in *GetUserInput, scopes []string, prompt func(string)) (*User, error) {
	client, err := s.m.Client(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	cfg := &graphusers.UserItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &graphusers.UserItemRequestBuilderGetQueryParameters{Select: userSelect},
	}
	me, err := client.Me().Get(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	out := &User{
		ID:                ptrVal(me.GetId()),
		DisplayName:       ptrVal(me.GetDisplayName()),
		GivenName:         ptrVal(me.GetGivenName()),
		Mail:              ptrVal(me.GetMail()),
		UserPrincipalName: ptrVal(me.GetUserPrincipalName()),
	}
	if settings := me.GetMailboxSettings(); settings != nil {
		out.TimeZone = ptrVal(settings.GetTimeZone())
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func ptrVal[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
