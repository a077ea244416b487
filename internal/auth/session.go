package auth

import (
	"context"
	"errors"

	"admin-backend/internal/api"
	"admin-backend/internal/rbac"
)

// IdentityStore is the persistence-side collaborator the session layer pulls
// user snapshots from. Unknown ids return (nil, nil), not an error.
type IdentityStore interface {
	GetUserWithPermissions(ctx context.Context, userID int64) (*rbac.UserProfile, error)
}

// Session is a resolved request identity. When NeedsRefresh is set the caller
// must write both new tokens back as cookies so the rotation is invisible to
// the client.
type Session struct {
	User         *rbac.UserProfile
	NeedsRefresh bool
	AccessToken  string
	RefreshToken string
}

// SessionManager turns raw cookie values into a Session, minting a fresh
// token pair when the access token has expired but the refresh token is
// still good.
type SessionManager struct {
	tokens *TokenManager
	users  IdentityStore
}

func NewSessionManager(tokens *TokenManager, users IdentityStore) *SessionManager {
	return &SessionManager{tokens: tokens, users: users}
}

// Tokens exposes the manager used for signing, for handlers that issue the
// initial pair at login.
func (s *SessionManager) Tokens() *TokenManager {
	return s.tokens
}

// ResolveSession resolves the current user from the access/refresh token pair.
//
//  1. A valid access token yields the current store snapshot for its user.
//  2. An absent or expired access token with a valid refresh token mints a
//     new pair and yields the snapshot with NeedsRefresh set.
//  3. Every other outcome is anonymous: (nil, nil). An invalid signature is
//     terminal here, never retried via refresh.
//
// The only error return is identity-store I/O failure.
func (s *SessionManager) ResolveSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken != "" {
		claims, err := s.tokens.VerifyAccessToken(accessToken)
		if err == nil {
			user, err := s.users.GetUserWithPermissions(ctx, claims.UserID)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, nil
			}
			return &Session{User: user}, nil
		}
		var appErr *api.AppError
		if !errors.As(err, &appErr) || appErr.Code != "TOKEN_EXPIRED" {
			return nil, nil
		}
	}

	if refreshToken == "" {
		return nil, nil
	}
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetUserWithPermissions(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	newAccess, err := s.tokens.SignAccessToken(claims.UserID)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.tokens.SignRefreshToken(claims.UserID)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		NeedsRefresh: true,
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
	}, nil
}
