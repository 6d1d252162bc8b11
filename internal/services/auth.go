package services

import (
	"context"
	"log/slog"
	"net/http"

	"semaphore/dashboard/internal/result"
	"semaphore/dashboard/internal/session"
	"semaphore/dashboard/internal/validation"
)

type AuthService struct {
	api    API
	store  *session.Store
	logger *slog.Logger
}

type authResponse struct {
	User   session.User   `json:"user"`
	Tokens session.Tokens `json:"tokens"`
}

// Login authenticates and persists the returned user and tokens.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) result.Result[session.Session] {
	return s.authenticate(ctx, PathLogin, req)
}

// Register creates the account and, when the backend answers with tokens,
// starts a session for it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) result.Result[session.Session] {
	return s.authenticate(ctx, PathRegister, req)
}

func (s *AuthService) authenticate(ctx context.Context, path string, req any) result.Result[session.Session] {
	return result.Execute(ctx, func(ctx context.Context) (session.Session, error) {
		if err := validation.Struct(req); err != nil {
			return session.Session{}, err
		}
		resp, err := s.api.Post(ctx, path, req)
		if err != nil {
			return session.Session{}, err
		}
		var body authResponse
		if err := resp.Decode(&body); err != nil {
			return session.Session{}, err
		}
		sess := session.Session{User: body.User, Tokens: body.Tokens}
		if sess.Tokens.Empty() {
			return sess, nil
		}
		if err := s.store.Save(ctx, sess); err != nil {
			return session.Session{}, err
		}
		s.logger.Info("session started", "user", sess.User.DisplayName())
		return sess, nil
	})
}

// Logout clears the local session. The backend keeps no server side state
// for it.
func (s *AuthService) Logout(ctx context.Context) result.Result[Empty] {
	return result.Execute(ctx, func(ctx context.Context) (Empty, error) {
		return Empty{}, s.store.Clear(ctx)
	})
}

// Profile returns the stored user of the current session.
func (s *AuthService) Profile(ctx context.Context) result.Result[session.User] {
	return result.Execute(ctx, func(ctx context.Context) (session.User, error) {
		user, ok := s.store.ReadUser(ctx)
		if !ok {
			return session.User{}, session.ErrNoSession
		}
		return user, nil
	})
}

func (s *AuthService) GenerateResetToken(ctx context.Context, req GenerateResetTokenRequest) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodPost, PathGenerateResetToken, req)
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodPost, PathResetPassword, req)
}

func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodPost, PathChangePassword, req)
}
