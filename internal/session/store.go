package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultUserTTL    = 7 * 24 * time.Hour
)

type TTLs struct {
	Access  time.Duration
	Refresh time.Duration
	User    time.Duration
}

// Store persists the user profile, access token and refresh token as three
// independent records. Read failures of any kind are reported as absence.
type Store struct {
	backend Backend
	ttls    TTLs
	logger  *slog.Logger
}

type StoreOption func(*Store)

func WithTTLs(ttls TTLs) StoreOption {
	return func(s *Store) {
		if ttls.Access > 0 {
			s.ttls.Access = ttls.Access
		}
		if ttls.Refresh > 0 {
			s.ttls.Refresh = ttls.Refresh
		}
		if ttls.User > 0 {
			s.ttls.User = ttls.User
		}
	}
}

func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		ttls: TTLs{
			Access:  DefaultAccessTTL,
			Refresh: DefaultRefreshTTL,
			User:    DefaultUserTTL,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) TTLs() TTLs {
	return s.ttls
}

func (s *Store) Save(ctx context.Context, sess Session) error {
	if err := s.SaveUser(ctx, sess.User); err != nil {
		return err
	}
	return s.SaveTokens(ctx, sess.Tokens)
}

func (s *Store) SaveUser(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, KeyUser, string(data), s.ttls.User)
}

func (s *Store) SaveTokens(ctx context.Context, tokens Tokens) error {
	if err := s.backend.Set(ctx, KeyAccessToken, tokens.AccessToken, s.ttls.Access); err != nil {
		return err
	}
	return s.backend.Set(ctx, KeyRefreshToken, tokens.RefreshToken, s.ttls.Refresh)
}

// Read returns ok=false only when neither token is present.
func (s *Store) Read(ctx context.Context) (Tokens, bool) {
	tokens := Tokens{
		AccessToken:  s.get(ctx, KeyAccessToken),
		RefreshToken: s.get(ctx, KeyRefreshToken),
	}
	if tokens.Empty() {
		return Tokens{}, false
	}
	return tokens, true
}

func (s *Store) ReadUser(ctx context.Context) (User, bool) {
	raw := s.get(ctx, KeyUser)
	if raw == "" {
		return User{}, false
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding corrupted session record", "key", KeyUser, "error", err)
		return User{}, false
	}
	return user, true
}

func (s *Store) UpdateAccessToken(ctx context.Context, token string) error {
	return s.backend.Set(ctx, KeyAccessToken, token, s.ttls.Access)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyUser, KeyAccessToken, KeyRefreshToken)
}

func (s *Store) get(ctx context.Context, key string) string {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("session record unreadable", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return value
}
