// Package services contains server-side business logic. SessionManager owns
// the credential and token lifecycle: registration, sign-in, refresh-token
// rotation with reuse detection, access-token checks and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/events"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries already-validated registration fields.
type RegisterInput struct {
	GivenName      string
	MiddleName     string
	LastName       string
	ContactNumber  string
	ContactEmail   string
	Username       string
	Password       string
	ProfilePicture string
}

type SessionManager struct {
	accounts users.Repository
	tokens   refreshtokens.Repository

	hasher cryptox.Hasher
	codec  *auth.Codec

	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	purgeGrace time.Duration
	policy     ClaimsPolicy

	publisher events.Publisher
	avatars   avatars.Store
	logger    logging.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*SessionManager)

func WithHasher(h cryptox.Hasher) Option {
	return func(s *SessionManager) { s.hasher = h }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *SessionManager) { s.publisher = p }
}

func WithAvatars(a avatars.Store) Option {
	return func(s *SessionManager) { s.avatars = a }
}

func WithLogger(l logging.Logger) Option {
	return func(s *SessionManager) { s.logger = l }
}

// WithClock pins both token issuing and token verification to now.
func WithClock(now func() time.Time) Option {
	return func(s *SessionManager) {
		s.now = now
		s.codec = auth.NewCodecWithClock(now)
	}
}

// NewSessionManager wires the account and token stores of m with the signing
// settings of cfg. Unset collaborators default to bcrypt, a no-op logger,
// a discarding publisher and verbatim profile pictures.
func NewSessionManager(m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *SessionManager {
	s := &SessionManager{
		accounts:   m.Accounts(),
		tokens:     m.RefreshTokens(),
		hasher:     cryptox.NewBcryptHasher(),
		codec:      auth.NewCodec(),
		accessKey:  []byte(cfg.AccessTokenKey),
		refreshKey: []byte(cfg.RefreshTokenKey),
		accessTTL:  cfg.AccessTokenLifetime,
		refreshTTL: cfg.RefreshTokenLifetime,
		purgeGrace: cfg.PurgeGrace,
		policy:     PolicyFromConfig(cfg),
		avatars:    avatars.Passthrough{},
		logger:     logging.Nop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NewLogPublisher(s.logger)
	}
	return s
}

// Register hashes the password and asks the account store to create the
// account. A rejection by the store comes back as BadRequest carrying the
// store's status verbatim; on success the status is returned.
func (s *SessionManager) Register(ctx context.Context, in RegisterInput) (string, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return "", common.BadRequest(common.MsgPasswordTooLong, nil)
		}
		return "", common.Internal(err)
	}

	picture, err := s.avatars.Save(ctx, in.Username, in.ProfilePicture)
	if err != nil {
		if errors.Is(err, avatars.ErrInvalidPicture) {
			return "", common.BadRequest(common.MsgInvalidProfilePicture, nil)
		}
		return "", common.Internal(fmt.Errorf("save profile picture: %w", err))
	}

	st, err := s.accounts.Register(ctx, &models.Account{
		GivenName:      in.GivenName,
		MiddleName:     in.MiddleName,
		LastName:       in.LastName,
		ContactNumber:  in.ContactNumber,
		ContactEmail:   in.ContactEmail,
		Username:       in.Username,
		PasswordHash:   hash,
		ProfilePicture: picture,
	})
	if err != nil {
		return "", common.Internal(fmt.Errorf("register account: %w", err))
	}
	if st.StatusType == models.StatusTypeBadRequest {
		return "", common.BadRequest(st.Status, nil)
	}

	s.publish(ctx, events.Event{Type: events.TypeAccountRegistered, Username: in.Username})
	return st.Status, nil
}

// SignIn checks the credentials and issues a fresh token pair. An unknown
// username and a wrong password fail identically.
func (s *SessionManager) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	acc, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(common.MsgInvalidCredentials)
		}
		return nil, common.Internal(fmt.Errorf("find account: %w", err))
	}

	ok, err := s.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		return nil, common.Internal(err)
	}
	if !ok {
		return nil, common.Unauthorized(common.MsgInvalidCredentials)
	}

	pair, err := s.issue(acc.ID, acc.Username)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokens.Insert(ctx, acc.ID, pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, common.Internal(fmt.Errorf("store refresh token: %w", err))
	}

	s.publish(ctx, events.Event{Type: events.TypeSignedIn, UserID: acc.ID, Username: acc.Username})
	return pair, nil
}

// VerifyRefresh decides whether a presented refresh token may be rotated.
//
// A token missing from the store has either been rotated away, been purged
// after expiring, or never existed. If its signature still checks out and it
// expired recently enough that its record cannot have been purged, someone
// is replaying it: every session of the owner is revoked and the call fails
// with REFRESH_TOKEN_REUSED. A token that expired before the purge horizon
// is only reported as expired. A token whose signature fails identifies
// nobody and is rejected without revocation.
func (s *SessionManager) VerifyRefresh(ctx context.Context, token string) (auth.Identity, error) {
	rec, err := s.tokens.FindByRefreshToken(ctx, token)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return auth.Identity{}, common.Internal(fmt.Errorf("find refresh token: %w", err))
		}
		return auth.Identity{}, s.onUnknownRefresh(ctx, token)
	}

	v := s.codec.Inspect(token, s.refreshKey)
	switch v.Outcome {
	case auth.OutcomeValid:
	case auth.OutcomeExpired:
		return auth.Identity{}, common.Forbidden(common.MsgRefreshTokenExpired)
	case auth.OutcomeInvalid:
		return auth.Identity{}, common.Forbidden(common.MsgInvalidRefreshToken)
	default:
		return auth.Identity{}, common.Internal(v.Err)
	}

	if !s.policy.Matches(v.Claims) || v.Claims.ID != rec.UserID {
		return auth.Identity{}, common.Unauthorized(common.MsgInvalidTokenClaims)
	}
	return auth.Identity{ID: v.Claims.ID, Username: v.Claims.Username}, nil
}

func (s *SessionManager) onUnknownRefresh(ctx context.Context, token string) error {
	v := s.codec.Inspect(token, s.refreshKey)

	switch v.Outcome {
	case auth.OutcomeValid:
		if v.Claims == nil || v.Claims.ID == "" {
			return common.Forbidden(common.MsgInvalidRefreshToken)
		}
	case auth.OutcomeExpired:
		if v.Claims == nil || v.Claims.ID == "" {
			return common.Forbidden(common.MsgInvalidRefreshToken)
		}
		if s.purgeable(v.Claims) {
			return common.Forbidden(common.MsgRefreshTokenExpired)
		}
	case auth.OutcomeInvalid:
		return common.Forbidden(common.MsgInvalidRefreshToken)
	default:
		return common.Internal(v.Err)
	}

	userID := v.Claims.ID
	n, err := s.tokens.DeleteAllForUser(ctx, userID)
	if err != nil {
		return common.Internal(fmt.Errorf("revoke sessions: %w", err))
	}

	s.logger.Warn(ctx, "refresh token reuse detected", "user_id", userID, "revoked", n)
	s.publish(ctx, events.Event{Type: events.TypeReuseDetected, UserID: userID, Username: v.Claims.Username, Revoked: n})
	return common.Forbidden(common.MsgRefreshTokenReused)
}

// purgeable reports whether the record of an expired token may already have
// been dropped by PurgeStale or a store TTL, which makes its absence
// meaningless.
func (s *SessionManager) purgeable(c *auth.Claims) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.After(s.purgeHorizon())
}

func (s *SessionManager) purgeHorizon() time.Time {
	return s.now().Add(-s.purgeGrace)
}

// RefreshToken rotates presented, already checked by VerifyRefresh, into a
// new pair. Losing a concurrent rotation of the same token is reported as
// reuse, without revoking the winner's session.
func (s *SessionManager) RefreshToken(ctx context.Context, userID, username, presented string) (*TokenPair, error) {
	pair, err := s.issue(userID, username)
	if err != nil {
		return nil, err
	}

	err = s.tokens.UpdateRotation(ctx, userID, presented, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Forbidden(common.MsgRefreshTokenReused)
		}
		return nil, common.Internal(fmt.Errorf("rotate refresh token: %w", err))
	}
	return pair, nil
}

// VerifyAccess checks an access token and returns its subject.
func (s *SessionManager) VerifyAccess(ctx context.Context, token string) (auth.Identity, error) {
	v := s.codec.Inspect(token, s.accessKey)
	switch v.Outcome {
	case auth.OutcomeValid:
	case auth.OutcomeExpired:
		return auth.Identity{}, common.Unauthorized(common.MsgAccessTokenExpired)
	case auth.OutcomeInvalid:
		return auth.Identity{}, common.Unauthorized(common.MsgInvalidAccessToken)
	default:
		return auth.Identity{}, common.Internal(v.Err)
	}

	if !s.policy.Matches(v.Claims) {
		return auth.Identity{}, common.Unauthorized(common.MsgInvalidAccessToken)
	}
	return auth.Identity{ID: v.Claims.ID, Username: v.Claims.Username}, nil
}

// Logout revokes every refresh token of userID. Access tokens already handed
// out stay valid until they expire.
func (s *SessionManager) Logout(ctx context.Context, userID string) (int64, error) {
	n, err := s.tokens.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, common.Internal(fmt.Errorf("revoke sessions: %w", err))
	}
	s.publish(ctx, events.Event{Type: events.TypeSessionsRevoked, UserID: userID, Revoked: n})
	return n, nil
}

// PurgeStale drops refresh token records whose token expired more than the
// purge grace ago.
func (s *SessionManager) PurgeStale(ctx context.Context) (int64, error) {
	return s.tokens.DeleteStale(ctx, s.purgeHorizon().Add(-s.refreshTTL))
}

func (s *SessionManager) issue(userID, username string) (*TokenPair, error) {
	now := s.now()
	jti := s.newID()

	claims := func(ttl time.Duration) *auth.Claims {
		return &auth.Claims{
			ID:       userID,
			Username: username,
			Type:     s.policy.Type,
			Usr:      s.policy.Usr,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        jti,
				Issuer:    s.policy.Issuer,
				Audience:  jwt.ClaimStrings{s.policy.Audience},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}
	}

	access, err := s.codec.Sign(claims(s.accessTTL), s.accessKey)
	if err != nil {
		return nil, common.Internal(err)
	}
	refresh, err := s.codec.Sign(claims(s.refreshTTL), s.refreshKey)
	if err != nil {
		return nil, common.Internal(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SessionManager) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error(ctx, "publish event failed", "type", e.Type, "error", err)
	}
}
