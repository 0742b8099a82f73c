package refreshtokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisRepository.
const DefaultRedisPrefix = "authkeeper:"

// Each record is a hash under <prefix>rt:<sha256(refresh token)>; the hashes
// owned by a user are indexed in the set <prefix>user:<id>:rt. Both carry the
// store TTL, so stale records expire on their own.
const rotateScript = `
if redis.call("HGET", KEYS[1], "user_id") ~= ARGV[1] then
  return 0
end
local issued = redis.call("HGET", KEYS[1], "issued_at")
redis.call("DEL", KEYS[1])
redis.call("HSET", KEYS[2],
  "user_id", ARGV[1],
  "access_token", ARGV[2],
  "refresh_token", ARGV[3],
  "issued_at", issued,
  "modified_at", ARGV[4])
redis.call("PEXPIRE", KEYS[2], ARGV[5])
redis.call("SREM", KEYS[3], ARGV[6])
redis.call("SADD", KEYS[3], ARGV[7])
redis.call("PEXPIRE", KEYS[3], ARGV[5])
return 1
`

const deleteAllScript = `
local members = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, h in ipairs(members) do
  removed = removed + redis.call("DEL", ARGV[1] .. h)
end
redis.call("DEL", KEYS[1])
return removed
`

var (
	rotateLua    = redis.NewScript(rotateScript)
	deleteAllLua = redis.NewScript(deleteAllScript)
)

// RedisRepository implements Repository on a single Redis node. Rotation and
// revocation run as Lua scripts so each call is atomic; the revocation script
// derives record keys from the user index, so Redis Cluster is not supported.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisRepository builds a store whose records live for ttl after their
// last write. ttl must cover the refresh token lifetime plus the purge grace,
// so a record never disappears while its token could still be attributed.
func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *RedisRepository) tokenKeyPrefix() string { return r.prefix + "rt:" }

func (r *RedisRepository) tokenKey(hash string) string { return r.tokenKeyPrefix() + hash }

func (r *RedisRepository) userKey(userID string) string { return r.prefix + "user:" + userID + ":rt" }

func (r *RedisRepository) FindByRefreshToken(ctx context.Context, token string) (*models.TokenRecord, error) {
	hash := tokenHash(token)
	vals, err := r.client.HGetAll(ctx, r.tokenKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(vals) == 0 {
		return nil, common.ErrorNotFound
	}

	issued, err := strconv.ParseInt(vals["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt token record: issued_at: %w", err)
	}
	modified, err := strconv.ParseInt(vals["modified_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt token record: modified_at: %w", err)
	}

	return &models.TokenRecord{
		ID:           hash,
		UserID:       vals["user_id"],
		AccessToken:  vals["access_token"],
		RefreshToken: vals["refresh_token"],
		IssuedAt:     time.UnixMilli(issued).UTC(),
		ModifiedAt:   time.UnixMilli(modified).UTC(),
	}, nil
}

func (r *RedisRepository) Insert(ctx context.Context, userID, accessToken, refreshToken string) (*models.TokenRecord, error) {
	hash := tokenHash(refreshToken)
	now := r.now().UTC().Truncate(time.Millisecond)
	key := r.tokenKey(hash)
	userKey := r.userKey(userID)

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, map[string]any{
			"user_id":       userID,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"issued_at":     now.UnixMilli(),
			"modified_at":   now.UnixMilli(),
		})
		p.PExpire(ctx, key, r.ttl)
		p.SAdd(ctx, userKey, hash)
		p.PExpire(ctx, userKey, r.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return &models.TokenRecord{
		ID:           hash,
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IssuedAt:     now,
		ModifiedAt:   now,
	}, nil
}

func (r *RedisRepository) UpdateRotation(ctx context.Context, userID, oldRefresh, newAccess, newRefresh string) error {
	oldHash := tokenHash(oldRefresh)
	newHash := tokenHash(newRefresh)

	keys := []string{r.tokenKey(oldHash), r.tokenKey(newHash), r.userKey(userID)}
	res, err := rotateLua.Run(ctx, r.client, keys,
		userID, newAccess, newRefresh,
		r.now().UnixMilli(), r.ttl.Milliseconds(),
		oldHash, newHash,
	).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if res == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *RedisRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := deleteAllLua.Run(ctx, r.client, []string{r.userKey(userID)}, r.tokenKeyPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

// DeleteStale is a no-op: records expire through their TTL.
func (r *RedisRepository) DeleteStale(context.Context, time.Time) (int64, error) {
	return 0, nil
}
