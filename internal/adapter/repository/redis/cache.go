package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
)

const (
	defaultAccountTTL = 30 * time.Second
	// versionTTL keeps fill versions far longer than any snapshot lives.
	versionTTL = 24 * time.Hour
)

// fillScript stores a snapshot only if the version key still holds the value
// the reader saw on its miss. KEYS: snapshot, version. ARGV: json, version, ttl ms.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// AccountCache implements usecase.AccountCache using Redis. It stores
// committed account snapshots as JSON under a TTL, next to a per-account
// version counter that Invalidate bumps.
type AccountCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewAccountCache creates a new AccountCache. A non-positive ttl uses the
// default.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = defaultAccountTTL
	}
	return &AccountCache{
		client: client,
		prefix: "account:",
		ttl:    ttl,
	}
}

type accountSnapshot struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Get returns the cached account, or nil and the current fill version on a miss.
func (c *AccountCache) Get(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error) {
	values, err := c.client.MGet(ctx, c.key(id), c.versionKey(id)).Result()
	if err != nil {
		return nil, 0, err
	}

	version, err := parseVersion(values[1])
	if err != nil {
		return nil, 0, fmt.Errorf("decode cache version of %s: %w", id, err)
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, version, nil
	}

	var snap accountSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, 0, fmt.Errorf("decode cached account %s: %w", id, err)
	}

	return &domain.Account{
		ID:        snap.ID,
		OwnerID:   snap.OwnerID,
		Currency:  snap.Currency,
		Balance:   snap.Balance,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}, version, nil
}

// Set stores a snapshot of account unless the account was invalidated after
// version was read.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account, version int64) error {
	raw, err := json.Marshal(accountSnapshot{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Currency:  account.Currency,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return err
	}

	keys := []string{c.key(account.ID), c.versionKey(account.ID)}
	return fillScript.Run(ctx, c.client, keys, raw, strconv.FormatInt(version, 10), c.ttl.Milliseconds()).Err()
}

// Invalidate removes the snapshots of ids and bumps their fill versions.
func (c *AccountCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, c.versionKey(id))
			pipe.Expire(ctx, c.versionKey(id), versionTTL)
			pipe.Del(ctx, c.key(id))
		}
		return nil
	})
	return err
}

// Keys share a hash tag so the fill script touches a single slot.
func (c *AccountCache) key(id uuid.UUID) string {
	return c.prefix + "{" + id.String() + "}"
}

func (c *AccountCache) versionKey(id uuid.UUID) string {
	return c.key(id) + ":version"
}

func parseVersion(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
