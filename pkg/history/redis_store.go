package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "message_store:"

// appendScript pushes ARGV[3..] onto KEYS[1] unless the list already ends
// with an entry of turn ARGV[1]. ARGV[2] is the ttl in milliseconds, 0 for none.
var appendScript = redis.NewScript(`
local turn = ARGV[1]
if turn ~= "" then
  local last = redis.call("LINDEX", KEYS[1], -1)
  if last then
    local ok, entry = pcall(cjson.decode, last)
    if ok and type(entry) == "table" and entry.turnId == turn then
      return 0
    end
  end
end
for i = 3, #ARGV do
  redis.call("RPUSH", KEYS[1], ARGV[i])
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
  redis.call("PEXPIRE", KEYS[1], ttl)
end
return 1
`)

// RedisStore keeps each session as a Redis list, oldest entry first.
type RedisStore struct {
	rdb       redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// WithTTL expires an idle session log. Zero keeps logs forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:       rdb,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if len(msgs) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(msgs)+2)
	args = append(args, turnOf(msgs), s.ttl.Milliseconds())
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal history message: %w", err)
		}
		args = append(args, string(data))
	}

	if err := appendScript.Run(ctx, s.rdb, []string{s.key(sessionID)}, args...).Err(); err != nil {
		return fmt.Errorf("append history %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	raw, err := s.rdb.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", sessionID, err)
	}

	msgs := make([]Message, 0, len(raw))
	for i, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode history %s entry %d: %w", sessionID, i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear history %s: %w", sessionID, err)
	}
	return nil
}
