package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per flight: field = seat number, value =
// "<status>|<transaction key>". Mutations run as Lua scripts, so each batch
// is checked and applied in one atomic step on the server.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// KEYS[1] = flight hash, ARGV[1] = transaction key, ARGV[2..] = seats
var holdAllScript = redis.NewScript(`
local key = KEYS[1]
local tx = ARGV[1]
for i = 2, #ARGV do
  local v = redis.call("HGET", key, ARGV[i])
  if v then
    local status, holder = string.match(v, "^(%a+)|(.*)$")
    if status == "booked" then
      return {"booked", ARGV[i]}
    end
    if holder ~= tx then
      return {"held", ARGV[i]}
    end
  end
end
for i = 2, #ARGV do
  redis.call("HSET", key, ARGV[i], "held|" .. tx)
end
return {"ok", ""}
`)

var commitAllScript = redis.NewScript(`
local key = KEYS[1]
local held = "held|" .. ARGV[1]
for i = 2, #ARGV do
  if redis.call("HGET", key, ARGV[i]) ~= held then
    return {"not_held", ARGV[i]}
  end
end
for i = 2, #ARGV do
  redis.call("HSET", key, ARGV[i], "booked|" .. ARGV[1])
end
return {"ok", ""}
`)

func flightKey(flightNo int64) string {
	return fmt.Sprintf("inventory:flight:%d", flightNo)
}

func (s *RedisStore) Hold(ctx context.Context, flightNo int64, seatNo, txKey string) error {
	return s.HoldAll(ctx, flightNo, []string{seatNo}, txKey)
}

func (s *RedisStore) HoldAll(ctx context.Context, flightNo int64, seatNos []string, txKey string) error {
	res, err := s.run(ctx, holdAllScript, flightNo, seatNos, txKey)
	if err != nil {
		return fmt.Errorf("hold seats: %w", err)
	}
	switch res[0] {
	case "ok":
		return nil
	case "booked":
		return holdError(res[1], domain.SeatState{Status: domain.SeatStatusBooked})
	case "held":
		return holdError(res[1], domain.SeatState{Status: domain.SeatStatusHeld})
	default:
		return fmt.Errorf("hold seats: unexpected script result %q", res[0])
	}
}

func (s *RedisStore) Commit(ctx context.Context, flightNo int64, seatNo, txKey string) error {
	return s.CommitAll(ctx, flightNo, []string{seatNo}, txKey)
}

func (s *RedisStore) CommitAll(ctx context.Context, flightNo int64, seatNos []string, txKey string) error {
	res, err := s.run(ctx, commitAllScript, flightNo, seatNos, txKey)
	if err != nil {
		return fmt.Errorf("commit seats: %w", err)
	}
	switch res[0] {
	case "ok":
		return nil
	case "not_held":
		return notHeldError(res[1])
	default:
		return fmt.Errorf("commit seats: unexpected script result %q", res[0])
	}
}

func (s *RedisStore) Release(ctx context.Context, flightNo int64, seatNo string) error {
	return s.ReleaseAll(ctx, flightNo, []string{seatNo})
}

func (s *RedisStore) ReleaseAll(ctx context.Context, flightNo int64, seatNos []string) error {
	if len(seatNos) == 0 {
		return nil
	}
	return s.client.HDel(ctx, flightKey(flightNo), seatNos...).Err()
}

func (s *RedisStore) States(ctx context.Context, flightNo int64) (map[string]domain.SeatState, error) {
	raw, err := s.client.HGetAll(ctx, flightKey(flightNo)).Result()
	if err != nil {
		return nil, fmt.Errorf("read seat states: %w", err)
	}
	out := make(map[string]domain.SeatState, len(raw))
	for seatNo, v := range raw {
		status, holder, ok := strings.Cut(v, "|")
		if !ok {
			continue
		}
		out[seatNo] = domain.SeatState{Status: domain.SeatStatus(status), Holder: holder}
	}
	return out, nil
}

func (s *RedisStore) run(ctx context.Context, script *redis.Script, flightNo int64, seatNos []string, txKey string) ([]string, error) {
	if len(seatNos) == 0 {
		return []string{"ok", ""}, nil
	}
	args := make([]interface{}, 0, len(seatNos)+1)
	args = append(args, txKey)
	for _, seatNo := range seatNos {
		args = append(args, seatNo)
	}
	res, err := script.Run(ctx, s.client, []string{flightKey(flightNo)}, args...).StringSlice()
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected script result %v", res)
	}
	return res, nil
}

var _ Store = (*RedisStore)(nil)
