package queue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

const handleSep = ":"

var (
	// KEYS: visible, body, receives, lease, dead visible, dead body
	// ARGV: now, max, hidden until, max receives, token prefix
	//
	// Messages past their max receives are moved over to the dead queue as we come
	// across them, so the caller might get fewer than max back.
	receiveScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local maxr = tonumber(ARGV[4])
local out = {}
for i, id in ipairs(ids) do
	local body = redis.call('HGET', KEYS[2], id)
	if not body then
		redis.call('ZREM', KEYS[1], id)
	else
		local n = redis.call('HINCRBY', KEYS[3], id, 1)
		if maxr > 0 and n > maxr then
			redis.call('ZREM', KEYS[1], id)
			redis.call('HDEL', KEYS[2], id)
			redis.call('HDEL', KEYS[3], id)
			redis.call('HDEL', KEYS[4], id)
			redis.call('HSET', KEYS[6], id, body)
			redis.call('ZADD', KEYS[5], ARGV[1], id)
		else
			local token = ARGV[5] .. i
			redis.call('HSET', KEYS[4], id, token)
			redis.call('ZADD', KEYS[1], ARGV[3], id)
			table.insert(out, id)
			table.insert(out, token)
			table.insert(out, body)
			table.insert(out, n)
		end
	end
end
return out
`)

	// KEYS: visible, body, receives, lease
	// ARGV: id, token
	deleteScript = redis.NewScript(`
if redis.call('HGET', KEYS[4], ARGV[1]) ~= ARGV[2] then
	return 0
end
redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
redis.call('HDEL', KEYS[3], ARGV[1])
redis.call('HDEL', KEYS[4], ARGV[1])
return 1
`)
)

// keyset are the redis keys that make up one queue.
//
// visible is a sorted set of message id -> unix millis the message is visible from,
// the rest are hashes keyed by message id.
type keyset struct {
	visible  string
	body     string
	receives string
	lease    string
}

func newKeyset(prefix, name string) keyset {
	k := func(s string) string { return fmt.Sprintf("%s:queue:%s:%s", prefix, name, s) }
	return keyset{
		visible:  k("visible"),
		body:     k("body"),
		receives: k("receives"),
		lease:    k("lease"),
	}
}

func (k keyset) list() []string {
	return []string{k.visible, k.body, k.receives, k.lease}
}

// Redis is a Queue built on a redis sorted set (visibility index) & hashes.
type Redis struct {
	opts *Options
	rdb  redis.UniversalClient
	own  bool

	keys keyset
	dead keyset

	now func() time.Time
}

// NewRedisQueue connects to redis as described by opts.
func NewRedisQueue(opts *Options) (*Redis, error) {
	rdb, err := NewRedisClient(opts)
	if err != nil {
		return nil, err
	}
	q := NewRedisQueueFromClient(rdb, opts)
	q.own = true
	return q, nil
}

// NewRedisClient builds a client from opts.URL & opts.TLSConfig, so that many queues
// (and the scheduler) can share one connection pool.
func NewRedisClient(opts *Options) (redis.UniversalClient, error) {
	opts.SetDefaults()
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%w redis url: %v", errors.ErrInvalidArg, err)
	}
	if opts.TLSConfig != nil {
		ropts.TLSConfig = opts.TLSConfig
	}
	return redis.NewClient(ropts), nil
}

// NewRedisQueueFromClient returns a queue using an existing client. Close will
// not close the client.
func NewRedisQueueFromClient(rdb redis.UniversalClient, opts *Options) *Redis {
	opts.SetDefaults()
	q := &Redis{
		opts: opts,
		rdb:  rdb,
		keys: newKeyset(opts.Prefix, opts.Name),
		now:  time.Now,
	}
	q.dead = q.keys
	if opts.DeadLetter != "" && opts.MaxReceives > 0 {
		q.dead = newKeyset(opts.Prefix, opts.DeadLetter)
	}
	return q
}

func (r *Redis) Name() string {
	return r.opts.Name
}

func (r *Redis) Close() error {
	if !r.own {
		return nil
	}
	return r.rdb.Close()
}

func (r *Redis) Enqueue(ctx context.Context, body []byte, delay time.Duration) (string, error) {
	if delay < 0 {
		delay = 0
	}
	id := utils.NewID()
	at := r.now().Add(delay).UnixMilli()

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.keys.body, id, body)
		p.ZAdd(ctx, r.keys.visible, redis.Z{Score: float64(at), Member: id})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Redis) Receive(ctx context.Context, max int, visibility time.Duration) ([]*structs.Lease, error) {
	if max < 1 {
		return nil, fmt.Errorf("%w receive max %d", errors.ErrInvalidArg, max)
	}
	now := r.now()
	maxReceives := 0
	if r.dead != r.keys {
		maxReceives = r.opts.MaxReceives
	}

	keys := append(r.keys.list(), r.dead.visible, r.dead.body)
	raw, err := receiveScript.Run(
		ctx, r.rdb, keys,
		now.UnixMilli(),
		max,
		now.Add(visibility).UnixMilli(),
		maxReceives,
		utils.NewID()+"-",
	).Slice()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return toLeases(raw)
}

func (r *Redis) Delete(ctx context.Context, handle string) error {
	id, token, ok := splitHandle(handle)
	if !ok {
		return fmt.Errorf("%w lease handle %q", errors.ErrInvalidArg, handle)
	}
	n, err := deleteScript.Run(ctx, r.rdb, r.keys.list(), id, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w message %s", errors.ErrLeaseLost, id)
	}
	return nil
}

func (r *Redis) ApproximateDepth(ctx context.Context) (int64, error) {
	max := strconv.FormatInt(r.now().UnixMilli(), 10)
	return r.rdb.ZCount(ctx, r.keys.visible, "-inf", max).Result()
}

// toLeases unpacks the flat [id, token, body, receives, ...] list from receiveScript.
func toLeases(raw []interface{}) ([]*structs.Lease, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("unexpected receive reply of length %d", len(raw))
	}
	leases := make([]*structs.Lease, 0, len(raw)/4)
	for i := 0; i < len(raw); i += 4 {
		id, _ := raw[i].(string)
		token, _ := raw[i+1].(string)
		body, _ := raw[i+2].(string)
		n, _ := raw[i+3].(int64)
		leases = append(leases, &structs.Lease{
			ID:       id,
			Handle:   joinHandle(id, token),
			Body:     []byte(body),
			Receives: int(n),
		})
	}
	return leases, nil
}

func joinHandle(id, token string) string {
	return id + handleSep + token
}

func splitHandle(handle string) (string, string, bool) {
	id, token, ok := strings.Cut(handle, handleSep)
	if !ok || id == "" || token == "" {
		return "", "", false
	}
	return id, token, true
}
