package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultLease is how long a claimed job may run before another runner takes
// it over.
const DefaultLease = 5 * time.Minute

// claimScript moves expired leases back to the due set, then moves due jobs to
// the processing set scored by lease expiry and returns them as id, body
// pairs. IDs without a body are dropped.
var claimScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, id in ipairs(expired) do
	redis.call('ZREM', KEYS[2], id)
	redis.call('ZADD', KEYS[1], ARGV[1], id)
end
local ids
if tonumber(ARGV[3]) > 0 then
	ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[3])
else
	ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
end
local claimed = {}
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	local body = redis.call('HGET', KEYS[3], id)
	if body then
		redis.call('ZADD', KEYS[2], ARGV[2], id)
		table.insert(claimed, id)
		table.insert(claimed, body)
	end
end
return claimed
`)

// RedisStore keeps jobs in Redis: a sorted set of due job IDs scored by run
// time, a sorted set of claimed IDs scored by lease expiry and a hash of job
// bodies. A claimed job stays in Redis until it is acked; if its runner dies
// the lease runs out and the job is claimed again.
type RedisStore struct {
	client        redis.Cmdable
	dueKey        string
	processingKey string
	jobKey        string
	lease         time.Duration
}

// NewRedisStore creates a RedisStore under the given key prefix.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "questline:jobs"
	}
	return &RedisStore{
		client:        client,
		dueKey:        prefix + ":due",
		processingKey: prefix + ":processing",
		jobKey:        prefix + ":body",
		lease:         DefaultLease,
	}
}

// Add stores the job, replacing any claimed copy with the same ID.
func (s *RedisStore) Add(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.jobKey, job.ID, data)
		pipe.ZRem(ctx, s.processingKey, job.ID)
		pipe.ZAdd(ctx, s.dueKey, redis.Z{Score: float64(job.RunAt.UnixMilli()), Member: job.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding job %s: %w", job.ID, err)
	}
	return nil
}

// ClaimDue leases up to limit due jobs. A body that cannot be decoded is
// removed and reported in the error next to the jobs that were claimed.
func (s *RedisStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	claimed, err := claimScript.Run(ctx, s.client,
		[]string{s.dueKey, s.processingKey, s.jobKey},
		now.UnixMilli(), now.Add(s.lease).UnixMilli(), max(limit, 0),
	).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("claiming due jobs: %w", err)
	}

	jobs := make([]Job, 0, len(claimed)/2)
	var errs []error
	for i := 0; i+1 < len(claimed); i += 2 {
		id, body := claimed[i], claimed[i+1]
		var job Job
		if err := json.Unmarshal([]byte(body), &job); err != nil {
			errs = append(errs, fmt.Errorf("decoding job %s: %w", id, err))
			if err := s.Ack(ctx, id); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, errors.Join(errs...)
}

// Ack removes a claimed job for good.
func (s *RedisStore) Ack(ctx context.Context, jobID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.processingKey, jobID)
		pipe.HDel(ctx, s.jobKey, jobID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("acking job %s: %w", jobID, err)
	}
	return nil
}

// Open connects to Redis at rawURL and checks the connection.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
