package equipmentset

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/equip-api/internal/errors"
	redisclient "github.com/KirkDiggler/equip-api/internal/redis"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Redis layout: one JSON document per set plus a set of every stored ID
const (
	KeyPrefix = "equipment_set:"
	IndexKey  = "equipment_set:ids"
)

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
}

// RedisConfig contains configuration for the Redis set repository
type RedisConfig struct {
	Client redisclient.Client
	// TTL expires set documents; zero keeps them forever
	TTL time.Duration
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	if cfg.TTL < 0 {
		return errors.InvalidArgumentf("ttl must not be negative, got %s", cfg.TTL)
	}
	return nil
}

// NewRedis creates a new Redis-backed set repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if err := validateDocument(input.Document); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Document)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to marshal set")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, KeyPrefix+input.Document.Set.ID, data, r.ttl)
	pipe.SAdd(ctx, IndexKey, input.Document.Set.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to save set")
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSetIDEmpty)
	}

	result, err := r.client.Get(ctx, KeyPrefix+input.ID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("equipment set %s not found", input.ID)
		}
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to get set")
	}

	doc := &store.Document{}
	if err := json.Unmarshal(result, doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to unmarshal set")
	}

	return &GetOutput{Document: doc}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSetIDEmpty)
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, KeyPrefix+input.ID)
	pipe.SRem(ctx, IndexKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to delete set")
	}
	if del.Val() == 0 {
		return nil, errors.NotFoundf("equipment set %s not found", input.ID)
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, IndexKey).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to list sets")
	}

	// Expired documents leave their id behind in the index
	live := ids[:0]
	for _, id := range ids {
		n, err := r.client.Exists(ctx, KeyPrefix+id).Result()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to list sets")
		}
		if n == 0 {
			if err := r.client.SRem(ctx, IndexKey, id).Err(); err != nil {
				slog.WarnContext(ctx, "failed to prune expired set from index", "set_id", id, "error", err)
			}
			continue
		}
		live = append(live, id)
	}
	slices.Sort(live)

	return &ListOutput{IDs: live}, nil
}
