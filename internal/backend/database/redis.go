package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisDraftPrefix = "draft:"
	redisEntryPrefix = "entry:"
	maxTxRetries     = 8
)

// RedisDatabase keeps each draft as one JSON document and each entry as a
// plain string value. All keys are namespaced by keyPrefix.
type RedisDatabase struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDatabase accepts a redis URL (redis://host:port/db) or a bare
// host:port address.
func NewRedisDatabase(connectionString string, keyPrefix string) (DatabaseService, error) {
	var opts *redis.Options
	if strings.Contains(connectionString, "://") {
		parsed, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: connectionString}
	}

	return &RedisDatabase{
		client:    redis.NewClient(opts),
		keyPrefix: keyPrefix,
	}, nil
}

// Redis has no schema; CreateDatabase only checks connectivity.
func (r *RedisDatabase) CreateDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisDatabase) DoesDatabaseExist() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

func (r *RedisDatabase) draftKey(draftID string) string {
	return r.keyPrefix + redisDraftPrefix + draftID
}

func (r *RedisDatabase) entryKey(key string) string {
	return r.keyPrefix + redisEntryPrefix + key
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisDatabase) readDraft(ctx context.Context, getter stringGetter, draftID string) ([]*Image, error) {
	data, err := getter.Get(ctx, r.draftKey(draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var images []*Image
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("corrupt draft %s: %w", draftID, err)
	}
	return images, nil
}

// updateDraft runs a read-modify-write of one draft under WATCH, retrying when
// another writer touched the draft in between.
func (r *RedisDatabase) updateDraft(ctx context.Context, draftID string, fn func([]*Image) ([]*Image, error)) error {
	key := r.draftKey(draftID)
	txf := func(tx *redis.Tx) error {
		images, err := r.readDraft(ctx, tx, draftID)
		if err != nil {
			return err
		}
		updated, err := fn(images)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(updated) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			data, err := json.Marshal(updated)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("draft %s: too many concurrent updates", draftID)
}

func (r *RedisDatabase) CreateDraftImages(ctx context.Context, draftID string, images []*Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.updateDraft(ctx, draftID, func(existing []*Image) ([]*Image, error) {
		last := ""
		for _, img := range existing {
			if img.Rank > last {
				last = img.Rank
			}
		}
		ranks := NextN(last, len(images))
		now := time.Now().UTC()
		ids = ids[:0]
		for i, img := range images {
			id, err := generateID()
			if err != nil {
				return nil, err
			}
			img.ID = id
			img.Rank = ranks[i]
			img.CreatedAt = now
			ids = append(ids, id)
			existing = append(existing, img)
		}
		return existing, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *RedisDatabase) GetDraftImages(ctx context.Context, draftID string) ([]*Image, error) {
	images, err := r.readDraft(ctx, r.client, draftID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Rank < images[j].Rank
	})
	return images, nil
}

func (r *RedisDatabase) DeleteDraftImage(ctx context.Context, draftID string, id string) error {
	return r.updateDraft(ctx, draftID, func(existing []*Image) ([]*Image, error) {
		kept := existing[:0]
		for _, img := range existing {
			if img.ID != id {
				kept = append(kept, img)
			}
		}
		return kept, nil
	})
}

func (r *RedisDatabase) UpdateDraftImageRanks(ctx context.Context, draftID string, ranks map[string]string) error {
	if len(ranks) == 0 {
		return nil
	}
	return r.updateDraft(ctx, draftID, func(existing []*Image) ([]*Image, error) {
		for _, img := range existing {
			if rank, ok := ranks[img.ID]; ok {
				img.Rank = rank
			}
		}
		return existing, nil
	})
}

func (r *RedisDatabase) ClearDraft(ctx context.Context, draftID string) error {
	return r.client.Del(ctx, r.draftKey(draftID)).Err()
}

func (r *RedisDatabase) PutEntry(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.entryKey(key), value, 0).Err()
}

func (r *RedisDatabase) GetEntry(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *RedisDatabase) ListEntryKeys(ctx context.Context, prefix string) ([]string, error) {
	base := r.entryKey("")
	pattern := base + escapeGlob(prefix) + "*"

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), base))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
