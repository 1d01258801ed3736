package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// document is the JSON value stored per hash field; the field itself is the name.
type document struct {
	Phone string `json:"phone"`
}

// Redis keeps the whole collection in one hash: field = name, value = document.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to rawURL and verifies the connection. A non-empty
// password overrides the one embedded in the URL.
func OpenRedis(ctx context.Context, rawURL, password, key string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRedisURL, err)
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrRedisPing, err)
	}
	return NewRedis(client, key), nil
}

// NewRedis wraps an existing client. An empty key falls back to DefaultRedisKey.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) List(ctx context.Context) ([]engine.ContactRecord, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	out := make([]engine.ContactRecord, 0, len(all))
	for name, raw := range all {
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", config.ErrDecodeDocument, name, err)
		}
		out = append(out, engine.ContactRecord{Name: name, Phone: doc.Phone})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Redis) Get(ctx context.Context, name string) (engine.ContactRecord, error) {
	raw, err := r.client.HGet(ctx, r.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return engine.ContactRecord{}, engine.ErrNotFound
	}
	if err != nil {
		return engine.ContactRecord{}, err
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return engine.ContactRecord{}, fmt.Errorf("%s %q: %w", config.ErrDecodeDocument, name, err)
	}
	return engine.ContactRecord{Name: name, Phone: doc.Phone}, nil
}

func (r *Redis) Upsert(ctx context.Context, rec engine.ContactRecord) error {
	raw, err := encodeDocument(rec)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key, rec.Name, raw).Err()
}

func (r *Redis) Delete(ctx context.Context, name string) error {
	return r.client.HDel(ctx, r.key, name).Err()
}

// Rename runs HDEL and HSET inside MULTI/EXEC.
func (r *Redis) Rename(ctx context.Context, oldName string, rec engine.ContactRecord) error {
	raw, err := encodeDocument(rec)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, r.key, oldName)
		pipe.HSet(ctx, r.key, rec.Name, raw)
		return nil
	})
	return err
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreClose, err)
	}
	return nil
}

func encodeDocument(rec engine.ContactRecord) (string, error) {
	b, err := json.Marshal(document{Phone: rec.Phone})
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrEncodeDocument, err)
	}
	return string(b), nil
}

func decodeDocument(raw string) (document, error) {
	var doc document
	err := json.Unmarshal([]byte(raw), &doc)
	return doc, err
}
