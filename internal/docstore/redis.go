package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 3

// Redis keeps each document as a JSON string under <prefix><collection>:<id>
// and indexes ids in a sorted set <prefix><collection> scored by an insertion
// counter.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) indexKey(collection string) string {
	return r.prefix + collection
}

func (r *Redis) docKey(collection, id string) string {
	return r.prefix + collection + ":" + id
}

func (r *Redis) seqKey(collection string) string {
	return r.prefix + collection + ":_seq"
}

func (r *Redis) Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// index entry without a document, deleted concurrently
			continue
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if !rec.Matches(filters...) {
			continue
		}
		rec[IDField] = ids[i]
		result = append(result, rec)
	}
	return result, nil
}

func (r *Redis) GetByID(ctx context.Context, collection, id string) (Record, error) {
	raw, err := r.client.Get(ctx, r.docKey(collection, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	rec[IDField] = id
	return rec, nil
}

func (r *Redis) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	payload, err := json.Marshal(rec.Clone())
	if err != nil {
		return "", err
	}

	seq, err := r.client.Incr(ctx, r.seqKey(collection)).Result()
	if err != nil {
		return "", err
	}

	id := NewID()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(collection, id), payload, 0)
		pipe.ZAdd(ctx, r.indexKey(collection), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Redis) Replace(ctx context.Context, collection, id string, rec Record) error {
	payload, err := json.Marshal(rec.Clone())
	if err != nil {
		return err
	}

	key := r.docKey(collection, id)
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	})
}

func (r *Redis) Patch(ctx context.Context, collection, id string, fields Record) error {
	key := r.docKey(collection, id)
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		rec, err := decodeRecord(raw)
		if err != nil {
			return err
		}
		for k, v := range fields.Clone() {
			rec[k] = v
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	})
}

func (r *Redis) Delete(ctx context.Context, collection, id string) error {
	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.docKey(collection, id))
		pipe.ZRem(ctx, r.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return err
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// watch runs fn under WATCH key, retrying when another client touched the key
// between the read and the EXEC.
func (r *Redis) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err = r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func decodeRecord(raw string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}
