package memorystore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one exported key, tagged by its Redis type so restore can
// replay it with the right write primitive and TTL (spec.md §4.10: "SCAN +
// type-specific dump (strings, lists, hashes) preserving TTL").
type Entry struct {
	Key       string            `json:"key"`
	Type      string            `json:"type"`
	String    string            `json:"string,omitempty"`
	List      []string          `json:"list,omitempty"`
	Hash      map[string]string `json:"hash,omitempty"`
	TTLSecond int64             `json:"ttl_seconds,omitempty"` // 0 means no expiry
}

// ExportAll walks the full keyspace with SCAN and dumps every key's value
// and remaining TTL, used by the Backup Service's memory export.
func (s *Store) ExportAll(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var cursor uint64

	for {
		keys, nextCursor, err := s.rdb.Scan(ctx, cursor, "*", 200).Result()
		if err != nil {
			return nil, fmt.Errorf("memorystore: scan: %w", err)
		}

		for _, key := range keys {
			entry, err := s.exportKey(ctx, key)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return entries, nil
}

func (s *Store) exportKey(ctx context.Context, key string) (Entry, error) {
	typ, err := s.rdb.Type(ctx, key).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("memorystore: type %s: %w", key, err)
	}

	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("memorystore: ttl %s: %w", key, err)
	}
	ttlSeconds := int64(0)
	if ttl > 0 {
		ttlSeconds = int64(ttl.Seconds())
	}

	entry := Entry{Key: key, Type: typ, TTLSecond: ttlSeconds}

	switch typ {
	case "string":
		entry.String, err = s.rdb.Get(ctx, key).Result()
	case "list":
		entry.List, err = s.rdb.LRange(ctx, key, 0, -1).Result()
	case "hash":
		entry.Hash, err = s.rdb.HGetAll(ctx, key).Result()
	default:
		return entry, nil // skip unsupported types (sets/sorted sets/streams unused by this system)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("memorystore: read %s (%s): %w", key, typ, err)
	}
	return entry, nil
}

// RestoreAll re-applies exported entries with SET/RPUSH/HSET and re-applies
// each key's TTL, per spec.md §4.10 restore semantics.
func (s *Store) RestoreAll(ctx context.Context, entries []Entry) error {
	for _, entry := range entries {
		if err := s.restoreEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) restoreEntry(ctx context.Context, entry Entry) error {
	pipe := s.rdb.TxPipeline()

	switch entry.Type {
	case "string":
		pipe.Set(ctx, entry.Key, entry.String, 0)
	case "list":
		pipe.Del(ctx, entry.Key)
		if len(entry.List) > 0 {
			items := make([]any, len(entry.List))
			for i, v := range entry.List {
				items[i] = v
			}
			pipe.RPush(ctx, entry.Key, items...)
		}
	case "hash":
		if len(entry.Hash) > 0 {
			fields := make(map[string]any, len(entry.Hash))
			for k, v := range entry.Hash {
				fields[k] = v
			}
			pipe.HSet(ctx, entry.Key, fields)
		}
	default:
		return nil
	}

	if entry.TTLSecond > 0 {
		pipe.Expire(ctx, entry.Key, time.Duration(entry.TTLSecond)*time.Second)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("memorystore: restore %s: %w", entry.Key, err)
	}
	return nil
}
