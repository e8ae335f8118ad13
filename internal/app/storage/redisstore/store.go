// Package redisstore implements the announcement and winning-number stores
// on Redis. SET NX supplies the create-if-absent primitive those stores
// require, which makes the announce transition atomic without in-process
// locking even across replicas.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/storage"
)

// Store keeps announcements and winning-number sets in Redis.
type Store struct {
	client *redis.Client
}

var _ storage.AnnouncementStore = (*Store)(nil)
var _ storage.WinningNumberStore = (*Store)(nil)

// New creates a Store using the provided Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func announcementKey(hash string) string {
	return "lotto:announcement:" + hash
}

func winningNumbersKey(drawDate time.Time) string {
	return "lotto:winning:" + drawDate.UTC().Format(time.RFC3339)
}

// --- AnnouncementStore ------------------------------------------------------

func (s *Store) CreateAnnouncement(ctx context.Context, ann result.Announcement) (result.Announcement, bool, error) {
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ann)
	if err != nil {
		return result.Announcement{}, false, fmt.Errorf("encode announcement: %w", err)
	}

	created, err := s.client.SetNX(ctx, announcementKey(ann.Hash), payload, 0).Result()
	if err != nil {
		return result.Announcement{}, false, fmt.Errorf("store announcement: %w", err)
	}
	if created {
		return ann, true, nil
	}

	stored, err := s.GetAnnouncement(ctx, ann.Hash)
	if err != nil {
		return result.Announcement{}, false, err
	}
	return stored, false, nil
}

func (s *Store) GetAnnouncement(ctx context.Context, hash string) (result.Announcement, error) {
	raw, err := s.client.Get(ctx, announcementKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return result.Announcement{}, storage.ErrNotFound
	}
	if err != nil {
		return result.Announcement{}, fmt.Errorf("load announcement: %w", err)
	}

	var ann result.Announcement
	if err := json.Unmarshal(raw, &ann); err != nil {
		return result.Announcement{}, fmt.Errorf("decode announcement: %w", err)
	}
	return ann, nil
}

// --- WinningNumberStore -----------------------------------------------------

func (s *Store) CreateWinningNumbers(ctx context.Context, set draw.WinningNumberSet) (draw.WinningNumberSet, error) {
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return draw.WinningNumberSet{}, fmt.Errorf("encode winning numbers: %w", err)
	}

	created, err := s.client.SetNX(ctx, winningNumbersKey(set.DrawDate), payload, 0).Result()
	if err != nil {
		return draw.WinningNumberSet{}, fmt.Errorf("store winning numbers: %w", err)
	}
	if created {
		return set, nil
	}
	return s.GetWinningNumbers(ctx, set.DrawDate)
}

func (s *Store) GetWinningNumbers(ctx context.Context, drawDate time.Time) (draw.WinningNumberSet, error) {
	raw, err := s.client.Get(ctx, winningNumbersKey(drawDate)).Bytes()
	if errors.Is(err, redis.Nil) {
		return draw.WinningNumberSet{}, storage.ErrNotFound
	}
	if err != nil {
		return draw.WinningNumberSet{}, fmt.Errorf("load winning numbers: %w", err)
	}

	var set draw.WinningNumberSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return draw.WinningNumberSet{}, fmt.Errorf("decode winning numbers: %w", err)
	}
	return set, nil
}
