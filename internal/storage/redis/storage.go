package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveScore(ctx context.Context, entry *model.ScoreEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Use pipeline so the history and the leaderboard move together
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, scoresKey(), data)
	if s.cfg.MaxScores > 0 {
		pipe.LTrim(ctx, scoresKey(), 0, int64(s.cfg.MaxScores-1))
	}
	if entry.Winner != "" {
		pipe.ZIncrBy(ctx, leaderboardKey(), 1, string(entry.Winner))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListScores(ctx context.Context, limit int) ([]*model.ScoreEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := s.client.LRange(ctx, scoresKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.ScoreEntry, 0, len(raw))
	for _, data := range raw {
		var entry model.ScoreEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, err
		}
		result = append(result, &entry)
	}
	return result, nil
}

func (s *Storage) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	members, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(members))
	for i, z := range members {
		id, _ := z.Member.(string)
		entries = append(entries, model.LeaderboardEntry{
			PlayerID: model.LobbyID(id),
			Wins:     int64(z.Score),
			Rank:     int64(i + 1),
		})
	}
	return entries, nil
}

func (s *Storage) PlayerWins(ctx context.Context, id model.LobbyID) (int64, error) {
	wins, err := s.client.ZScore(ctx, leaderboardKey(), string(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int64(wins), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
