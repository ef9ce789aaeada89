package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	scores []*model.ScoreEntry
	wins   map[model.LobbyID]int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		wins: make(map[model.LobbyID]int64),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveScore(ctx context.Context, entry *model.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.scores = append(s.scores, &stored)
	if entry.Winner != "" {
		s.wins[entry.Winner]++
	}
	return nil
}

func (s *Storage) ListScores(ctx context.Context, limit int) ([]*model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.scores)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*model.ScoreEntry, 0, n)
	for i := len(s.scores) - 1; i >= 0 && len(result) < n; i-- {
		entry := *s.scores[i]
		result = append(result, &entry)
	}
	return result, nil
}

func (s *Storage) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.LeaderboardEntry, 0, len(s.wins))
	for id, wins := range s.wins {
		entries = append(entries, model.LeaderboardEntry{PlayerID: id, Wins: wins})
	}
	// Most wins first, ties broken by ID for a stable order
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	if limit > 0 && limit < len(entries) {
		entries = slices.Clip(entries[:limit])
	}
	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries, nil
}

func (s *Storage) PlayerWins(ctx context.Context, id model.LobbyID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wins[id], nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
