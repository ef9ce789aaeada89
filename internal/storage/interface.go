package storage

import (
	"context"

	"github.com/mcoot/screenpong/internal/model"
)

// Storage defines the interface for score persistence
type Storage interface {
	// SaveScore records a finished match and credits the winner
	SaveScore(ctx context.Context, entry *model.ScoreEntry) error

	// ListScores returns up to limit results, newest first. A non-positive
	// limit returns every stored result.
	ListScores(ctx context.Context, limit int) ([]*model.ScoreEntry, error)

	// Leaderboard returns up to limit players ranked by wins
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)

	// PlayerWins returns the number of matches a player has won
	PlayerWins(ctx context.Context, id model.LobbyID) (int64, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}
