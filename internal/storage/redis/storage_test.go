package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/screenpong/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MaxScores = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) score(winner model.LobbyID, offset time.Duration) *model.ScoreEntry {
	return &model.ScoreEntry{
		Screen:     "display_1",
		Winner:     winner,
		Points:     5,
		FinalScore: model.FinalScore{Player1: 5, Player2: 3},
		Timestamp:  s.now.Add(offset),
	}
}

func (s *StorageSuite) TestSaveAndListScores() {
	s.Require().NoError(s.storage.SaveScore(s.ctx, s.score("alice", 0)))
	s.Require().NoError(s.storage.SaveScore(s.ctx, s.score("bob", time.Minute)))

	scores, err := s.storage.ListScores(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(scores, 2)
	s.Equal(model.LobbyID("bob"), scores[0].Winner, "newest first")
	s.Equal(model.LobbyID("alice"), scores[1].Winner)
	s.Equal(model.FinalScore{Player1: 5, Player2: 3}, scores[1].FinalScore)
	s.True(scores[1].Timestamp.Equal(s.now))
}

func (s *StorageSuite) TestListScoresLimit() {
	for _, id := range []model.LobbyID{"a", "b", "c"} {
		s.Require().NoError(s.storage.SaveScore(s.ctx, s.score(id, 0)))
	}

	scores, err := s.storage.ListScores(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(scores, 2)
	s.Equal(model.LobbyID("c"), scores[0].Winner)
}

func (s *StorageSuite) TestHistoryIsTrimmed() {
	for _, id := range []model.LobbyID{"a", "b", "c", "d", "e"} {
		s.Require().NoError(s.storage.SaveScore(s.ctx, s.score(id, 0)))
	}

	length, err := s.storage.client.LLen(s.ctx, scoresKey()).Result()
	s.Require().NoError(err)
	s.Equal(int64(3), length)

	wins, err := s.storage.PlayerWins(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(int64(1), wins, "trimming history keeps the leaderboard")
}

func (s *StorageSuite) TestLeaderboard() {
	for _, id := range []model.LobbyID{"alice", "bob", "alice", "carol", "alice", "bob"} {
		s.Require().NoError(s.storage.SaveScore(s.ctx, s.score(id, 0)))
	}

	board, err := s.storage.Leaderboard(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(model.LeaderboardEntry{PlayerID: "alice", Wins: 3, Rank: 1}, board[0])
	s.Equal(model.LeaderboardEntry{PlayerID: "bob", Wins: 2, Rank: 2}, board[1])
}

func (s *StorageSuite) TestPlayerWinsUnknownPlayer() {
	wins, err := s.storage.PlayerWins(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Zero(wins)
}

func (s *StorageSuite) TestEmptyStorage() {
	scores, err := s.storage.ListScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(scores)

	board, err := s.storage.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(board)
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))

	s.mini.Close()
	s.Error(s.storage.Ping(s.ctx))
	s.mini = nil
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.storage.SaveScore(s.ctx, s.score("alice", 0)))

	s.True(s.mini.Exists("screenpong:scores"))
	s.True(s.mini.Exists("screenpong:leaderboard"))
}
