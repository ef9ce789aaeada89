package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) save(winner model.LobbyID) {
	err := s.storage.SaveScore(s.ctx, &model.ScoreEntry{
		Screen:     "display_1",
		Winner:     winner,
		Points:     5,
		FinalScore: model.FinalScore{Player1: 5, Player2: 1},
		Timestamp:  time.Now(),
	})
	s.Require().NoError(err)
}

func (s *StorageSuite) TestListScoresNewestFirst() {
	s.save("alice")
	s.save("bob")
	s.save("carol")

	scores, err := s.storage.ListScores(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(scores, 3)
	s.Equal(model.LobbyID("carol"), scores[0].Winner)
	s.Equal(model.LobbyID("alice"), scores[2].Winner)

	limited, err := s.storage.ListScores(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(model.LobbyID("carol"), limited[0].Winner)
}

func (s *StorageSuite) TestSavedEntryIsCopied() {
	entry := &model.ScoreEntry{Winner: "alice", Points: 5}
	s.Require().NoError(s.storage.SaveScore(s.ctx, entry))
	entry.Winner = "mallory"

	scores, err := s.storage.ListScores(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(model.LobbyID("alice"), scores[0].Winner)
}

func (s *StorageSuite) TestLeaderboardRanksByWins() {
	s.save("bob")
	s.save("alice")
	s.save("alice")
	s.save("carol")

	board, err := s.storage.Leaderboard(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(board, 3)
	s.Equal(model.LeaderboardEntry{PlayerID: "alice", Wins: 2, Rank: 1}, board[0])
	s.Equal(model.LeaderboardEntry{PlayerID: "bob", Wins: 1, Rank: 2}, board[1])
	s.Equal(model.LeaderboardEntry{PlayerID: "carol", Wins: 1, Rank: 3}, board[2])

	top, err := s.storage.Leaderboard(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(top, 1)
}

func (s *StorageSuite) TestPlayerWins() {
	s.save("alice")
	s.save("alice")

	wins, err := s.storage.PlayerWins(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(2), wins)

	wins, err = s.storage.PlayerWins(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Zero(wins)
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}
