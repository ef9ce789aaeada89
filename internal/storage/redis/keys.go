package redis

import (
	"fmt"
)

// Key prefix for all score data
const keyPrefix = "screenpong"

// scoresKey returns the Redis key for the LIST of results, newest first
func scoresKey() string {
	return fmt.Sprintf("%s:scores", keyPrefix)
}

// leaderboardKey returns the Redis key for the ZSET of wins per player
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
