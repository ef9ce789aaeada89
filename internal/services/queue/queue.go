// Package queue holds the per-screen waiting lists.
//
// Queues are not safe for concurrent use. The match coordinator owns them
// and serialises every access.
package queue

import (
	"slices"

	"github.com/mcoot/screenpong/internal/model"
)

// Queues is the set of per-screen FIFOs. A player may wait on at most one
// screen at a time.
type Queues struct {
	byScreen map[model.ScreenID][]model.LobbyID
	// index maps a queued player to the screen they wait on
	index map[model.LobbyID]model.ScreenID
}

// New creates an empty set of queues for the given screens
func New(screens ...model.ScreenID) *Queues {
	q := &Queues{
		byScreen: make(map[model.ScreenID][]model.LobbyID, len(screens)),
		index:    make(map[model.LobbyID]model.ScreenID),
	}
	for _, id := range screens {
		q.byScreen[id] = nil
	}
	return q
}

// Enqueue appends a player to a screen's queue. It returns false without
// changing anything if the player is already queued on any screen.
func (q *Queues) Enqueue(screen model.ScreenID, player model.LobbyID) bool {
	if _, queued := q.index[player]; queued {
		return false
	}
	q.byScreen[screen] = append(q.byScreen[screen], player)
	q.index[player] = screen
	return true
}

// EnqueueFront puts a player at the head of a screen's queue, removing them
// from any other queue first
func (q *Queues) EnqueueFront(screen model.ScreenID, player model.LobbyID) {
	q.RemoveEverywhere(player)
	q.byScreen[screen] = slices.Insert(q.byScreen[screen], 0, player)
	q.index[player] = screen
}

// DequeueOldest removes and returns the head of a screen's queue
func (q *Queues) DequeueOldest(screen model.ScreenID) (model.LobbyID, bool) {
	entries := q.byScreen[screen]
	if len(entries) == 0 {
		return "", false
	}
	head := entries[0]
	q.byScreen[screen] = entries[1:]
	delete(q.index, head)
	return head, true
}

// DequeuePair removes the two oldest entries of a screen's queue. Nothing is
// removed unless at least two players are waiting.
func (q *Queues) DequeuePair(screen model.ScreenID) (model.LobbyID, model.LobbyID, bool) {
	if len(q.byScreen[screen]) < 2 {
		return "", "", false
	}
	first, _ := q.DequeueOldest(screen)
	second, _ := q.DequeueOldest(screen)
	return first, second, true
}

// PositionOf returns the 1-indexed position of a player in a screen's queue
func (q *Queues) PositionOf(screen model.ScreenID, player model.LobbyID) (int, bool) {
	idx := slices.Index(q.byScreen[screen], player)
	if idx < 0 {
		return 0, false
	}
	return idx + 1, true
}

// ScreenOf returns the screen a player is queued on
func (q *Queues) ScreenOf(player model.LobbyID) (model.ScreenID, bool) {
	screen, ok := q.index[player]
	return screen, ok
}

// RemoveEverywhere drops a player from every queue. It returns the screen
// they were queued on, if any.
func (q *Queues) RemoveEverywhere(player model.LobbyID) (model.ScreenID, bool) {
	screen, ok := q.index[player]
	if !ok {
		return "", false
	}
	q.byScreen[screen] = slices.DeleteFunc(q.byScreen[screen], func(id model.LobbyID) bool {
		return id == player
	})
	delete(q.index, player)
	return screen, true
}

// Len returns the number of players waiting on a screen
func (q *Queues) Len(screen model.ScreenID) int {
	return len(q.byScreen[screen])
}

// Players returns a copy of a screen's queue, oldest first
func (q *Queues) Players(screen model.ScreenID) []model.LobbyID {
	return slices.Clone(q.byScreen[screen])
}

// Clear empties a screen's queue and returns the players that were waiting
func (q *Queues) Clear(screen model.ScreenID) []model.LobbyID {
	players := q.byScreen[screen]
	for _, id := range players {
		delete(q.index, id)
	}
	q.byScreen[screen] = nil
	return players
}
