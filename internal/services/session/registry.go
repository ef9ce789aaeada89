// Package session correlates a player's lobby identity with their screen
// channel identity.
//
// The Registry is owned by the match coordinator and is not safe for
// concurrent use. Lookups never panic: a missing entry means the player is
// not currently bound to a screen.
//
// A session lives while at least one of its halves is open. Once the lobby
// channel has closed, clearing the screen binding forgets the player.
package session

import (
	"time"

	"github.com/mcoot/screenpong/internal/model"
)

// Registry is a bidirectional index of sessions
type Registry struct {
	sessions  map[model.LobbyID]*model.Session
	byChannel map[model.ChannelID]model.LobbyID
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		sessions:  make(map[model.LobbyID]*model.Session),
		byChannel: make(map[model.ChannelID]model.LobbyID),
	}
}

// Touch ensures a session exists for a connected lobby identity
func (r *Registry) Touch(lobby model.LobbyID, now time.Time) {
	if sess, ok := r.sessions[lobby]; ok {
		sess.LobbyConnected = true
		return
	}
	r.sessions[lobby] = &model.Session{LobbyID: lobby, JoinedAt: now, LobbyConnected: true}
}

// LobbyLeft records that a player's lobby channel closed. The session is
// removed at once if it has no screen binding left, and reported as gone.
func (r *Registry) LobbyLeft(lobby model.LobbyID) bool {
	sess, ok := r.sessions[lobby]
	if !ok {
		return true
	}
	sess.LobbyConnected = false
	return r.release(sess)
}

// Register binds a screen channel to a lobby identity, replacing any
// previous binding for that lobby identity
func (r *Registry) Register(
	lobby model.LobbyID,
	channel model.ChannelID,
	screen model.ScreenID,
	screenName string,
	slot model.Slot,
	now time.Time,
) {
	sess, ok := r.sessions[lobby]
	if !ok {
		sess = &model.Session{LobbyID: lobby}
		r.sessions[lobby] = sess
	}
	if sess.ScreenChannel != "" {
		delete(r.byChannel, sess.ScreenChannel)
	}
	// A channel belongs to exactly one lobby identity
	if previous, taken := r.byChannel[channel]; taken && previous != lobby {
		if other, ok := r.sessions[previous]; ok {
			clearBinding(other)
		}
	}

	sess.ScreenChannel = channel
	sess.ScreenID = screen
	sess.ScreenName = screenName
	sess.Slot = slot
	sess.JoinedAt = now
	r.byChannel[channel] = lobby
}

// Get returns a copy of a player's session
func (r *Registry) Get(lobby model.LobbyID) (model.Session, error) {
	sess, ok := r.sessions[lobby]
	if !ok {
		return model.Session{}, model.ErrSessionNotFound
	}
	return *sess, nil
}

// ScreenChannelFor returns the bound screen channel of a lobby identity
func (r *Registry) ScreenChannelFor(lobby model.LobbyID) (model.ChannelID, bool) {
	sess, ok := r.sessions[lobby]
	if !ok || sess.ScreenChannel == "" {
		return "", false
	}
	return sess.ScreenChannel, true
}

// LobbyFor returns the lobby identity bound to a screen channel
func (r *Registry) LobbyFor(channel model.ChannelID) (model.LobbyID, bool) {
	lobby, ok := r.byChannel[channel]
	return lobby, ok
}

// BoundTo reports whether a lobby identity is bound to the given screen
func (r *Registry) BoundTo(lobby model.LobbyID, screen model.ScreenID) bool {
	sess, ok := r.sessions[lobby]
	return ok && sess.ScreenChannel != "" && sess.ScreenID == screen
}

// ClearScreenBinding drops the screen half of a session, keeping the lobby
// half. It returns the lobby identity that was bound to the channel.
func (r *Registry) ClearScreenBinding(channel model.ChannelID) (model.LobbyID, bool) {
	lobby, ok := r.byChannel[channel]
	if !ok {
		return "", false
	}
	delete(r.byChannel, channel)
	if sess, ok := r.sessions[lobby]; ok {
		clearBinding(sess)
		r.release(sess)
	}
	return lobby, true
}

// ClearLobbyBinding drops the screen half of a player's session
func (r *Registry) ClearLobbyBinding(lobby model.LobbyID) {
	sess, ok := r.sessions[lobby]
	if !ok {
		return
	}
	if sess.ScreenChannel != "" {
		delete(r.byChannel, sess.ScreenChannel)
	}
	clearBinding(sess)
	r.release(sess)
}

// Remove tears down a player's session entirely
func (r *Registry) Remove(lobby model.LobbyID) {
	sess, ok := r.sessions[lobby]
	if !ok {
		return
	}
	if sess.ScreenChannel != "" {
		delete(r.byChannel, sess.ScreenChannel)
	}
	delete(r.sessions, lobby)
}

// Len returns the number of sessions
func (r *Registry) Len() int {
	return len(r.sessions)
}

// release forgets a session that has neither half open
func (r *Registry) release(sess *model.Session) bool {
	if sess.LobbyConnected || sess.ScreenChannel != "" {
		return false
	}
	delete(r.sessions, sess.LobbyID)
	return true
}

func clearBinding(sess *model.Session) {
	sess.ScreenChannel = ""
	sess.ScreenID = ""
	sess.ScreenName = ""
	sess.Slot = model.SlotNone
}
