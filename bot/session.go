// SPDX-License-Identifier: GPL-3.0-or-later
package bot

import "sync"

type State int

const (
	StateIdle State = iota
	StateAwaitImapServer
	StateAwaitImapPort
	StateAwaitLoginPass
)

type session struct {
	state         State
	pendingServer string
}

// Sessions holds the transient per-user dialogue state. It is safe for
// concurrent use across users; ordering of a single user's updates is the
// dispatcher's job.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: map[int64]*session{},
	}
}

func (s *Sessions) State(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return StateIdle
	}
	return sess.state
}

func (s *Sessions) Await(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.state = state
}

func (s *Sessions) SetPendingServer(userID int64, server string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.pendingServer = server
}

func (s *Sessions) PendingServer(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return ""
	}
	return sess.pendingServer
}

// Clear drops the dialogue entirely, returning the user to StateIdle.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
