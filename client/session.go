package client

import (
	"context"
	"sync"
)

// State is the session snapshot handed to subscribers: who is logged in and
// their profile. Loading is true only while the initial restoration runs.
// User and Profile are both nil when signed out.
type State struct {
	User    *User
	Profile *Profile
	Loading bool
}

// Session is the single source of truth for the authenticated identity,
// shared by every view. It is an injected object, not a package-level
// global: callers construct one at the root and pass it down.
type Session struct {
	client *Client

	mu          sync.Mutex
	token       string
	user        *User
	profile     *Profile
	loading     bool
	epoch       uint64
	subscribers map[int]func(State)
	nextSubID   int
}

func NewSession(c *Client) *Session {
	return &Session{
		client:      c,
		subscribers: make(map[int]func(State)),
	}
}

// Subscribe registers a callback invoked on every session change, including
// the end of the initial restoration. The returned function unsubscribes.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{User: s.user, Profile: s.profile, Loading: s.loading}
}

// Restore attempts to resume a persisted session. An invalid token leaves
// the session signed out without error: expiry is a normal outcome.
func (s *Session) Restore(ctx context.Context, token string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	payload, err := s.client.session(ctx, token)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.token = token
		s.user = payload.User
		s.profile = payload.Profile
		s.epoch++
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		if _, ok := err.(*AuthError); ok {
			return nil
		}
		return err
	}
	return nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	payload, err := s.client.signIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = payload.AccessToken
	s.user = payload.User
	s.profile = payload.Profile
	s.epoch++
	s.mu.Unlock()
	s.notify()

	if payload.ProfilePending {
		return &ProfileError{Msg: "profile creation pending", UserID: payload.User.ID}
	}
	return nil
}

// SignUp registers a new account. A ProfileError return means the identity
// was created but the profile was not; the caller should surface it and
// offer CompleteProfile rather than re-registering.
func (s *Session) SignUp(ctx context.Context, input SignUpInput) error {
	_, err := s.client.signUp(ctx, input)
	return err
}

// CompleteProfile retries the second registration phase for the signed-in
// identity.
func (s *Session) CompleteProfile(ctx context.Context, input SignUpInput) error {
	s.mu.Lock()
	token := s.token
	epoch := s.epoch
	s.mu.Unlock()

	profile, err := s.client.completeProfile(ctx, token, input)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.profile = profile
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// SignOut clears local state unconditionally; the server-side revocation is
// best-effort and its failure never blocks the local clear.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.user = nil
	s.profile = nil
	s.epoch++
	s.mu.Unlock()
	s.notify()

	if token != "" {
		_ = s.client.signOut(ctx, token)
	}
}

// snapshot returns the values an in-flight operation must capture before it
// starts: results are applied only if the epoch is unchanged on completion.
func (s *Session) snapshot() (token string, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.epoch
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Session) notify() {
	s.mu.Lock()
	state := State{User: s.user, Profile: s.profile, Loading: s.loading}
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
