package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// flash is a notification queued for the next rendered page. It is translated
// at render time so it follows the language of that request.
type flash struct {
	level string
	key   string
	count int
	data  map[string]any
}

// pageSession is the state owned by one browser: its loaded list and its
// pending notifications.
type pageSession struct {
	mu       sync.Mutex // guards contacts, loaded and flashes
	contacts engine.ContactList
	loaded   bool
	flashes  []flash

	// lastSeen is guarded by the SessionStore lock.
	lastSeen time.Time
}

func (p *pageSession) push(level, key string) {
	p.flashes = append(p.flashes, flash{level: level, key: key})
}

// drain translates and clears the pending notifications.
func (p *pageSession) drain(l *ui.Localizer) []ui.Notification {
	if len(p.flashes) == 0 {
		return nil
	}
	out := make([]ui.Notification, 0, len(p.flashes))
	for _, f := range p.flashes {
		text := l.T(f.key)
		switch {
		case f.data != nil:
			text = l.TData(f.key, f.data)
		case f.key == config.TKeyNotifImportDone:
			text = l.TCount(f.key, f.count)
		}
		out = append(out, ui.Notification{Level: f.level, Text: text})
	}
	p.flashes = nil
	return out
}

// SessionStore keeps page sessions in memory, keyed by a random cookie value.
// Sessions idle for longer than ttl are evicted.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]*pageSession
	ttl   time.Duration
	clock engine.Clock

	// OnChange, when set, receives the session count after every insert or sweep.
	OnChange func(n int)
}

// NewSessionStore creates an empty store.
func NewSessionStore(ttl time.Duration, clock engine.Clock) *SessionStore {
	return &SessionStore{
		items: make(map[string]*pageSession),
		ttl:   ttl,
		clock: clock,
	}
}

// acquire returns the session of the request, creating it and setting the
// cookie when it is missing or expired.
func (s *SessionStore) acquire(w http.ResponseWriter, r *http.Request) *pageSession {
	now := s.clock.Now()

	s.mu.Lock()
	if c, err := r.Cookie(config.SessionCookieName); err == nil {
		if sess, ok := s.items[c.Value]; ok && now.Sub(sess.lastSeen) < s.ttl {
			sess.lastSeen = now
			s.mu.Unlock()
			return sess
		}
	}

	id := uuid.NewString()
	sess := &pageSession{lastSeen: now}
	s.items[id] = sess
	n := len(s.items)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    id,
		Path:     config.RouteRoot,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug(config.MsgSessionNew, config.LogKeyComponent, config.CompSession, config.LogKeySession, id)
	s.notify(n)
	return sess
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	n := len(s.items)
	s.mu.Unlock()

	if removed > 0 {
		slog.Debug(config.MsgSessionsSwept,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyCount, removed)
	}
	s.notify(n)
	return removed
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run sweeps every interval until ctx is cancelled.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) notify(n int) {
	if s.OnChange != nil {
		s.OnChange(n)
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get(config.HeaderForwardedProto) == config.SchemeHTTPS
}
