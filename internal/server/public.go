package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// load replaces the session list with a fresh fetch. On failure the list is
// emptied, an error notification is queued and the session stays unloaded.
// p.mu must be held.
func (s *ContactServer) load(ctx context.Context, p *pageSession) error {
	list, err := s.editor.Load(ctx)
	if err != nil {
		s.metrics.ObserveStoreError(config.OpList)
		p.contacts = engine.ContactList{}
		p.loaded = false
		p.push(config.LevelError, config.TKeyNotifFetchErr)
		return err
	}
	p.contacts = list
	p.loaded = true
	return nil
}

// ensureLoaded fetches the list on first use of a session.
func (s *ContactServer) ensureLoaded(ctx context.Context, p *pageSession) error {
	if p.loaded {
		return nil
	}
	return s.load(ctx, p)
}

// export runs the exporter on the checked entries of list and records the outcome.
func (s *ContactServer) export(ctx context.Context, list engine.ContactList) ([]byte, error) {
	selected := list.Selected()
	data, err := s.exporter.Export(ctx, selected)
	if errors.Is(err, engine.ErrNoSelection) {
		s.metrics.EmptyExports.Inc()
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(len(selected))
	return data, nil
}

func (s *ContactServer) handlePublic(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)
	l := s.localizer(r)

	p.mu.Lock()
	_ = s.ensureLoaded(r.Context(), p)
	page := ui.PublicPage{
		L:             l,
		Contacts:      p.contacts,
		Loaded:        p.loaded,
		Notifications: p.drain(l),
		ShowQRCode:    true,
	}
	p.mu.Unlock()

	writePage(w, http.StatusOK, func(out io.Writer) error { return s.render.Public(out, page) })
}

func (s *ContactServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	p.contacts = p.contacts.Toggle(chi.URLParam(r, config.ParamID))
	p.mu.Unlock()

	redirect(w, r, config.RouteRoot)
}

func (s *ContactServer) handleReload(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	_ = s.load(r.Context(), p)
	p.mu.Unlock()

	redirect(w, r, config.RouteRoot)
}

func (s *ContactServer) handleExport(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	list := p.contacts
	p.mu.Unlock()

	data, err := s.export(r.Context(), list)
	if err != nil {
		p.mu.Lock()
		p.push(config.LevelWarning, config.TKeyNotifNoSel)
		p.mu.Unlock()
		redirect(w, r, config.RouteRoot)
		return
	}
	writeVCard(w, data)
}

// handleExportOne exports a single displayed contact, whatever its checkbox state.
func (s *ContactServer) handleExportOne(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	c, ok := p.contacts.Find(chi.URLParam(r, config.ParamID))
	p.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	c.Checked = true
	data, err := s.export(r.Context(), engine.ContactList{c})
	if err != nil {
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}
	writeVCard(w, data)
}
