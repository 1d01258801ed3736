package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// contactsResponse is the JSON view of a page session. Notifications carries
// the ones queued by earlier requests of the same session.
type contactsResponse struct {
	Contacts      engine.ContactList `json:"contacts"`
	Loaded        bool               `json:"loaded"`
	Notifications []ui.Notification  `json:"notifications,omitempty"`
}

// contactInput is the body of admin create and update calls. On update an
// empty Name keeps the current one.
type contactInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *ContactServer) apiListContacts(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	err := s.ensureLoaded(r.Context(), p)
	var resp contactsResponse
	if err == nil {
		resp = contactsResponse{
			Contacts:      p.contacts,
			Loaded:        p.loaded,
			Notifications: p.drain(s.localizer(r)),
		}
	}
	p.mu.Unlock()

	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *ContactServer) apiToggle(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)
	id := chi.URLParam(r, config.ParamID)

	p.mu.Lock()
	_, known := p.contacts.Find(id)
	p.contacts = p.contacts.Toggle(id)
	resp := contactsResponse{Contacts: p.contacts, Loaded: p.loaded}
	p.mu.Unlock()

	if !known {
		writeAPIError(w, engine.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *ContactServer) apiExport(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)

	p.mu.Lock()
	list := p.contacts
	p.mu.Unlock()

	data, err := s.export(r.Context(), list)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeVCard(w, data)
}

func (s *ContactServer) apiAdminList(w http.ResponseWriter, r *http.Request) {
	records, err := s.editor.Records(r.Context())
	if err != nil {
		s.metrics.ObserveStoreError(config.OpList)
		writeAPIError(w, err)
		return
	}
	out := engine.Filter(records, r.URL.Query().Get(config.QueryQ))
	if out == nil {
		out = []engine.ContactRecord{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *ContactServer) apiAdminCreate(w http.ResponseWriter, r *http.Request) {
	var in contactInput
	if !decodeBody(w, r, &in) {
		return
	}

	var sess engine.EditSession
	sess.BeginCreate()
	sess.Name, sess.Phone = in.Name, in.Phone
	s.saveAPI(w, r, &sess, http.StatusCreated)
}

func (s *ContactServer) apiAdminUpdate(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	var in contactInput
	if !decodeBody(w, r, &in) {
		return
	}

	current, err := s.store.Get(r.Context(), name)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	var sess engine.EditSession
	sess.BeginEdit(current)
	if in.Name != "" {
		sess.Name = in.Name
	}
	sess.Phone = in.Phone
	s.saveAPI(w, r, &sess, http.StatusOK)
}

func (s *ContactServer) saveAPI(w http.ResponseWriter, r *http.Request, sess *engine.EditSession, status int) {
	op := sess.Op()
	rec, err := s.editor.Save(r.Context(), sess)
	s.metrics.ObserveMutation(op, err)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, status, rec)
}

func (s *ContactServer) apiAdminDelete(w http.ResponseWriter, r *http.Request) {
	err := s.editor.Delete(r.Context(), pathName(r))
	s.metrics.ObserveMutation(config.OpDelete, err)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathName returns the {name} segment decoded exactly once. chi matches on
// RawPath when it is set, so only then is the parameter still escaped.
func pathName(r *http.Request) string {
	name := chi.URLParam(r, config.ParamName)
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxUploadSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: config.ErrBadRequest})
		return false
	}
	return true
}
