package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// adminView collects what the admin page shows besides the form.
type adminView struct {
	query         string
	confirmDelete string
	session       engine.EditSession
}

func (s *ContactServer) handleAdmin(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.acquire(w, r)
	q := r.URL.Query()
	view := adminView{
		query:         q.Get(config.QueryQ),
		confirmDelete: q.Get(config.QueryDelete),
	}

	switch {
	case q.Get(config.QueryNew) != "":
		view.session.BeginCreate()
	case q.Get(config.QueryEdit) != "":
		rec, err := s.store.Get(r.Context(), q.Get(config.QueryEdit))
		if err != nil {
			level, key := config.LevelError, config.TKeyNotifFetchErr
			if errors.Is(err, engine.ErrNotFound) {
				level, key = config.LevelWarning, config.TKeyNotifNotFound
			} else {
				s.metrics.ObserveStoreError(config.OpList)
			}
			p.mu.Lock()
			p.push(level, key)
			p.mu.Unlock()
			break
		}
		view.session.BeginEdit(rec)
	}

	s.renderAdmin(w, r, p, http.StatusOK, view)
}

// renderAdmin lists the store, applies the search and writes the page.
func (s *ContactServer) renderAdmin(w http.ResponseWriter, r *http.Request, p *pageSession, status int, view adminView) {
	l := s.localizer(r)

	records, err := s.editor.Records(r.Context())

	p.mu.Lock()
	if err != nil {
		s.metrics.ObserveStoreError(config.OpList)
		p.push(config.LevelError, config.TKeyNotifFetchErr)
	}
	notes := p.drain(l)
	p.mu.Unlock()

	page := ui.AdminPage{
		L:             l,
		Query:         view.query,
		Rows:          ui.NewAdminRows(engine.Filter(records, view.query)),
		Total:         len(records),
		Form:          ui.NewAdminForm(l, view.session),
		ConfirmDelete: view.confirmDelete,
		Notifications: notes,
	}
	writePage(w, status, func(out io.Writer) error { return s.render.Admin(out, page) })
}

func (s *ContactServer) handleAdminSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	var sess engine.EditSession
	if original := r.PostForm.Get(config.FieldOriginalName); original != "" {
		sess.BeginEdit(engine.ContactRecord{Name: original})
	} else {
		sess.BeginCreate()
	}
	sess.Name = r.PostForm.Get(config.FieldName)
	sess.Phone = r.PostForm.Get(config.FieldPhone)
	op := sess.Op()

	_, err := s.editor.Save(r.Context(), &sess)
	s.metrics.ObserveMutation(op, err)

	p := s.sessions.acquire(w, r)
	if err == nil {
		p.mu.Lock()
		p.push(config.LevelSuccess, config.TKeyNotifSaved)
		p.mu.Unlock()
		redirect(w, r, config.RouteAdmin)
		return
	}

	// The form stays open with the user's input.
	if !errors.Is(err, engine.ErrInvalidPhone) && !errors.Is(err, engine.ErrInvalidName) {
		key := config.TKeyNotifSaveErr
		if errors.Is(err, engine.ErrPartialRename) {
			key = config.TKeyNotifPartial
		}
		p.mu.Lock()
		p.push(config.LevelError, key)
		p.mu.Unlock()
	}
	s.renderAdmin(w, r, p, statusFor(err), adminView{session: sess})
}

func (s *ContactServer) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get(config.FieldName)
	if name == "" {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	if r.PostForm.Get(config.FieldConfirm) != config.ConfirmYes {
		redirect(w, r, config.RouteAdmin+"?"+url.Values{config.QueryDelete: {name}}.Encode())
		return
	}

	err := s.editor.Delete(r.Context(), name)
	s.metrics.ObserveMutation(config.OpDelete, err)

	p := s.sessions.acquire(w, r)
	p.mu.Lock()
	if err != nil {
		p.push(config.LevelError, config.TKeyNotifDeleteErr)
	} else {
		p.push(config.LevelSuccess, config.TKeyNotifDeleted)
	}
	p.mu.Unlock()
	redirect(w, r, config.RouteAdmin)
}

// handleAdminImport imports an uploaded .vcf file or a remote URL.
func (s *ContactServer) handleAdminImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	var (
		report engine.ImportReport
		err    error
	)
	file, _, ferr := r.FormFile(config.FieldImportFile)
	switch {
	case ferr == nil:
		defer func() { _ = file.Close() }()
		report, err = s.importer.ImportReader(r.Context(), file)
	default:
		src := s.importSource(strings.TrimSpace(r.FormValue(config.FieldImportURL)))
		report, err = s.importer.Run(r.Context(), src)
	}

	s.metrics.ObserveMutation(config.OpImport, err)
	s.metrics.ImportedCards.Add(float64(report.Imported))

	p := s.sessions.acquire(w, r)
	p.mu.Lock()
	if err != nil {
		slog.Warn(config.MsgImportFailed, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		p.push(config.LevelError, config.TKeyNotifImportErr)
	} else {
		p.flashes = append(p.flashes, flash{level: config.LevelSuccess, key: config.TKeyNotifImportDone, count: report.Imported})
	}
	p.mu.Unlock()
	redirect(w, r, config.RouteAdmin)
}

// importSource builds the remote import for target, falling back to the
// configured ImportURL. Credentials are attached only when target has the
// same scheme and host as ImportURL.
func (s *ContactServer) importSource(target string) engine.ImportSource {
	if target == "" {
		target = s.settings.ImportURL
	}
	src := engine.ImportSource{URL: target}
	if s.settings.ImportUser == "" {
		return src
	}
	if !sameOrigin(target, s.settings.ImportURL) {
		slog.Warn(config.MsgCredsWithheld,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyURL, originOf(target))
		return src
	}
	src.User = s.settings.ImportUser
	src.Pass = s.lookupSecret(src.User)
	return src
}

func sameOrigin(a, b string) bool {
	oa := originOf(a)
	return oa != "" && oa == originOf(b)
}

// originOf returns the lower-cased scheme://host of raw, or "" when raw is not
// an absolute http(s) URL.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != config.SchemeHTTP && scheme != config.SchemeHTTPS {
		return ""
	}
	return scheme + "://" + strings.ToLower(u.Host)
}

// lookupSecret resolves an import password. A miss is logged and yields "".
func (s *ContactServer) lookupSecret(user string) string {
	if user == "" || s.secret == nil {
		return ""
	}
	pass, err := s.secret(user)
	if err != nil {
		slog.Warn(config.MsgSecretFail,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return ""
	}
	return pass
}
