package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-contacts/internal/config"
)

// EditState is the position of an EditSession in its lifecycle.
type EditState int

const (
	StateIdle EditState = iota
	StateEditing
	StateValidating
)

func (s EditState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	default:
		return "idle"
	}
}

// EditSession holds one admin form: Idle -> Editing(new|existing) -> Validating
// -> Idle on success, back to Editing on failure.
type EditSession struct {
	State EditState

	// OriginalName is the key of the record loaded for editing; empty for a new record.
	OriginalName string

	Name  string
	Phone string

	// PhoneError and NameError are the field-level messages of the last failed save.
	PhoneError string
	NameError  string
}

// BeginCreate opens an empty form for a new record.
func (s *EditSession) BeginCreate() {
	*s = EditSession{State: StateEditing}
}

// BeginEdit opens the form prefilled with an existing record.
func (s *EditSession) BeginEdit(rec ContactRecord) {
	*s = EditSession{
		State:        StateEditing,
		OriginalName: rec.Name,
		Name:         rec.Name,
		Phone:        rec.Phone,
	}
}

// Cancel closes the form without writing.
func (s *EditSession) Cancel() {
	*s = EditSession{}
}

// IsNew reports whether saving creates a record rather than updating one.
func (s *EditSession) IsNew() bool {
	return s.OriginalName == ""
}

// IsRename reports whether saving moves an existing record to a new key.
func (s *EditSession) IsRename() bool {
	return !s.IsNew() && s.OriginalName != s.Name
}

// Editor applies validated mutations to the store.
type Editor struct {
	Store ContactStore
}

// Load lists the store and normalizes the result for display.
func (e *Editor) Load(ctx context.Context) (ContactList, error) {
	records, err := e.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Normalize(records), nil
}

// Records lists the raw stored records.
func (e *Editor) Records(ctx context.Context) ([]ContactRecord, error) {
	start := time.Now()
	records, err := e.Store.List(ctx)
	if err != nil {
		slog.Error(config.MsgFetchFailed,
			config.LogKeyComponent, config.CompEditor,
			config.LogKeyError, err)
		return nil, &FetchError{Err: err}
	}
	slog.Debug(config.MsgContactsLoaded,
		config.LogKeyComponent, config.CompEditor,
		config.LogKeyCount, len(records),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return records, nil
}

// Save validates the session and writes it. On success the session returns to
// Idle and the written record is returned; on any failure it stays in Editing.
func (e *Editor) Save(ctx context.Context, s *EditSession) (ContactRecord, error) {
	s.State = StateValidating
	s.PhoneError, s.NameError = "", ""

	rec, err := validate(s)
	if err != nil {
		s.State = StateEditing
		return ContactRecord{}, err
	}

	if err := e.write(ctx, s, rec); err != nil {
		s.State = StateEditing
		return ContactRecord{}, err
	}

	*s = EditSession{}
	return rec, nil
}

// Op names the store operation Save will perform for the session.
func (s *EditSession) Op() string {
	switch {
	case s.IsNew():
		return config.OpCreate
	case s.IsRename():
		return config.OpRename
	default:
		return config.OpUpdate
	}
}

func validate(s *EditSession) (ContactRecord, error) {
	// The name is the document key and is kept verbatim.
	name := s.Name
	if strings.TrimSpace(name) == "" {
		s.NameError = config.ErrInvalidName
		return ContactRecord{}, ErrInvalidName
	}

	digits, err := ValidatePhone(s.Phone)
	if err != nil {
		s.PhoneError = config.ErrInvalidPhone
		slog.Info(config.MsgInvalidPhone,
			config.LogKeyComponent, config.CompEditor,
			config.LogKeyName, name)
		return ContactRecord{}, err
	}
	return ContactRecord{Name: name, Phone: FormatPhone(digits)}, nil
}

func (e *Editor) write(ctx context.Context, s *EditSession, rec ContactRecord) error {
	log := slog.With(config.LogKeyComponent, config.CompEditor)

	if !s.IsRename() {
		if err := e.Store.Upsert(ctx, rec); err != nil {
			log.Error(config.MsgSaveFailed, config.LogKeyName, rec.Name, config.LogKeyError, err)
			return &MutationError{Op: s.Op(), Name: rec.Name, Err: err}
		}
		log.Info(config.MsgSaved, config.LogKeyName, rec.Name)
		return nil
	}

	if r, ok := e.Store.(Renamer); ok {
		if err := r.Rename(ctx, s.OriginalName, rec); err != nil {
			log.Error(config.MsgSaveFailed, config.LogKeyOldName, s.OriginalName, config.LogKeyNewName, rec.Name, config.LogKeyError, err)
			return &MutationError{Op: config.OpRename, Name: s.OriginalName, Err: err}
		}
		log.Info(config.MsgRenamed, config.LogKeyOldName, s.OriginalName, config.LogKeyNewName, rec.Name)
		return nil
	}

	if err := e.Store.Delete(ctx, s.OriginalName); err != nil && !errors.Is(err, ErrNotFound) {
		log.Error(config.MsgSaveFailed, config.LogKeyOldName, s.OriginalName, config.LogKeyError, err)
		return &MutationError{Op: config.OpRename, Name: s.OriginalName, Err: err}
	}
	if err := e.Store.Upsert(ctx, rec); err != nil {
		log.Error(config.MsgPartialRename, config.LogKeyOldName, s.OriginalName, config.LogKeyNewName, rec.Name, config.LogKeyError, err)
		return &PartialRenameError{OldName: s.OriginalName, NewName: rec.Name, Err: err}
	}
	log.Info(config.MsgRenamed, config.LogKeyOldName, s.OriginalName, config.LogKeyNewName, rec.Name)
	return nil
}

// Delete removes the record unconditionally. A missing key is not an error.
func (e *Editor) Delete(ctx context.Context, name string) error {
	log := slog.With(config.LogKeyComponent, config.CompEditor, config.LogKeyName, name)
	if err := e.Store.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		log.Error(config.MsgDeleteFailed, config.LogKeyError, err)
		return &MutationError{Op: config.OpDelete, Name: name, Err: err}
	}
	log.Info(config.MsgDeleted)
	return nil
}

// Filter keeps the records whose name contains query, ignoring case.
// An empty query keeps everything.
func Filter(records []ContactRecord, query string) []ContactRecord {
	q := strings.ToLower(query)
	if q == "" {
		return records
	}
	var out []ContactRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}
