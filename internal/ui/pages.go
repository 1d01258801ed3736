package ui

import (
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// Notification is a one-shot message shown at the top of a page.
type Notification struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// PublicPage is the view model of the contact selection page.
type PublicPage struct {
	L             *Localizer
	Contacts      engine.ContactList
	Loaded        bool
	Notifications []Notification
	ShowQRCode    bool
}

// HasSelection reports whether the export button should be enabled.
func (p PublicPage) HasSelection() bool {
	return p.Contacts.CheckedCount() > 0
}

// AdminRow is one line of the admin table.
type AdminRow struct {
	Name         string
	Phone        string
	DisplayPhone string
}

// AdminForm mirrors an engine.EditSession for rendering.
type AdminForm struct {
	Open         bool
	IsNew        bool
	OriginalName string
	Name         string
	Phone        string
	NameError    string
	PhoneError   string
}

// AdminPage is the view model of the management page.
type AdminPage struct {
	L             *Localizer
	Query         string
	Rows          []AdminRow
	Total         int
	Form          AdminForm
	ConfirmDelete string
	Notifications []Notification
}

// EmptyMessage picks the empty-state text, or "" when rows are present.
func (p AdminPage) EmptyMessage() string {
	switch {
	case len(p.Rows) > 0:
		return ""
	case p.Query != "" && p.Total > 0:
		return p.L.T(config.TKeyEmptySearch)
	default:
		return p.L.T(config.TKeyEmptyList)
	}
}

// NewAdminRows converts stored records for display.
func NewAdminRows(records []engine.ContactRecord) []AdminRow {
	rows := make([]AdminRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, AdminRow{
			Name:         r.Name,
			Phone:        r.Phone,
			DisplayPhone: engine.FormatPhoneForDisplay(r.Phone),
		})
	}
	return rows
}

// NewAdminForm copies the session fields, translating field errors.
func NewAdminForm(l *Localizer, s engine.EditSession) AdminForm {
	f := AdminForm{
		Open:         s.State != engine.StateIdle,
		IsNew:        s.IsNew(),
		OriginalName: s.OriginalName,
		Name:         s.Name,
		Phone:        s.Phone,
	}
	if s.NameError != "" {
		f.NameError = l.T(config.TKeyErrName)
	}
	if s.PhoneError != "" {
		f.PhoneError = l.T(config.TKeyErrPhone)
	}
	return f
}
