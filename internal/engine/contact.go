package engine

import "context"

// ContactRecord is the stored shape of a contact.
// Name is the document key: unique, non-empty and used verbatim.
type ContactRecord struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ContactDisplayModel is the per-fetch view of a stored record.
// It is rebuilt on every reload and never persisted.
type ContactDisplayModel struct {
	// ID is a 1-based sequential token, unique within one fetch only.
	ID string `json:"id"`

	Name string `json:"name"`

	// Phone is formatted for display when the stored value is a bare 10-digit string.
	Phone string `json:"phone"`

	// RawPhone is the stored value, used verbatim in exports.
	RawPhone string `json:"rawPhone"`

	// Checked is the UI selection flag. It defaults to true on load.
	Checked bool `json:"checked"`
}

// ContactList is one page instance's loaded contacts, in fetch order.
type ContactList []ContactDisplayModel

// ContactStore is the document collection holding contacts keyed by name.
// List order is backend-defined but stable for a single call.
type ContactStore interface {
	List(ctx context.Context) ([]ContactRecord, error)
	Get(ctx context.Context, name string) (ContactRecord, error)
	Upsert(ctx context.Context, rec ContactRecord) error
	Delete(ctx context.Context, name string) error
}

// Renamer is implemented by stores that can move a record to a new key atomically.
type Renamer interface {
	Rename(ctx context.Context, oldName string, rec ContactRecord) error
}
