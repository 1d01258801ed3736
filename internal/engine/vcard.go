package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-contacts/internal/config"
)

// ContactPicker is an optional native contact integration.
// It is advisory only: its outcome never changes what Export returns.
type ContactPicker interface {
	Select(ctx context.Context, properties []string) error
}

// Exporter turns a selection into a single multi-card vCard 3.0 document.
type Exporter struct {
	// Picker is probed before serialization when non-nil.
	Picker ContactPicker
}

// Export serializes the selected entries. selected must already be filtered
// to checked entries; an empty selection yields ErrNoSelection and no bytes.
func (e *Exporter) Export(ctx context.Context, selected ContactList) ([]byte, error) {
	if len(selected) == 0 {
		slog.Warn(config.MsgSelectionEmpty, config.LogKeyComponent, config.CompExport)
		return nil, ErrNoSelection
	}

	e.probePicker(ctx)

	data := Serialize(selected)
	slog.Info(config.MsgExported,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyCount, len(selected),
		config.LogKeySizeBytes, len(data))
	return data, nil
}

// probePicker runs the picker inside its own failure boundary.
func (e *Exporter) probePicker(ctx context.Context) {
	if e.Picker == nil {
		return
	}
	log := slog.With(config.LogKeyComponent, config.CompExport)
	defer func() {
		if r := recover(); r != nil {
			log.Warn(config.MsgPickerPanic, config.LogKeyValue, r)
		}
	}()
	if err := e.Picker.Select(ctx, config.PickerProperties); err != nil {
		log.Info(config.MsgPickerFailed, config.LogKeyError, err)
	}
}

// Serialize renders one vCard block per entry, CRLF-separated, in order.
// Values are written verbatim: a name holding ';', ':', ',' or a line break
// produces a non-conforming card.
func Serialize(entries ContactList) []byte {
	cards := make([]string, 0, len(entries))
	for _, c := range entries {
		cards = append(cards, strings.Join(cardLines(c), config.VCardLineBreak))
	}
	return []byte(strings.Join(cards, config.VCardLineBreak))
}

func cardLines(c ContactDisplayModel) []string {
	return []string{
		config.VCardBegin,
		vcard.FieldVersion + config.VCardSeparator + config.VCardVersion,
		vcard.FieldFormattedName + config.VCardSeparator + c.Name,
		vcard.FieldName + config.VCardSeparator + config.VCardNamePrefix + c.Name + config.VCardNameSuffix,
		vcard.FieldTelephone + config.VCardParamType + strings.ToUpper(vcard.TypeCell) + config.VCardSeparator + c.RawPhone,
		config.VCardEnd,
	}
}
