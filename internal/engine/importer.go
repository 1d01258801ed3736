package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-contacts/internal/config"
)

// maxDecodeFailures bounds consecutive decode errors so a broken reader cannot spin forever.
const maxDecodeFailures = 32

// ImportSource names where a vCard stream comes from. Exactly one of Path or URL is used,
// Path taking precedence.
type ImportSource struct {
	Path string // Local .vcf file
	URL  string // http(s) URL of a .vcf file or CardDAV export
	User string // HTTP Basic Auth username
	Pass string // HTTP Basic Auth password
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
}

// Importer reads vCards and upserts every card carrying a name and a valid phone number.
type Importer struct {
	Store   ContactStore
	Fetcher VCardFetcher
}

// Run acquires the stream described by src and imports it.
func (im *Importer) Run(ctx context.Context, src ImportSource) (ImportReport, error) {
	reader, err := im.acquireStream(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return ImportReport{}, ctx.Err()
		}
		return ImportReport{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	return im.ImportReader(ctx, reader)
}

func (im *Importer) acquireStream(ctx context.Context, src ImportSource) (io.ReadCloser, error) {
	switch {
	case src.Path != "":
		return os.Open(src.Path)
	case src.URL != "":
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.URL, src.User, src.Pass)
	default:
		return nil, errors.New(config.ErrSourceEmpty)
	}
}

// ImportReader decodes r card by card. Malformed cards and cards without a
// usable name or phone are skipped; a store failure aborts the run.
func (im *Importer) ImportReader(ctx context.Context, r io.Reader) (ImportReport, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompImport)
	log.InfoContext(ctx, config.MsgImportStarted)

	decoder := vcard.NewDecoder(r)
	var report ImportReport
	failures := 0

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			failures++
			report.Skipped++
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			if failures >= maxDecodeFailures {
				return report, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		failures = 0
		report.Processed++

		rec, ok := recordFromCard(card)
		if !ok {
			report.Skipped++
			continue
		}

		if err := im.Store.Upsert(ctx, rec); err != nil {
			return report, &MutationError{Op: config.OpImport, Name: rec.Name, Err: err}
		}
		report.Imported++
	}

	log.Info(config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, report.Processed),
			slog.Int(config.LogKeyImported, report.Imported),
			slog.Int(config.LogKeySkipped, report.Skipped),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return report, nil
}

// recordFromCard applies the name strategy FN > N and takes the preferred TEL.
func recordFromCard(card vcard.Card) (ContactRecord, bool) {
	name := ""
	if fn := card.Get(vcard.FieldFormattedName); fn != nil {
		name = strings.TrimSpace(fn.Value)
	}
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.Join(strings.Fields(strings.Join([]string{
				n.HonorificPrefix, n.GivenName, n.AdditionalName, n.FamilyName, n.HonorificSuffix,
			}, " ")), " ")
		}
	}
	if name == "" {
		slog.Debug(config.MsgSkippedName, config.LogKeyComponent, config.CompImport)
		return ContactRecord{}, false
	}

	tel := card.Preferred(vcard.FieldTelephone)
	if tel == nil {
		slog.Debug(config.MsgSkippedPhone, config.LogKeyComponent, config.CompImport, config.LogKeyName, name)
		return ContactRecord{}, false
	}
	digits, err := ValidatePhone(tel.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedPhone,
			config.LogKeyComponent, config.CompImport,
			config.LogKeyName, name,
			config.LogKeyValue, tel.Value)
		return ContactRecord{}, false
	}
	return ContactRecord{Name: name, Phone: FormatPhone(digits)}, true
}
