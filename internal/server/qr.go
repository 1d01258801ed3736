package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/skip2/go-qrcode"
	"github.com/tartampluch/go-contacts/internal/config"
)

// cacheItem stores a rendered QR code together with the URL it encodes.
type cacheItem struct {
	url  string
	data []byte
	etag string
}

// publicURL is the address encoded in the QR code: the configured public URL,
// or the one the request was made to.
func (s *ContactServer) publicURL(r *http.Request) string {
	if s.settings.PublicURL != "" {
		return s.settings.PublicURL + config.RouteRoot
	}
	scheme := config.SchemeHTTP
	if isSecure(r) {
		scheme = config.SchemeHTTPS
	}
	return scheme + "://" + r.Host + config.RouteRoot
}

// qrFor returns the cached QR code for url, rendering it on a miss.
func (s *ContactServer) qrFor(url string) (*cacheItem, error) {
	if item := s.qr.Load(); item != nil && item.url == url {
		return item, nil
	}

	png, err := qrcode.Encode(url, qrcode.Medium, config.QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrQRCode, err)
	}
	hash := sha256.Sum256(png)
	item := &cacheItem{
		url:  url,
		data: png,
		etag: fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
	}
	s.qr.Store(item)
	return item, nil
}

// handleQRCode serves a PNG QR code pointing at the public page.
func (s *ContactServer) handleQRCode(w http.ResponseWriter, r *http.Request) {
	item, err := s.qrFor(s.publicURL(r))
	if err != nil {
		slog.Error(config.ErrQRCode, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimePNG)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderETag, item.etag)

	if r.Header.Get(config.HeaderIfNoneMatch) == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if _, err := w.Write(item.data); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}

// handleHealth pings the store.
func (s *ContactServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.Warn(config.MsgHealthFailed, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
