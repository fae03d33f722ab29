// Package secrets persists OAuth credentials for the application and each band.
//
// The on-disk document is a single JSON file holding the shared client_id and
// client_secret plus one access/refresh token pair per band, keyed "1".."10".
// Every save rewrites the whole document; there is no cross-process locking,
// so concurrent invocations racing on the same file are last-writer-wins.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/bandctl/internal/shared"
)

// NumBands is the number of physical bands the store tracks.
const NumBands = 10

// Tokens is one band's OAuth token pair. Empty strings mean the band has not
// completed the authorization flow yet.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Document is the full credential file: application client credentials plus a
// token pair for every band.
type Document struct {
	ClientID     string
	ClientSecret string
	Bands        map[string]Tokens
}

// normalize inserts an empty token pair for any band key missing from the
// document so every band in range always resolves to a record.
func (d *Document) normalize() {
	if d.Bands == nil {
		d.Bands = make(map[string]Tokens, NumBands)
	}
	for band := 1; band <= NumBands; band++ {
		key := strconv.Itoa(band)
		if _, ok := d.Bands[key]; !ok {
			d.Bands[key] = Tokens{}
		}
	}
}

// MarshalJSON flattens the document to the on-disk shape: top-level client_id
// and client_secret alongside the band keys themselves.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, NumBands+2)
	out["client_id"] = d.ClientID
	out["client_secret"] = d.ClientSecret
	for key, tokens := range d.Bands {
		out[key] = tokens
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat on-disk shape back into the document. Keys that
// are neither client credentials nor a band number in range are ignored.
func (d *Document) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Bands = make(map[string]Tokens, NumBands)
	for key, value := range raw {
		switch key {
		case "client_id":
			if err := json.Unmarshal(value, &d.ClientID); err != nil {
				return fmt.Errorf("invalid client_id: %w", err)
			}
		case "client_secret":
			if err := json.Unmarshal(value, &d.ClientSecret); err != nil {
				return fmt.Errorf("invalid client_secret: %w", err)
			}
		default:
			band, err := strconv.Atoi(key)
			if err != nil || band < 1 || band > NumBands {
				continue
			}
			var tokens Tokens
			if err := json.Unmarshal(value, &tokens); err != nil {
				return fmt.Errorf("invalid tokens for band %s: %w", key, err)
			}
			d.Bands[key] = tokens
		}
	}

	d.normalize()
	return nil
}

// Store reads and writes the credential document at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store bound to the given file path. The file is created
// lazily on first Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the credential document, creating it with empty fields if the
// file does not exist yet.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		doc := &Document{}
		doc.normalize()
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", s.path, err)
	}
	return doc, nil
}

// Save overwrites the whole credential document on disk.
func (s *Store) Save(doc *Document) error {
	doc.normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create secrets directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	return nil
}

// ClientCredentials returns the shared application client id and secret.
// Unset credentials come back as empty strings, not an error; callers decide
// whether that is fatal.
func (s *Store) ClientCredentials() (string, string, error) {
	doc, err := s.Load()
	if err != nil {
		return "", "", err
	}
	return doc.ClientID, doc.ClientSecret, nil
}

// BandTokens returns the access and refresh token for a band. An unset band
// yields empty strings.
func (s *Store) BandTokens(band int) (string, string, error) {
	if err := validateBand(band); err != nil {
		return "", "", err
	}

	doc, err := s.Load()
	if err != nil {
		return "", "", err
	}

	tokens := doc.Bands[strconv.Itoa(band)]
	return tokens.AccessToken, tokens.RefreshToken, nil
}

// SetBandTokens replaces a band's token pair and persists the whole document.
func (s *Store) SetBandTokens(band int, access, refresh string) error {
	if err := validateBand(band); err != nil {
		return err
	}

	doc, err := s.Load()
	if err != nil {
		return err
	}

	doc.Bands[strconv.Itoa(band)] = Tokens{AccessToken: access, RefreshToken: refresh}
	return s.Save(doc)
}

func validateBand(band int) error {
	if band < 1 || band > NumBands {
		return fmt.Errorf("%w: %d (valid range 1-%d)", shared.ErrInvalidBand, band, NumBands)
	}
	return nil
}
