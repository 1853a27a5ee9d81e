// Package catalog loads the clinic's treatment catalog from a JSON source
// (local file or HTTP URL) and answers lookups by id and category.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/model"
)

// DataLoadError reports an unreachable or malformed catalog source. It is
// fatal to whichever command needed the catalog.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("error al cargar los datos de tratamientos (%s): %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// GlobalConfig carries the optional process-wide overrides shipped inside
// the catalog payload. Applying them is a one-time decision at load.
type GlobalConfig struct {
	IVARate        *decimal.Decimal
	CurrencySymbol string
}

// payload is the catalog wire format; field names follow the clinic's
// original data file.
type payload struct {
	Treatments []model.Treatment `json:"tratamientos"`
	Config     *struct {
		IVA            *decimal.Decimal `json:"iva"`
		CurrencySymbol string           `json:"simbolo_moneda"`
	} `json:"configuracion"`
}

// Catalog is an immutable snapshot of the loaded treatments. A failed load
// never produces a partially filled catalog; callers keep their previous
// instance on error.
type Catalog struct {
	treatments []model.Treatment
	byID       map[string]int
	categories []string
	global     *GlobalConfig
}

const fetchTimeout = 15 * time.Second

// Load reads and parses the catalog from a file path or http(s) URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	if len(p.Treatments) == 0 {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("no treatments in payload")}
	}

	c := &Catalog{
		treatments: p.Treatments,
		byID:       make(map[string]int, len(p.Treatments)),
	}

	seen := make(map[string]bool)
	for i, t := range c.treatments {
		if _, dup := c.byID[t.ID]; !dup {
			c.byID[t.ID] = i
		}
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			c.categories = append(c.categories, t.Category)
		}
	}
	sort.Strings(c.categories)

	if p.Config != nil {
		c.global = &GlobalConfig{
			IVARate:        p.Config.IVA,
			CurrencySymbol: p.Config.CurrencySymbol,
		}
	}

	return c, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// Len returns the number of treatments.
func (c *Catalog) Len() int { return len(c.treatments) }

// Treatments returns all treatments in catalog order.
func (c *Catalog) Treatments() []model.Treatment {
	out := make([]model.Treatment, len(c.treatments))
	copy(out, c.treatments)
	return out
}

// ByID returns the treatment with the given id.
func (c *Catalog) ByID(id string) (model.Treatment, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Treatment{}, false
	}
	return c.treatments[i], true
}

// ByCategory returns all treatments in a category, in catalog order.
func (c *Catalog) ByCategory(category string) []model.Treatment {
	var out []model.Treatment
	for _, t := range c.treatments {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories, alphabetically sorted.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Search returns treatments whose name, description or category contains the
// term, case-insensitively. An empty term returns everything.
func (c *Catalog) Search(term string) []model.Treatment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Treatments()
	}
	var out []model.Treatment
	for _, t := range c.treatments {
		if strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.Description), term) ||
			strings.Contains(strings.ToLower(t.Category), term) {
			out = append(out, t)
		}
	}
	return out
}

// Global returns the payload's tax/currency overrides, if any.
func (c *Catalog) Global() (GlobalConfig, bool) {
	if c.global == nil {
		return GlobalConfig{}, false
	}
	return *c.global, true
}
