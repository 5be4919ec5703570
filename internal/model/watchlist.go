package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sector is a named group of tickers.
type Sector struct {
	Name    string   `json:"name" yaml:"name"`
	Tickers []string `json:"tickers" yaml:"tickers"`
}

// Watchlist is the sector-grouped ticker list bounding a scan. Sectors keep
// the order in which they appear in the source document.
type Watchlist struct {
	Sectors []Sector `json:"sectors"`
}

// UnmarshalYAML decodes a `sector: [tickers]` mapping, preserving key order.
// JSON documents decode the same way since yaml.v3 accepts them.
func (w *Watchlist) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("watchlist: expected mapping at line %d", node.Line)
	}
	sectors := make([]Sector, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var tickers []string
		if err := node.Content[i+1].Decode(&tickers); err != nil {
			return fmt.Errorf("watchlist sector %q: %w", node.Content[i].Value, err)
		}
		sectors = append(sectors, Sector{Name: node.Content[i].Value, Tickers: tickers})
	}
	w.Sectors = sectors
	return nil
}

// Flatten returns every ticker once, upper-cased, in document order.
func (w Watchlist) Flatten() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range w.Sectors {
		for _, t := range s.Tickers {
			sym := NormalizeSymbol(t)
			if sym == "" {
				continue
			}
			if _, ok := seen[sym]; ok {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, sym)
		}
	}
	return out
}

// Contains reports whether symbol belongs to any sector.
func (w Watchlist) Contains(symbol string) bool {
	return len(w.SectorsOf(symbol)) > 0
}

// SectorsOf lists the sectors a ticker belongs to.
func (w Watchlist) SectorsOf(symbol string) []string {
	sym := NormalizeSymbol(symbol)
	var out []string
	for _, s := range w.Sectors {
		for _, t := range s.Tickers {
			if NormalizeSymbol(t) == sym {
				out = append(out, s.Name)
				break
			}
		}
	}
	return out
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
