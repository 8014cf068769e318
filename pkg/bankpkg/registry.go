// Package bankpkg provides the read-only table of Brazilian banks keyed by ISPB code.
package bankpkg

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"
)

//go:embed banks.yaml
var embeddedBanks []byte

// ErrDuplicateISPB indicates that the source table lists the same ISPB twice.
var ErrDuplicateISPB = errors.New("duplicate ispb")

// Bank holds the identification of a bank in the Brazilian payment system.
type Bank struct {
	ISPB     string `yaml:"ispb" json:"ispb"`
	Name     string `yaml:"name" json:"name"`
	Code     int    `yaml:"code" json:"code"`
	FullName string `yaml:"fullName" json:"full_name"`
}

// Registry is an immutable ISPB to Bank lookup table.
type Registry struct {
	byISPB map[string]Bank
	sorted []Bank
}

// Load parses a YAML list of banks into a Registry.
func Load(data []byte) (*Registry, error) {
	var banks []Bank
	if err := yaml.Unmarshal(data, &banks); err != nil {
		return nil, fmt.Errorf("parse banks: %w", err)
	}

	r := &Registry{
		byISPB: make(map[string]Bank, len(banks)),
		sorted: make([]Bank, 0, len(banks)),
	}

	for _, b := range banks {
		if _, ok := r.byISPB[b.ISPB]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateISPB, b.ISPB)
		}

		r.byISPB[b.ISPB] = b
		r.sorted = append(r.sorted, b)
	}

	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].ISPB < r.sorted[j].ISPB })

	return r, nil
}

// LoadEmbedded returns the Registry built from the table shipped with the binary.
func LoadEmbedded() (*Registry, error) {
	return Load(embeddedBanks)
}

// Lookup returns the bank for the given ISPB code.
func (r *Registry) Lookup(ispb string) (Bank, bool) {
	b, ok := r.byISPB[ispb]
	return b, ok
}

// All returns a copy of all banks ordered by ISPB.
func (r *Registry) All() []Bank {
	out := make([]Bank, len(r.sorted))
	copy(out, r.sorted)

	return out
}
