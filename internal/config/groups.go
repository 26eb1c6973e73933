package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jszwec/csvutil"
)

// Groups maps a group name to its member country names.
type Groups map[string][]string

// OECD lists the 37 member countries by their dataset location names.
var OECD = []string{
	"Israel", "Australia", "Austria", "Belgium", "Canada", "Chile", "Colombia", "Czech Republic", "Denmark",
	"Estonia", "Finland", "France", "Germany", "Greece", "Hungary", "Iceland", "Ireland",
	"Italy", "Japan", "South Korea", "Latvia", "Lithuania", "Luxembourg", "Mexico", "Netherlands",
	"New Zealand", "Norway", "Poland", "Portugal", "Slovakia", "Slovenia", "Spain", "Sweden",
	"Switzerland", "Turkey", "United Kingdom", "United States",
}

// DefaultGroups returns a fresh copy of the built-in groups.
func DefaultGroups() Groups {
	return Groups{"OECD": append([]string(nil), OECD...)}
}

// Names returns the group names, sorted.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for n := range g {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the members of a group.
func (g Groups) Lookup(name string) ([]string, error) {
	members, ok := g[name]
	if !ok {
		return nil, fmt.Errorf("unknown country group %q", name)
	}
	return members, nil
}

// Merge returns a new Groups with other's members appended to g's.
func (g Groups) Merge(other Groups) Groups {
	out := make(Groups, len(g)+len(other))
	for n, m := range g {
		out[n] = append([]string(nil), m...)
	}
	for n, m := range other {
		seen := make(map[string]bool, len(out[n]))
		for _, c := range out[n] {
			seen[c] = true
		}
		for _, c := range m {
			if !seen[c] {
				out[n] = append(out[n], c)
				seen[c] = true
			}
		}
	}
	return out
}

type groupRow struct {
	Group   string `csv:"group"`
	Country string `csv:"country"`
}

// ParseGroups decodes a CSV with "group" and "country" columns.
func ParseGroups(r io.Reader) (Groups, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err == io.EOF {
		return Groups{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create groups decoder: %w", err)
	}

	groups := make(Groups)
	for {
		var row groupRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode groups: %w", err)
		}
		if row.Group == "" || row.Country == "" {
			continue
		}
		groups[row.Group] = append(groups[row.Group], row.Country)
	}
	return groups, nil
}

// LoadGroupsFile reads a groups CSV from disk.
func LoadGroupsFile(path string) (Groups, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open groups file: %w", err)
	}
	defer f.Close()
	return ParseGroups(f)
}
