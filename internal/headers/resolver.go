// Package headers maps arbitrary spreadsheet column names onto the canonical
// field set.
package headers

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Method records how a header was matched to a field.
type Method string

const (
	MethodExact Method = "exact"
	MethodAlias Method = "alias"
	MethodFuzzy Method = "fuzzy"
)

// Match is one resolved field.
type Match struct {
	Field  string `json:"field"`
	Header string `json:"header"`
	Method Method `json:"method"`
}

// Resolution is the outcome of resolving one header row.
type Resolution struct {
	Columns     map[string]string `json:"columns"`
	Matches     []Match           `json:"matches"`
	Missing     []string          `json:"missing"`
	Suggestions map[string]string `json:"suggestions,omitempty"`
}

// Header returns the literal header mapped to field, or "".
func (r Resolution) Header(field string) string {
	return r.Columns[field]
}

// Has reports whether field was resolved.
func (r Resolution) Has(field string) bool {
	_, ok := r.Columns[field]
	return ok
}

// Fuzzy returns the matches that only the fuzzy fallback produced.
func (r Resolution) Fuzzy() []Match {
	var out []Match
	for _, m := range r.Matches {
		if m.Method == MethodFuzzy {
			out = append(out, m)
		}
	}
	return out
}

// Resolver holds a normalized alias table. It is immutable after construction
// and safe for concurrent use.
type Resolver struct {
	aliases map[string]map[string]struct{}
}

// NewResolver builds a resolver from an alias table (field → synonyms).
func NewResolver(aliases map[string][]string) *Resolver {
	r := &Resolver{aliases: make(map[string]map[string]struct{}, len(aliases))}
	for field, list := range aliases {
		set := make(map[string]struct{}, len(list))
		for _, a := range list {
			if n := compact(Normalize(a)); n != "" {
				set[n] = struct{}{}
			}
		}
		r.aliases[field] = set
	}
	return r
}

// Default returns a resolver over the built-in alias table.
func Default() *Resolver {
	return NewResolver(defaultAliases)
}

// LoadAliases reads a YAML file of extra synonyms and merges it over the
// built-in table:
//
//	customer: [apotheek, ziekenhuis]
//	gross: [brutowaarde]
func LoadAliases(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	merged := DefaultAliases()
	for field, list := range extra {
		merged[field] = append(merged[field], list...)
	}
	return NewResolver(merged), nil
}

// Resolve maps each wanted canonical field to one header. Exact matches are
// assigned first for all fields, then aliases, then the fuzzy fallback, and a
// header is never assigned twice.
func (r *Resolver) Resolve(headerRow []string, fields []string) Resolution {
	res := Resolution{Columns: make(map[string]string, len(fields))}

	normalized := make([]string, len(headerRow))
	for i, h := range headerRow {
		normalized[i] = Normalize(h)
	}
	claimed := make([]bool, len(headerRow))

	assign := func(field string, idx int, method Method) {
		claimed[idx] = true
		res.Columns[field] = headerRow[idx]
		res.Matches = append(res.Matches, Match{Field: field, Header: headerRow[idx], Method: method})
	}

	for _, field := range fields {
		want := compact(Normalize(field))
		for i, n := range normalized {
			if !claimed[i] && n != "" && compact(n) == want {
				assign(field, i, MethodExact)
				break
			}
		}
	}

	for _, field := range fields {
		if res.Has(field) {
			continue
		}
		set := r.aliases[field]
		for i, n := range normalized {
			if claimed[i] || n == "" {
				continue
			}
			if _, ok := set[compact(n)]; ok {
				assign(field, i, MethodAlias)
				break
			}
		}
	}

	for _, field := range fields {
		if res.Has(field) {
			continue
		}
		words := significantWords(Normalize(field))
		if len(words) == 0 {
			continue
		}
		best, bestLen := -1, 0
		for i, n := range normalized {
			if claimed[i] || n == "" || !containsAll(n, words) {
				continue
			}
			if l := len(strings.Fields(n)); best < 0 || l < bestLen {
				best, bestLen = i, l
			}
		}
		if best >= 0 {
			assign(field, best, MethodFuzzy)
		}
	}

	var free []string
	for i, n := range normalized {
		if !claimed[i] && n != "" {
			free = append(free, n)
		}
	}
	for _, field := range fields {
		if res.Has(field) {
			continue
		}
		res.Missing = append(res.Missing, field)
		if s := suggest(free, headerRow, normalized, field); s != "" {
			if res.Suggestions == nil {
				res.Suggestions = make(map[string]string)
			}
			res.Suggestions[field] = s
		}
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		return indexOf(fields, res.Matches[i].Field) < indexOf(fields, res.Matches[j].Field)
	})
	return res
}

// suggest returns the unclaimed literal header closest to field, for "did you
// mean" hints on missing columns. It never assigns anything.
func suggest(free, headerRow, normalized []string, field string) string {
	if len(free) == 0 {
		return ""
	}
	cm := closestmatch.New(free, []int{2, 3})
	best := cm.Closest(Normalize(field))
	if best == "" {
		return ""
	}
	for i, n := range normalized {
		if n == best {
			return headerRow[i]
		}
	}
	return ""
}

// foldDiacritics builds a fresh chain per call; transform chains carry state.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lowercases s, folds diacritics, turns punctuation into spaces and
// collapses whitespace: "Bruto-omzet (€)" → "bruto omzet".
func Normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics(), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// containsAll reports whether every word prefixes some token of header.
func containsAll(header string, words []string) bool {
	tokens := strings.Fields(header)
	for _, w := range words {
		found := false
		for _, t := range tokens {
			if strings.HasPrefix(t, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return len(list)
}
