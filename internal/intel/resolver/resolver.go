package resolver

import (
	"math"
	"sort"
	"strings"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/ner"

	"github.com/xrash/smetrics"
)

// Resolution is the outcome of mapping one mention to a symbol. An
// unresolved mention (Matched=false) is a normal outcome, never an error.
type Resolution struct {
	Mention ner.Mention
	Symbol  string
	Matched bool
	Method  string
	Score   float64
}

// Corporate suffixes stripped during normalization so "Tata Motors Ltd."
// and "Tata Motors" index identically.
var corporateSuffixes = map[string]struct{}{
	"ltd": {}, "limited": {}, "inc": {}, "corp": {}, "corporation": {},
	"co": {}, "company": {}, "pvt": {}, "private": {},
}

var punctReplacer = strings.NewReplacer(
	".", " ", ",", " ", "'", "", "’", "", "\"", " ", "(", " ", ")", " ",
	"-", " ", ":", " ", ";", " ", "!", " ", "?", " ",
)

// Normalize lowercases, strips punctuation and trailing corporate suffixes,
// and collapses whitespace. Applied identically at index build and lookup.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = punctReplacer.Replace(s)
	fields := strings.Fields(s)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		if _, ok := corporateSuffixes[last]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

type aliasEntry struct {
	alias  string
	symbol *entity.Symbol
}

// Resolver maps mentions to canonical symbols via a normalized alias index
// with a Jaro-Winkler fuzzy fallback.
type Resolver struct {
	exact     map[string][]*entity.Symbol
	entries   []aliasEntry
	threshold float64
}

// New builds a resolver over the given symbol master records. threshold is
// the minimum Jaro-Winkler similarity for a fuzzy match.
func New(symbols []entity.Symbol, threshold float64) *Resolver {
	r := &Resolver{
		exact:     make(map[string][]*entity.Symbol),
		threshold: threshold,
	}
	for i := range symbols {
		sym := &symbols[i]
		seen := make(map[string]struct{})
		keys := append([]string{sym.Code, sym.Name}, sym.Aliases...)
		for _, key := range keys {
			norm := Normalize(key)
			if norm == "" {
				continue
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			r.exact[norm] = appendUniqueSymbol(r.exact[norm], sym)
			r.entries = append(r.entries, aliasEntry{alias: norm, symbol: sym})
		}
	}
	// Deterministic fuzzy scan order regardless of input ordering.
	sort.Slice(r.entries, func(i, j int) bool {
		if r.entries[i].alias != r.entries[j].alias {
			return r.entries[i].alias < r.entries[j].alias
		}
		return r.entries[i].symbol.Code < r.entries[j].symbol.Code
	})
	return r
}

func appendUniqueSymbol(list []*entity.Symbol, sym *entity.Symbol) []*entity.Symbol {
	for _, s := range list {
		if s.Code == sym.Code {
			return list
		}
	}
	return append(list, sym)
}

// Resolve maps one mention to a symbol: exact alias lookup first, then
// fuzzy. Ambiguity that market-cap rank cannot break leaves the mention
// unresolved.
func (r *Resolver) Resolve(m ner.Mention) Resolution {
	res := Resolution{Mention: m}

	norm := Normalize(m.Raw)
	if norm == "" {
		return res
	}

	if candidates, ok := r.exact[norm]; ok {
		if winner := pickByMarketCap(candidates); winner != nil {
			res.Symbol = winner.Code
			res.Matched = true
			res.Method = entity.ResolveMethodExact
			res.Score = 1.0
		}
		return res
	}

	best := 0.0
	var bestSymbols []*entity.Symbol
	for _, e := range r.entries {
		score := smetrics.JaroWinkler(norm, e.alias, 0.7, 4)
		switch {
		case score > best:
			best = score
			bestSymbols = []*entity.Symbol{e.symbol}
		case score == best && best > 0:
			bestSymbols = appendUniqueSymbol(bestSymbols, e.symbol)
		}
	}
	if best < r.threshold {
		return res
	}
	if winner := pickByMarketCap(bestSymbols); winner != nil {
		res.Symbol = winner.Code
		res.Matched = true
		res.Method = entity.ResolveMethodFuzzy
		res.Score = best
	}
	return res
}

// ResolveAll resolves every mention, preserving input order.
func (r *Resolver) ResolveAll(mentions []ner.Mention) []Resolution {
	out := make([]Resolution, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, r.Resolve(m))
	}
	return out
}

// pickByMarketCap breaks a tie between candidate symbols: the lowest
// market-cap rank (largest company) wins. A rank of 0 means unranked. Ties
// that survive are ambiguous and return nil.
func pickByMarketCap(candidates []*entity.Symbol) *entity.Symbol {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}
	bestRank := math.MaxInt
	var winner *entity.Symbol
	tied := false
	for _, c := range candidates {
		rank := c.MarketCapRank
		if rank <= 0 {
			rank = math.MaxInt
		}
		switch {
		case rank < bestRank:
			bestRank = rank
			winner = c
			tied = false
		case rank == bestRank:
			tied = true
		}
	}
	if tied || bestRank == math.MaxInt {
		return nil
	}
	return winner
}
