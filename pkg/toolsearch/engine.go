// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package toolsearch

import (
	"regexp"
	"sort"
	"strings"
)

// Mode selects how Engine.Search matches a query against the index.
type Mode int

const (
	ModeRegex Mode = iota
	ModeBM25
)

// Hit is one matched index entry and the score it matched with.
type Hit struct {
	Entry IndexEntry
	Score float64
}

// Engine searches a tool Index for a deferred tool's qualified name.
type Engine struct {
	mode Mode
}

// NewEngine builds an Engine in the given mode.
func NewEngine(mode Mode) *Engine { return &Engine{mode: mode} }

// NewRegexEngine builds a regex-backed Engine.
func NewRegexEngine() *Engine { return NewEngine(ModeRegex) }

// NewBM25Engine builds a BM25-ranked Engine.
func NewBM25Engine() *Engine { return NewEngine(ModeBM25) }

// Mode returns this engine's search mode.
func (e *Engine) Mode() Mode { return e.mode }

// Search returns up to limit hits for query against index, in the
// order the engine's mode produces: insertion order for regex (a
// boolean match, score 1.0), descending score for BM25. An empty
// query or empty index always yields no hits.
func (e *Engine) Search(index *Index, query string, limit int) []Hit {
	if query == "" || index.IsEmpty() {
		return nil
	}
	switch e.mode {
	case ModeBM25:
		return e.searchBM25(index, query, limit)
	default:
		return e.searchRegex(index, query, limit)
	}
}

func (e *Engine) searchRegex(index *Index, pattern string, limit int) []Hit {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}

	var hits []Hit
	for _, entry := range index.Entries() {
		if re.MatchString(entry.SearchableText()) {
			hits = append(hits, Hit{Entry: entry, Score: 1.0})
		}
	}
	return truncate(hits, limit)
}

func (e *Engine) searchBM25(index *Index, query string, limit int) []Hit {
	queryTerms := strings.Fields(query)
	if len(queryTerms) == 0 {
		return nil
	}

	entries := index.Entries()
	totalWords := 0
	for _, entry := range entries {
		totalWords += len(strings.Fields(entry.SearchableText()))
	}
	avgDocLen := float64(totalWords) / float64(maxInt(index.Len(), 1))

	var hits []Hit
	for _, entry := range entries {
		score := bm25Score(entry.SearchableText(), queryTerms, avgDocLen)
		if score > 0 {
			hits = append(hits, Hit{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, limit)
}

// truncate mirrors Vec::truncate: a non-positive limit yields no
// hits at all, matching the original's unconditional truncate(limit)
// rather than treating zero as "unlimited".
func truncate(hits []Hit, limit int) []Hit {
	if limit <= 0 {
		return nil
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// bm25Score computes a simplified Okapi BM25 score (idf fixed at 1.0,
// since a tool index has no useful document-frequency statistics to
// discount against) with the conventional k1=1.2, b=0.75 constants.
func bm25Score(text string, queryTerms []string, avgDocLen float64) float64 {
	const k1 = 1.2
	const b = 0.75

	textLower := strings.ToLower(text)
	words := strings.Fields(textLower)
	docLen := float64(len(words))

	var score float64
	for _, term := range queryTerms {
		termLower := strings.ToLower(term)
		var tf float64
		for _, w := range words {
			if strings.Contains(w, termLower) {
				tf++
			}
		}
		if tf > 0 {
			const idf = 1.0
			numerator := tf * (k1 + 1)
			denominator := tf + k1*(1-b+b*(docLen/maxFloat(avgDocLen, 1.0)))
			score += idf * (numerator / denominator)
		}
	}
	return score
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
