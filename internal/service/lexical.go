package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"docqa/internal/domain"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// lexicalSearch ranks chunks by the Ochiai coefficient of their word sets with the query.
func (s *RAGService) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := toTokenSet(query)
	results := make([]domain.SearchResult, len(s.chunks))
	for i, ch := range s.chunks {
		results[i] = domain.SearchResult{Chunk: ch, Score: overlapOchiai(qset, toTokenSet(ch.Text))}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai returns |A∩B| / sqrt(|A||B|).
func overlapOchiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
