package suggest

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// tokenize lowercases s and returns its word tokens of two or more
// letters, digits or underscores.
func tokenize(s string) []string {
	return tokenRE.FindAllString(strings.ToLower(s), -1)
}

// sparse is a document vector: term index to weight.
type sparse map[int]float64

func (a sparse) dotDense(d []float64) float64 {
	var sum float64
	for i, v := range a {
		sum += v * d[i]
	}
	return sum
}

// vectorizer is a fitted TF-IDF transform: raw term counts scaled by a
// smoothed inverse document frequency, rows normalised to unit length.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func fitVectorizer(docs []string) (*vectorizer, []sparse) {
	df := map[string]int{}
	tokenized := make([][]string, len(docs))
	for i, d := range docs {
		toks := tokenize(d)
		tokenized[i] = toks
		seen := map[string]bool{}
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &vectorizer{vocab: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(docs))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	rows := make([]sparse, len(docs))
	for i, toks := range tokenized {
		rows[i] = v.vector(toks)
	}
	return v, rows
}

func (v *vectorizer) transform(doc string) sparse {
	return v.vector(tokenize(doc))
}

func (v *vectorizer) vector(tokens []string) sparse {
	out := sparse{}
	for _, t := range tokens {
		if idx, ok := v.vocab[t]; ok {
			out[idx]++
		}
	}
	var norm float64
	for idx, tf := range out {
		w := tf * v.idf[idx]
		out[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range out {
			out[idx] /= norm
		}
	}
	return out
}
