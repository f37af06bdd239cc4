package match

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit.
const DefaultThreshold = 0.85

// Matcher tests relative paths ("Artist/Album") against a query.
type Matcher struct {
	query     string
	threshold float64
}

// New creates a matcher for query. A threshold of zero uses DefaultThreshold.
func New(query string, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{query: CleanName(query), threshold: threshold}
}

// Empty reports whether the query matches everything.
func (m *Matcher) Empty() bool {
	return m == nil || m.query == ""
}

// Score returns the best similarity between the query and any segment of
// relPath. A substring hit scores 1.
func (m *Matcher) Score(relPath string) float64 {
	if m.Empty() {
		return 1
	}

	var best float64
	for _, segment := range strings.Split(relPath, "/") {
		candidate := CleanName(segment)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, m.query) {
			return 1
		}
		score := float64(edlib.JaroWinklerSimilarity(m.query, candidate))
		if score > best {
			best = score
		}
	}
	return best
}

// Matches reports whether relPath matches the query.
func (m *Matcher) Matches(relPath string) bool {
	return m.Score(relPath) >= m.threshold
}
