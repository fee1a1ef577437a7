package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultSearchLimit = 10
	// Jaro-Winkler score below which a title is not considered a match.
	searchThreshold = 0.72
)

var lowerCaser = cases.Lower(language.Und)

// Search ranks cached titles against the query with Jaro-Winkler
// similarity, best match first. It only consults the local cache; the
// authoritative provider search is a separate concern.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	movies, err := s.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("search cache: %w", err)
	}

	normQuery := lowerCaser.String(query)

	type match struct {
		movie *Movie
		score float32
	}
	var matches []match
	for _, m := range movies {
		title := lowerCaser.String(m.Title)
		score, err := edlib.StringsSimilarity(normQuery, title, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		// Substring hits rank as strong matches even when edit distance is poor
		// (e.g. a one-word query against a long title).
		if strings.Contains(title, normQuery) && score < 0.9 {
			score = 0.9
		}
		if score >= searchThreshold {
			matches = append(matches, match{movie: m, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*Movie, len(matches))
	for i, m := range matches {
		out[i] = m.movie
	}
	return out, nil
}
