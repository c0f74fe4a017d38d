// Package wordbank implements the Word Engine component: pool
// composition, unbiased option generation, secrecy-preserving masking,
// and the hint reveal schedule. Grounded on the teacher's
// internal/utils/csv-words.go (CSV-backed word list, encoding/csv) and
// internal/utils.GenerateWordChoices, generalized to the spec's
// difficulty-free builtin-pool-plus-custom-words model.
package wordbank

import (
	_ "embed"
	"encoding/csv"
	"math/rand"
	"strings"
)

//go:embed words.csv
var builtinCSV string

// Builtin is the ~150 word server pool, loaded once at process start
// from the embedded CSV (first column, header row skipped, deduped).
// Immutable after init, per the spec's concurrency model.
var Builtin = loadBuiltin()

func loadBuiltin() []string {
	reader := csv.NewReader(strings.NewReader(builtinCSV))
	records, err := reader.ReadAll()
	if err != nil {
		// The embedded CSV is a build-time asset; a parse failure here is
		// a packaging bug, not a runtime condition to recover from.
		panic("wordbank: malformed embedded words.csv: " + err.Error())
	}

	seen := make(map[string]struct{}, len(records))
	words := make([]string, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) == 0 {
			continue
		}
		w := strings.ToLower(strings.TrimSpace(rec[0]))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// Pool composes the builtin word list with a room's custom words,
// deduplicated, as the sampling universe for that room.
func Pool(custom []string) []string {
	seen := make(map[string]struct{}, len(Builtin)+len(custom))
	pool := make([]string, 0, len(Builtin)+len(custom))
	for _, w := range Builtin {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	for _, w := range custom {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	return pool
}

// GenerateOptions samples up to three distinct words uniformly at random
// without replacement from pool, using a Fisher-Yates shuffle of a copy so
// every permutation of sampled words is equally likely — unlike the
// shuffle-via-comparator idiom the spec explicitly calls out as biased.
func GenerateOptions(pool []string) []string {
	n := 3
	if len(pool) < n {
		n = len(pool)
	}
	if n == 0 {
		return nil
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}
