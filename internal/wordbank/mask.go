package wordbank

import "strings"

// Mask renders the client-safe display form of word: one underscore per
// non-space character, spaces preserved, characters joined with a single
// space — e.g. "ice cream" -> "_ _ _   _ _ _ _ _". Grounded on the
// teacher's utils.GetMaskedWord, rewritten to build the correct rune
// slice up front instead of indexing into an unallocated slice.
func Mask(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(word)
	parts := make([]string, len(runes))
	for i, c := range runes {
		if c == ' ' {
			parts[i] = " "
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

// HintOffsets returns the deterministic letter-reveal order for a word of
// the given length: offsets 2, 6, 10, ... first, then 3, 7, 11, ...,
// then 1, 5, 9, ..., then 0, 4, 8, .... Only offsets within range are
// included. No caller in the server reveals hints during a round, and
// settings.hints is not consulted here; this function is pure.
func HintOffsets(length int) []int {
	passes := [][2]int{{2, 4}, {3, 4}, {1, 4}, {0, 4}}
	offsets := make([]int, 0, length)
	seen := make(map[int]struct{}, length)
	for _, pass := range passes {
		start, step := pass[0], pass[1]
		for o := start; o < length; o += step {
			if _, dup := seen[o]; dup {
				continue
			}
			seen[o] = struct{}{}
			offsets = append(offsets, o)
		}
	}
	return offsets
}

// RevealHints applies the first n offsets of HintOffsets(len(word)) onto
// the masked form of word, substituting the underscore at each revealed
// offset with the real character. Non-space characters only ever occupy
// even positions of Mask's output spacing, so this operates on the raw
// word runes and re-masks rather than patching the joined string.
func RevealHints(word string, n int) string {
	runes := []rune(word)
	offsets := HintOffsets(len(runes))
	if n > len(offsets) {
		n = len(offsets)
	}
	revealed := make(map[int]struct{}, n)
	for _, o := range offsets[:n] {
		revealed[o] = struct{}{}
	}

	parts := make([]string, len(runes))
	for i, c := range runes {
		_, isRevealed := revealed[i]
		switch {
		case c == ' ':
			parts[i] = " "
		case isRevealed:
			parts[i] = string(c)
		default:
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}
