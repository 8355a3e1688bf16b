// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package models

// GenreUnknown is the id every unrecognized genre name maps to. Preferences
// stored under it never bias recommendations.
const GenreUnknown = 0

// genreIDs is the closed genre vocabulary. Adding a genre means adding it
// here and to genreNames below; ids are stable and must never be reused.
var genreIDs = map[string]int{
	"Unknown":   GenreUnknown,
	"Sci-Fi":    1,
	"Crime":     2,
	"Animation": 3,
	"Action":    4,
	"Drama":     5,
	"Comedy":    6,
}

var genreNames = map[int]string{
	1: "Sci-Fi",
	2: "Crime",
	3: "Animation",
	4: "Action",
	5: "Drama",
	6: "Comedy",
}

// GenreID resolves a genre name to its id. Names outside the vocabulary
// resolve to GenreUnknown rather than failing, so preference writes never
// reject a payload over an unrecognized genre.
func GenreID(name string) int {
	if id, ok := genreIDs[name]; ok {
		return id
	}
	return GenreUnknown
}

// GenreName resolves a genre id to its display name. The second return is
// false for GenreUnknown and for ids outside the vocabulary; callers render
// only ids that resolve.
func GenreName(id int) (string, bool) {
	name, ok := genreNames[id]
	return name, ok
}

// GenreIDs maps genre names to ids for a preference write. Order is
// preserved and unrecognized names become GenreUnknown.
func GenreIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		ids = append(ids, GenreID(name))
	}
	return ids
}

// GenreNamesOf maps stored genre ids back to names for a preference read,
// silently dropping ids that no longer resolve. The result is never nil so
// it encodes as an empty JSON array.
func GenreNamesOf(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := GenreName(id); ok {
			names = append(names, name)
		}
	}
	return names
}
