// Package playlists selects playlists by keyword and prepares their track lists.
package playlists

import (
	"sort"
	"strings"
	"unicode"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

func words(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		out[w] = true
	}
	return out
}

func matchesAny(ws map[string]bool, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(k, " ") {
			// Multi-word keywords match when every word is present.
			if containsPhrase(ws, k) {
				return true
			}
			continue
		}
		if ws[k] {
			return true
		}
	}
	return false
}

func containsPhrase(ws map[string]bool, phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		if !ws[w] {
			return false
		}
	}
	return true
}

// FilterByKeyword keeps playlists whose name or description contains any
// keyword as a whole word, ignoring case, unless an exclude word matches too.
// With no keywords every playlist not excluded is kept.
func FilterByKeyword(pls []models.Playlist, keywords, exclude []string) []models.Playlist {
	var out []models.Playlist
	for _, p := range pls {
		ws := words(p.Name + " " + p.Description)
		if len(keywords) > 0 && !matchesAny(ws, keywords) {
			continue
		}
		if matchesAny(ws, exclude) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortByTrackCount orders playlists by descending track count, then by name.
func SortByTrackCount(pls []models.Playlist) {
	sort.SliceStable(pls, func(i, j int) bool {
		if pls[i].TrackTotal != pls[j].TrackTotal {
			return pls[i].TrackTotal > pls[j].TrackTotal
		}
		return pls[i].Name < pls[j].Name
	})
}

// Range returns up to n playlists starting at start. n <= 0 means all remaining.
func Range(pls []models.Playlist, start, n int) []models.Playlist {
	if start < 0 {
		start = 0
	}
	if start >= len(pls) {
		return nil
	}
	end := len(pls)
	if n > 0 && start+n < end {
		end = start + n
	}
	return pls[start:end]
}

// DedupeByID drops playlists already seen, keeping the first occurrence.
func DedupeByID(pls []models.Playlist) []models.Playlist {
	seen := make(map[string]bool, len(pls))
	var out []models.Playlist
	for _, p := range pls {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// DedupeTracks drops repeated tracks, comparing name and artists without case.
// Tracks sharing an ID are also duplicates.
func DedupeTracks(tracks []models.TrackRef) []models.TrackRef {
	seenKey := make(map[string]bool, len(tracks))
	seenID := make(map[string]bool, len(tracks))
	var out []models.TrackRef
	for _, t := range tracks {
		key := strings.ToLower(t.Name + "\x00" + t.ArtistNames())
		if seenKey[key] || (t.ID != "" && seenID[t.ID]) {
			continue
		}
		seenKey[key] = true
		seenID[t.ID] = true
		out = append(out, t)
	}
	return out
}
