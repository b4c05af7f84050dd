package media

import (
	"strings"

	"trimmer/internal/model"
)

// MatchAll is the filter token that keeps every track.
const MatchAll = "*"

// FilterTracks re-decides Keep for every track of kind: a track is kept when
// any token is found, case-insensitively, in its language, title or codec.
// Tracks of other kinds are left alone. With no tokens every track of kind
// is dropped.
func FilterTracks(containers []*Container, kind model.TrackKind, tokens []string) {
	for _, c := range containers {
		for i := range c.tracks {
			t := &c.tracks[i]
			if t.Kind != kind {
				continue
			}
			t.Keep = matchesAny(*t, tokens)
		}
	}
}

func matchesAny(t model.Track, tokens []string) bool {
	lang := strings.ToLower(t.Language)
	title := strings.ToLower(t.Title)
	cd := strings.ToLower(t.Codec)
	for _, tok := range tokens {
		if tok == MatchAll {
			return true
		}
		tok = strings.ToLower(tok)
		if strings.Contains(lang, tok) || strings.Contains(title, tok) || strings.Contains(cd, tok) {
			return true
		}
	}
	return false
}

// KeepNone marks every track of every container as dropped. Tracks start
// out kept after Parse.
func KeepNone(containers []*Container) {
	for _, c := range containers {
		for i := range c.tracks {
			c.tracks[i].Keep = false
		}
	}
}
