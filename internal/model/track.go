package model

import (
	"fmt"
	"strings"
)

// TrackKind discriminates the variants of Track.
type TrackKind int

const (
	KindVideo TrackKind = iota
	KindAudio
	KindSubtitle
	KindAttachment
)

// TrackKinds lists every kind in canonical track order.
var TrackKinds = []TrackKind{KindVideo, KindAudio, KindSubtitle, KindAttachment}

func (k TrackKind) String() string {
	switch k {
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	case KindSubtitle:
		return "Subtitle"
	case KindAttachment:
		return "Attachment"
	default:
		return fmt.Sprintf("TrackKind(%d)", int(k))
	}
}

// ParseTrackKind maps a case-insensitive name ("video", "audio", ...) to a kind.
func ParseTrackKind(s string) (TrackKind, error) {
	for _, k := range TrackKinds {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown track kind %q", s)
}

const (
	// DefaultLanguage is used when a stream carries no language tag.
	DefaultLanguage = "und"
	// DefaultTitle is used when a stream carries no title tag.
	DefaultTitle = "default"
)

// Track is one elementary stream of a container.
//
// Index is the stream index inside the container and is what ffmpeg -map
// refers to; the position of a Track in a slice is for display only.
// FrameRate is meaningful for video tracks, Channels for audio tracks.
type Track struct {
	Kind     TrackKind
	Index    int
	Codec    string
	Language string
	Title    string
	Duration float64 // seconds, 0 when unknown
	Keep     bool

	FrameRate float64
	Channels  int
}

func newTrack(kind TrackKind, index int, codec, language, title string, duration float64) Track {
	if language == "" {
		language = DefaultLanguage
	}
	if title == "" {
		title = DefaultTitle
	}
	return Track{
		Kind:     kind,
		Index:    index,
		Codec:    codec,
		Language: language,
		Title:    title,
		Duration: duration,
		Keep:     true,
	}
}

// NewVideoTrack builds a video track.
func NewVideoTrack(index int, codec, language, title string, duration, frameRate float64) Track {
	t := newTrack(KindVideo, index, codec, language, title, duration)
	t.FrameRate = frameRate
	return t
}

// NewAudioTrack builds an audio track.
func NewAudioTrack(index int, codec, language, title string, duration float64, channels int) Track {
	t := newTrack(KindAudio, index, codec, language, title, duration)
	t.Channels = channels
	return t
}

// NewSubtitleTrack builds a subtitle track.
func NewSubtitleTrack(index int, codec, language, title string, duration float64) Track {
	return newTrack(KindSubtitle, index, codec, language, title, duration)
}

// NewAttachmentTrack builds an attachment track. Attachments never carry a
// language or a duration.
func NewAttachmentTrack(index int, codec, title string) Track {
	return newTrack(KindAttachment, index, codec, DefaultLanguage, title, 0)
}

// IsH265 reports whether a video track is already HEVC encoded.
func (t Track) IsH265() bool {
	if t.Kind != KindVideo {
		return false
	}
	c := strings.ToLower(t.Codec)
	return strings.Contains(c, "hevc") || strings.Contains(c, "h265")
}

func (t Track) String() string {
	base := fmt.Sprintf("%d; codec=%s, lang=%s, title=%q, duration=%.2f", t.Index, t.Codec, t.Language, t.Title, t.Duration)
	switch t.Kind {
	case KindVideo:
		return fmt.Sprintf("VideoTrack(%s, fps=%.2f)", base, t.FrameRate)
	case KindAudio:
		return fmt.Sprintf("AudioTrack(%s, channels=%d)", base, t.Channels)
	default:
		return fmt.Sprintf("%sTrack(%s)", t.Kind, base)
	}
}
