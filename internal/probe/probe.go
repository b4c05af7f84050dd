// Package probe reads stream and container information with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"trimmer/internal/metrics"
	"trimmer/internal/model"
	"trimmer/internal/util"
)

var (
	// ErrProbe wraps any ffprobe failure: non-zero exit or unreadable output.
	ErrProbe = errors.New("probe failed")
	// ErrNoTracks is returned when a file has no streams at all.
	ErrNoTracks = errors.New("no tracks found")
	// ErrNoMetadata is returned when ffprobe reports no container tags.
	ErrNoMetadata = errors.New("no metadata")
)

type ffprobeStream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	Duration   string            `json:"duration"`
	RFrameRate string            `json:"r_frame_rate"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

type ffprobeStreams struct {
	Streams []ffprobeStream `json:"streams"`
}

// selector is one ffprobe -select_streams pass.
type selector struct {
	spec  string
	kind  model.TrackKind
	extra string // additional stream entries
}

// Video uses "V" so attached pictures (cover art) are not reported as video.
var selectors = []selector{
	{spec: "V", kind: model.KindVideo, extra: "r_frame_rate,"},
	{spec: "a", kind: model.KindAudio, extra: "channels,"},
	{spec: "s", kind: model.KindSubtitle},
	{spec: "d", kind: model.KindAttachment},
}

// Tracks probes file and returns its streams ordered video, audio,
// subtitle, attachment. Any failing ffprobe pass fails the whole probe.
func Tracks(ctx context.Context, r util.CmdRunner, ffprobePath, file string, logger zerolog.Logger) ([]model.Track, error) {
	var tracks []model.Track
	for _, sel := range selectors {
		args := []string{
			"-v", "error",
			"-select_streams", sel.spec,
			"-show_entries", "stream=" + sel.extra + "duration,index,codec_name:stream_tags=language,duration,title",
			"-of", "json",
			file,
		}
		out, err := run(ctx, r, ffprobePath, args)
		if err != nil {
			metrics.ProbeErrors.Inc()
			return nil, fmt.Errorf("%w: %s streams of %s: %v", ErrProbe, sel.kind, file, err)
		}

		var data ffprobeStreams
		if err := json.Unmarshal(out, &data); err != nil {
			metrics.ProbeErrors.Inc()
			return nil, fmt.Errorf("%w: decode %s streams of %s: %v", ErrProbe, sel.kind, file, err)
		}

		for _, s := range data.Streams {
			log := logger.With().Str("file", file).Int("stream", s.Index).Str("type", sel.spec).Logger()
			tracks = append(tracks, buildTrack(sel.kind, s, log))
		}
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTracks, file)
	}
	return tracks, nil
}

func buildTrack(kind model.TrackKind, s ffprobeStream, log zerolog.Logger) model.Track {
	title := tag(s, "title", log)
	language := tag(s, "language", log)
	duration := streamDuration(s, log)

	switch kind {
	case model.KindVideo:
		fps, ok := ParseFrameRate(s.RFrameRate)
		if !ok {
			log.Warn().Str("r_frame_rate", s.RFrameRate).Msg("invalid frame rate")
		}
		return model.NewVideoTrack(s.Index, s.CodecName, language, title, duration, fps)
	case model.KindAudio:
		return model.NewAudioTrack(s.Index, s.CodecName, language, title, duration, s.Channels)
	case model.KindSubtitle:
		return model.NewSubtitleTrack(s.Index, s.CodecName, language, title, duration)
	default:
		return model.NewAttachmentTrack(s.Index, s.CodecName, title)
	}
}

// tag returns the stream tag, logging when it is absent. The model applies
// defaults for empty values.
func tag(s ffprobeStream, name string, log zerolog.Logger) string {
	if s.Tags == nil {
		log.Warn().Str("tag", name).Msg("no tags in stream")
		return ""
	}
	v, ok := s.Tags[name]
	if !ok {
		log.Warn().Str("tag", name).Msg("missing stream tag")
		return ""
	}
	return v
}

// streamDuration prefers the Matroska DURATION tag, then the numeric
// duration field, then 0.
func streamDuration(s ffprobeStream, log zerolog.Logger) float64 {
	if v, ok := lookupFold(s.Tags, "DURATION"); ok {
		d, ok := ParseDuration(v)
		if !ok {
			log.Warn().Str("duration", v).Msg("invalid duration")
		}
		return d
	}
	if s.Duration != "" {
		d, err := strconv.ParseFloat(s.Duration, 64)
		if err == nil {
			return d
		}
		log.Warn().Str("duration", s.Duration).Msg("invalid duration")
		return 0
	}
	log.Warn().Msg("no duration in stream")
	return 0
}

func lookupFold(m map[string]string, key string) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Metadata returns the container-level tags in document order.
// A file without tags yields ErrNoMetadata, which callers usually treat as
// empty metadata.
func Metadata(ctx context.Context, r util.CmdRunner, ffprobePath, file string) (*model.Metadata, error) {
	out, err := run(ctx, r, ffprobePath, []string{"-v", "error", "-show_entries", "format_tags", "-of", "json", file})
	if err != nil {
		metrics.ProbeErrors.Inc()
		return nil, fmt.Errorf("%w: metadata of %s: %v", ErrProbe, file, err)
	}

	var data struct {
		Format *struct {
			Tags json.RawMessage `json:"tags"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &data); err != nil {
		metrics.ProbeErrors.Inc()
		return nil, fmt.Errorf("%w: decode metadata of %s: %v", ErrProbe, file, err)
	}
	if data.Format == nil {
		return nil, fmt.Errorf("%w: no format section in %s", ErrNoMetadata, file)
	}
	if len(data.Format.Tags) == 0 || string(data.Format.Tags) == "null" {
		return nil, fmt.Errorf("%w: no tags in %s", ErrNoMetadata, file)
	}

	md := model.NewMetadata()
	if err := json.Unmarshal(data.Format.Tags, md); err != nil {
		return nil, fmt.Errorf("%w: decode tags of %s: %v", ErrProbe, file, err)
	}
	return md, nil
}

// run executes one ffprobe pass and returns its stdout only. Diagnostics on
// stderr at exit 0 are ignored; on failure they become the error text.
func run(ctx context.Context, r util.CmdRunner, ffprobePath string, args []string) ([]byte, error) {
	res, err := r.Run(ctx, util.CmdSpec{Path: ffprobePath, Args: args, CaptureStdout: true})
	if err != nil && !res.Spawned() {
		return nil, err
	}
	if res.Code != 0 || err != nil {
		return nil, fmt.Errorf("exit %d: %s", res.Code, strings.TrimSpace(res.Combined()))
	}
	return res.Stdout, nil
}
