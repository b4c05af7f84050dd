// Package media models a video file being trimmed: its probed streams,
// the encoder settings chosen for it, and the remux-then-commit cycle.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trimmer/internal/buildinfo"
	"trimmer/internal/codec"
	"trimmer/internal/commit"
	"trimmer/internal/encoder"
	"trimmer/internal/model"
	"trimmer/internal/probe"
	"trimmer/internal/util"
	"trimmer/internal/util/format"
	naming "trimmer/internal/util/media"
)

// SignatureTag is the container tag recording which trimmer build wrote a file.
const SignatureTag = "TRIMMER_VERSION"

var (
	// ErrUnsupportedContainer is returned for files whose extension is not in the catalog.
	ErrUnsupportedContainer = errors.New("unsupported container")
	// ErrNotParsed is returned by operations that need a successful Parse.
	ErrNotParsed = errors.New("container not parsed")
	// ErrInvalidSetting is returned for a preset, tune or profile the codec does not accept.
	ErrInvalidSetting = errors.New("invalid encoder setting")
)

// Container is one input file plus the choices made for it.
//
// A Container must not be mutated while Remux runs.
type Container struct {
	path string

	codec   codec.Codec
	preset  string
	tune    string
	profile string
	target  model.ContainerType

	tracks   []model.Track
	metadata *model.Metadata
	estimate Estimate
	parsed   bool

	runner    util.CmdRunner
	logger    zerolog.Logger
	signature string
}

// Option configures a Container.
type Option func(*Container)

// WithRunner sets the subprocess runner used for ffprobe and ffmpeg.
func WithRunner(r util.CmdRunner) Option {
	return func(c *Container) { c.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithSignature overrides the provenance tag written on Parse.
func WithSignature(s string) Option {
	return func(c *Container) { c.signature = s }
}

// New returns an unparsed Container for path encoding video with cd.
func New(path string, cd codec.Codec, opts ...Option) *Container {
	c := &Container{
		path:   path,
		runner: util.NewDefaultRunner(),
		logger: zerolog.Nop(),
	}
	c.SetCodec(cd)
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("file", path).Logger()
	return c
}

// Signature is the default provenance value: build version, Go runtime and
// the current UTC time.
func Signature(now time.Time) string {
	return fmt.Sprintf("%s (%s), %s", buildinfo.Version, buildinfo.Runtime(), now.UTC().Format("02-01-2006 15:04:05"))
}

func (c *Container) Path() string                       { return c.path }
func (c *Container) Codec() codec.Codec                 { return c.codec }
func (c *Container) Preset() string                     { return c.preset }
func (c *Container) Tune() string                       { return c.tune }
func (c *Container) Profile() string                    { return c.profile }
func (c *Container) ContainerType() model.ContainerType { return c.target }
func (c *Container) Estimate() Estimate                 { return c.estimate }
func (c *Container) Parsed() bool                       { return c.parsed }

// Tracks returns the probed tracks in canonical order.
func (c *Container) Tracks() []model.Track              { return c.tracks }

// Metadata returns the container tags, including the provenance tag.
func (c *Container) Metadata() *model.Metadata          { return c.metadata }

// SetCodec switches the encoder and resets preset, tune and profile to the
// encoder's preferred values.
func (c *Container) SetCodec(cd codec.Codec) {
	c.codec = cd
	c.preset = cd.PreferredPreset
	c.tune = cd.PreferredTune
	c.profile = cd.PreferredProfile
}

func (c *Container) SetPreset(p string) error {
	if !c.codec.HasPreset(p) {
		return fmt.Errorf("%w: preset %q for %s", ErrInvalidSetting, p, c.codec.Name)
	}
	c.preset = p
	return nil
}

func (c *Container) SetTune(t string) error {
	if len(c.codec.Tunes) == 0 && t == "" {
		c.tune = ""
		return nil
	}
	if !c.codec.HasTune(t) {
		return fmt.Errorf("%w: tune %q for %s", ErrInvalidSetting, t, c.codec.Name)
	}
	c.tune = t
	return nil
}

func (c *Container) SetProfile(p string) error {
	if !c.codec.HasProfile(p) {
		return fmt.Errorf("%w: profile %q for %s", ErrInvalidSetting, p, c.codec.Name)
	}
	c.profile = p
	return nil
}

// SetContainerType changes the output format. The committed file takes the
// new extension.
func (c *Container) SetContainerType(ct model.ContainerType) {
	c.target = ct
}

// SetKeep marks the track at position i (not stream index) as kept or dropped.
func (c *Container) SetKeep(i int, keep bool) error {
	if i < 0 || i >= len(c.tracks) {
		return fmt.Errorf("track %d out of range (have %d)", i, len(c.tracks))
	}
	c.tracks[i].Keep = keep
	return nil
}

// Title returns the container title tag.
func (c *Container) Title() (string, bool) {
	if c.metadata == nil {
		return "", false
	}
	return c.metadata.Get("title")
}

// SetTitle sets the container title tag. An empty title removes the tag.
// It requires a parsed container.
func (c *Container) SetTitle(title string) error {
	if !c.parsed {
		return ErrNotParsed
	}
	if title == "" {
		c.metadata.Delete("title")
		return nil
	}
	c.metadata.Set("title", title)
	return nil
}

// Parse probes the file. On failure the container stays unparsed.
func (c *Container) Parse(ctx context.Context, ffprobePath string) error {
	c.parsed = false

	ct, ok := model.ContainerTypeForFile(c.path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedContainer, c.path)
	}
	if c.target.Ext == "" {
		c.target = ct
	}

	md, err := probe.Metadata(ctx, c.runner, ffprobePath, c.path)
	if err != nil {
		c.logger.Warn().Err(err).Msg("unable to get container metadata")
		md = model.NewMetadata()
	}
	sig := c.signature
	if sig == "" {
		sig = Signature(time.Now())
	}
	md.Set(SignatureTag, sig)
	c.logger.Debug().Stringer("metadata", md).Msg("metadata")

	tracks, err := probe.Tracks(ctx, c.runner, ffprobePath, c.path, c.logger)
	if err != nil {
		return fmt.Errorf("unable to get list of tracks: %w", err)
	}
	for _, t := range tracks {
		c.logger.Debug().Stringer("track", t).Msg("track")
	}

	c.metadata = md
	c.tracks = tracks
	c.estimate = EstimateDuration(tracks, md, c.logger)
	c.parsed = true
	c.logger.Debug().Int64("frames", c.estimate.Frames).Msg("duration estimated")
	return nil
}

// TempOutput is where Remux writes before committing.
func (c *Container) TempOutput() string {
	return naming.TempOutputPath(c.path, c.target.Ext)
}

// Job describes the ffmpeg run Remux would perform.
func (c *Container) Job() (encoder.RemuxJob, error) {
	if !c.parsed {
		return encoder.RemuxJob{}, ErrNotParsed
	}
	return encoder.RemuxJob{
		Input:    c.path,
		Output:   c.TempOutput(),
		Metadata: c.metadata.Clone(),
		Tracks:   c.tracks,
		Codec:    c.codec,
		Preset:   c.preset,
		Tune:     c.tune,
		Profile:  c.profile,
	}, nil
}

// RemuxOptions are optional hooks for Remux.
type RemuxOptions struct {
	OnProgress func(frame int64, fps float64)
	OnState    func(encoder.State)
}

// Remux rewrites the file and commits the result: the original becomes a
// .bakN backup and the output takes its place. On ffmpeg failure the
// partial output is removed and the original is left untouched.
func (c *Container) Remux(ctx context.Context, ffmpegPath string, opts RemuxOptions) (commit.Result, error) {
	job, err := c.Job()
	if err != nil {
		return commit.Result{}, err
	}
	c.logger.Debug().Str("output", job.Output).Msg("processing file")

	err = encoder.Remux(ctx, job, encoder.Options{
		FFmpegPath: ffmpegPath,
		Runner:     c.runner,
		Logger:     c.logger,
		OnProgress: opts.OnProgress,
		OnState:    opts.OnState,
	})
	if err != nil {
		if rbErr := commit.Rollback(job.Output); rbErr != nil {
			c.logger.Warn().Err(rbErr).Str("output", job.Output).Msg("could not remove partial output")
		}
		return commit.Result{}, err
	}

	res, err := commit.Commit(c.path, job.Output, c.target.Ext)
	if err != nil {
		var cerr *commit.CommitError
		if errors.As(err, &cerr) {
			c.logger.Error().Str("backup", cerr.Backup).Str("output", cerr.Produced).Str("final", cerr.Final).Err(cerr.Err).
				Msg("commit failed, restore the original from the backup")
			return res, err
		}
		// The original is still in place; the output has nowhere to go.
		if rbErr := commit.Rollback(job.Output); rbErr != nil {
			c.logger.Warn().Err(rbErr).Str("output", job.Output).Msg("could not remove output")
		}
		return res, err
	}
	c.logger.Info().Str("backup", res.Backup).Str("final", res.Final).Msg("file committed")
	return res, nil
}

// KeptTracks returns the tracks that will be mapped into the output.
func (c *Container) KeptTracks() []model.Track {
	var out []model.Track
	for _, t := range c.tracks {
		if t.Keep {
			out = append(out, t)
		}
	}
	return out
}

// Summary lists the languages of kept tracks per kind, e.g.
// "Video: [eng], Audio: [jpn, eng]".
func (c *Container) Summary() string {
	var parts []string
	for _, kind := range model.TrackKinds {
		var langs []string
		for _, t := range c.tracks {
			if t.Keep && t.Kind == kind {
				langs = append(langs, t.Language)
			}
		}
		if len(langs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: [%s]", kind, strings.Join(langs, ", ")))
		}
	}
	return strings.Join(parts, ", ")
}

// Info is a human readable description of the file and its settings.
func (c *Container) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %q\n", c.path)
	fmt.Fprintf(&b, "Duration: %s (%d frames)\n", format.HumanizeDuration(c.estimate.Seconds), c.estimate.Frames)
	fmt.Fprintf(&b, "File size: %s\n", format.HumanizeBytes(util.FileSize(c.path)))
	fmt.Fprintf(&b, "Container: %s\n", c.target)
	if c.metadata.Len() > 0 {
		b.WriteString("Metadata:\n")
		for _, k := range c.metadata.Keys() {
			v, _ := c.metadata.Get(k)
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	isH265 := false
	for _, t := range c.tracks {
		if t.Keep && t.IsH265() {
			isH265 = true
		}
	}
	yes := "no"
	if isH265 {
		yes = "yes"
	}
	fmt.Fprintf(&b, "Video summary: is H.265: %s, codec: %q, preset: %q, tune: %q, profile: %q",
		yes, c.codec.Name, c.preset, c.tune, c.profile)
	return b.String()
}
