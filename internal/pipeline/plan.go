package pipeline

import (
	"fmt"

	"trimmer/internal/encoder"
	"trimmer/internal/media"
	"trimmer/internal/model"
	"trimmer/internal/util"
)

// ApplyOptions applies the user's encoder, container, title and track
// filter choices to every container. The title is a template expanded per
// file (see media.ExpandTitle). Filters run after KeepNone, so
// "--keep-none --keep-audio eng" keeps only English audio.
func ApplyOptions(containers []*media.Container, opts model.CLIOptions) error {
	var target model.ContainerType
	if opts.Container != "" {
		ct, ok := model.LookupContainerType(opts.Container)
		if !ok {
			return fmt.Errorf("%w: %s", media.ErrUnsupportedContainer, opts.Container)
		}
		target = ct
	}

	for i, c := range containers {
		if opts.Preset != "" {
			if err := c.SetPreset(opts.Preset); err != nil {
				return err
			}
		}
		if opts.Tune != "" {
			if err := c.SetTune(opts.Tune); err != nil {
				return err
			}
		}
		if opts.Profile != "" {
			if err := c.SetProfile(opts.Profile); err != nil {
				return err
			}
		}
		if target.Ext != "" {
			c.SetContainerType(target)
		}
		if opts.Title != "" {
			current, _ := c.Title()
			if err := c.SetTitle(media.ExpandTitle(opts.Title, current, c.Path(), i)); err != nil {
				return err
			}
		}
	}

	if opts.KeepNone {
		media.KeepNone(containers)
	}
	if opts.KeepVideo != nil {
		media.FilterTracks(containers, model.KindVideo, opts.KeepVideo)
	}
	if opts.KeepAudio != nil {
		media.FilterTracks(containers, model.KindAudio, opts.KeepAudio)
	}
	if opts.KeepSubtitle != nil {
		media.FilterTracks(containers, model.KindSubtitle, opts.KeepSubtitle)
	}
	return nil
}

// Plan is the dry-run view of one file.
type Plan struct {
	Path    string
	Info    string
	Summary string
	Command string // printable ffmpeg command line
	Args    []string
	Err     error
}

// PlanBatch describes what RunBatch would do without running ffmpeg.
func (s *Service) PlanBatch(containers []*media.Container) []Plan {
	plans := make([]Plan, 0, len(containers))
	for _, c := range containers {
		p := Plan{Path: c.Path(), Info: c.Info(), Summary: c.Summary()}
		job, err := c.Job()
		if err != nil {
			p.Err = err
		} else {
			p.Args = encoder.BuildRemuxArgs(job)
			p.Command = util.ShellQuote(s.ffmpegPath, p.Args)
		}
		plans = append(plans, p)
	}
	return plans
}
