package encoder

import (
	"strconv"

	"trimmer/internal/codec"
	"trimmer/internal/model"
)

// RemuxJob is everything needed to rewrite one file.
type RemuxJob struct {
	Input    string
	Output   string // temporary path, see media.TempOutputPath
	Metadata *model.Metadata
	Tracks   []model.Track

	Codec   codec.Codec
	Preset  string
	Tune    string
	Profile string
}

// BuildRemuxArgs constructs the ffmpeg arguments (without the binary) for a
// remux. Audio and subtitles are always stream-copied; video is re-encoded
// to HEVC unless it already is. Only tracks marked Keep are mapped.
func BuildRemuxArgs(job RemuxJob) []string {
	args := []string{"-i", job.Input, "-y"}

	if job.Metadata != nil {
		job.Metadata.Each(func(k, v string) {
			args = append(args, "-metadata", k+"="+v)
		})
	}

	args = append(args, "-c:a", "copy", "-c:s", "copy")

	for _, t := range job.Tracks {
		if t.Kind != model.KindVideo {
			continue
		}
		if t.IsH265() {
			args = append(args, "-c:v", "copy")
			continue
		}
		args = append(args, "-c:v", job.Codec.Name, "-preset", job.Preset)
		if len(job.Codec.Tunes) > 0 && job.Tune != "" {
			args = append(args, "-tune", job.Tune)
		}
		args = append(args, "-profile:v", job.Profile, "-vtag", "hvc1")
	}

	for _, t := range job.Tracks {
		if !t.Keep {
			continue
		}
		idx := strconv.Itoa(t.Index)
		args = append(args,
			"-map", "0:"+idx,
			"-metadata:s:"+idx, "language="+t.Language,
			"-metadata:s:"+idx, "title="+t.Title,
		)
	}

	args = append(args, job.Output, "-progress", "pipe:1", "-v", "error")
	return args
}
