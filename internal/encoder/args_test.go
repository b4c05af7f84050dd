package encoder

import (
	"reflect"
	"strings"
	"testing"

	"trimmer/internal/codec"
	"trimmer/internal/model"
)

func sampleJob() RemuxJob {
	md := model.NewMetadata()
	md.Set("title", "Movie")
	md.Set("ENCODER", "Lavf60")
	md.Set("TRIMMER_VERSION", "dev")

	tracks := []model.Track{
		model.NewVideoTrack(0, "h264", "eng", "Main", 100, 24),
		model.NewAudioTrack(1, "aac", "jpn", "", 100, 2),
		model.NewAudioTrack(2, "ac3", "eng", "Commentary", 100, 6),
		model.NewSubtitleTrack(3, "subrip", "eng", "Full", 100),
	}
	tracks[2].Keep = false

	return RemuxJob{
		Input:    "/v/movie.mkv",
		Output:   "/v/movie.mkv.trimmed.mkv",
		Metadata: md,
		Tracks:   tracks,
		Codec:    codec.LibX265,
		Preset:   "slow",
		Tune:     "grain",
		Profile:  "main",
	}
}

func TestBuildRemuxArgs_Shape(t *testing.T) {
	got := BuildRemuxArgs(sampleJob())
	want := []string{
		"-i", "/v/movie.mkv", "-y",
		"-metadata", "title=Movie",
		"-metadata", "ENCODER=Lavf60",
		"-metadata", "TRIMMER_VERSION=dev",
		"-c:a", "copy", "-c:s", "copy",
		"-c:v", "libx265", "-preset", "slow", "-tune", "grain", "-profile:v", "main", "-vtag", "hvc1",
		"-map", "0:0", "-metadata:s:0", "language=eng", "-metadata:s:0", "title=Main",
		"-map", "0:1", "-metadata:s:1", "language=jpn", "-metadata:s:1", "title=default",
		"-map", "0:3", "-metadata:s:3", "language=eng", "-metadata:s:3", "title=Full",
		"/v/movie.mkv.trimmed.mkv", "-progress", "pipe:1", "-v", "error",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildRemuxArgs() =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildRemuxArgs_Rules(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(*RemuxJob)
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:            "dropped track is not mapped",
			mutate:          func(j *RemuxJob) {},
			wantNotContains: []string{"-map 0:2 "},
		},
		{
			name: "hevc video is copied",
			mutate: func(j *RemuxJob) {
				j.Tracks[0] = model.NewVideoTrack(0, "hevc", "eng", "Main", 100, 24)
			},
			wantContains:    []string{"-c:v copy"},
			wantNotContains: []string{"libx265", "-preset", "-tune", "-profile:v", "-vtag"},
		},
		{
			name: "codec without tunes omits -tune",
			mutate: func(j *RemuxJob) {
				j.Codec = codec.Codec{Name: "hevc_test", Presets: []string{"p"}, Profiles: []string{"main"}}
				j.Preset = "p"
				j.Tune = ""
			},
			wantContains:    []string{"-c:v hevc_test -preset p -profile:v main -vtag hvc1"},
			wantNotContains: []string{"-tune"},
		},
		{
			name: "all tracks dropped",
			mutate: func(j *RemuxJob) {
				for i := range j.Tracks {
					j.Tracks[i].Keep = false
				}
			},
			wantNotContains: []string{"-map"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sampleJob()
			tt.mutate(&job)
			joined := strings.Join(BuildRemuxArgs(job), " ") + " "
			for _, s := range tt.wantContains {
				if !strings.Contains(joined, s) {
					t.Errorf("args missing %q: %s", s, joined)
				}
			}
			for _, s := range tt.wantNotContains {
				if strings.Contains(joined, s) {
					t.Errorf("args unexpectedly contain %q: %s", s, joined)
				}
			}
		})
	}
}
