package probe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"trimmer/internal/model"
	"trimmer/internal/util"
)

// fakeFFprobe answers by -select_streams value; "" keys the format_tags call.
type fakeFFprobe struct {
	outputs map[string]string
	codes   map[string]int
	stderr  string // written on every call, whatever the exit code
	calls   []string
}

func (f *fakeFFprobe) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	key := ""
	for i, a := range spec.Args {
		if a == "-select_streams" && i+1 < len(spec.Args) {
			key = spec.Args[i+1]
		}
	}
	f.calls = append(f.calls, key)
	code := f.codes[key]
	res := util.CmdResult{Stdout: []byte(f.outputs[key]), Stderr: []byte(f.stderr), Code: code}
	if code != 0 {
		return res, errors.New("exit status")
	}
	return res, nil
}

func fakeForMovie() *fakeFFprobe {
	return &fakeFFprobe{outputs: map[string]string{
		"V": `{"streams":[{"index":2,"codec_name":"h264","r_frame_rate":"24000/1001","tags":{"language":"eng","title":"Main","DURATION":"00:42:10.500000000"}}]}`,
		"a": `{"streams":[{"index":0,"codec_name":"aac","channels":6,"duration":"2530.5","tags":{"language":"jpn"}},{"index":1,"codec_name":"ac3","channels":2}]}`,
		"s": `{"streams":[{"index":3,"codec_name":"subrip","tags":{"language":"eng","title":"Full","DURATION":"bogus"}}]}`,
		"d": `{"streams":[{"index":4,"codec_name":"ttf","tags":{"filename":"font.ttf"}}]}`,
	}}
}

func TestTracks_OrderAndDefaults(t *testing.T) {
	var buf bytes.Buffer
	f := fakeForMovie()
	tracks, err := Tracks(context.Background(), f, "ffprobe", "movie.mkv", zerolog.New(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(f.calls, ","); got != "V,a,s,d" {
		t.Errorf("ffprobe call order = %s, want V,a,s,d", got)
	}

	wantKinds := []model.TrackKind{model.KindVideo, model.KindAudio, model.KindAudio, model.KindSubtitle, model.KindAttachment}
	wantIndex := []int{2, 0, 1, 3, 4}
	if len(tracks) != len(wantKinds) {
		t.Fatalf("got %d tracks, want %d", len(tracks), len(wantKinds))
	}
	for i, tr := range tracks {
		if tr.Kind != wantKinds[i] || tr.Index != wantIndex[i] {
			t.Errorf("track %d = %v/%d, want %v/%d", i, tr.Kind, tr.Index, wantKinds[i], wantIndex[i])
		}
	}

	v := tracks[0]
	if v.Duration != 2530.5 {
		t.Errorf("video duration = %v, want 2530.5", v.Duration)
	}
	if v.FrameRate < 23.97 || v.FrameRate > 23.98 {
		t.Errorf("video fps = %v, want ~23.976", v.FrameRate)
	}

	a := tracks[1]
	if a.Title != model.DefaultTitle || a.Language != "jpn" || a.Channels != 6 || a.Duration != 2530.5 {
		t.Errorf("audio track = %+v", a)
	}
	noTags := tracks[2]
	if noTags.Language != model.DefaultLanguage || noTags.Duration != 0 {
		t.Errorf("untagged audio = %+v", noTags)
	}
	if tracks[3].Duration != 0 {
		t.Errorf("bogus DURATION should degrade to 0, got %v", tracks[3].Duration)
	}

	logs := buf.String()
	for _, want := range []string{"invalid duration", "no tags in stream", "no duration in stream"} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected warning %q in logs:\n%s", want, logs)
		}
	}
}

func TestTracks_PerKindFailureIsFatal(t *testing.T) {
	f := fakeForMovie()
	f.codes = map[string]int{"s": 1}
	f.outputs["s"] = "Invalid data found when processing input"
	_, err := Tracks(context.Background(), f, "ffprobe", "movie.mkv", zerolog.Nop())
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("err = %v, want ErrProbe", err)
	}
	if strings.Join(f.calls, ",") != "V,a,s" {
		t.Errorf("probing continued after failure: %v", f.calls)
	}
}

func TestTracksAndMetadata_IgnoreStderrAtExitZero(t *testing.T) {
	f := fakeForMovie()
	f.outputs[""] = `{"format":{"tags":{"title":"Movie"}}}`
	f.stderr = "[h264 @ 0x55d0] non-existing PPS 0 referenced\n"

	tracks, err := Tracks(context.Background(), f, "ffprobe", "movie.mkv", zerolog.Nop())
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if len(tracks) != 5 {
		t.Errorf("got %d tracks, want 5", len(tracks))
	}
	md, err := Metadata(context.Background(), f, "ffprobe", "movie.mkv")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if v, _ := md.Get("title"); v != "Movie" {
		t.Errorf("title = %q", v)
	}
}

func TestTracks_FailureIncludesStderr(t *testing.T) {
	f := fakeForMovie()
	f.codes = map[string]int{"V": 1}
	f.outputs["V"] = ""
	f.stderr = "movie.mkv: Invalid data found when processing input"
	_, err := Tracks(context.Background(), f, "ffprobe", "movie.mkv", zerolog.Nop())
	if !errors.Is(err, ErrProbe) || !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("err = %v, want ErrProbe carrying stderr", err)
	}
}

func TestTracks_InvalidJSON(t *testing.T) {
	f := fakeForMovie()
	f.outputs["a"] = "not json"
	if _, err := Tracks(context.Background(), f, "ffprobe", "movie.mkv", zerolog.Nop()); !errors.Is(err, ErrProbe) {
		t.Errorf("err = %v, want ErrProbe", err)
	}
}

func TestTracks_Empty(t *testing.T) {
	empty := `{"streams":[]}`
	f := &fakeFFprobe{outputs: map[string]string{"V": empty, "a": empty, "s": empty, "d": empty}}
	if _, err := Tracks(context.Background(), f, "ffprobe", "x.mkv", zerolog.Nop()); !errors.Is(err, ErrNoTracks) {
		t.Errorf("err = %v, want ErrNoTracks", err)
	}
}

func TestMetadata(t *testing.T) {
	f := &fakeFFprobe{outputs: map[string]string{
		"": `{"format":{"tags":{"title":"Movie","ENCODER":"Lavf60.3.100","DURATION":"00:42:10.500000000"}}}`,
	}}
	md, err := Metadata(context.Background(), f, "ffprobe", "movie.mkv")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(md.Keys(), ","); got != "title,ENCODER,DURATION" {
		t.Errorf("keys = %s", got)
	}
}

func TestMetadata_Missing(t *testing.T) {
	for name, out := range map[string]string{
		"no format": `{}`,
		"no tags":   `{"format":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := &fakeFFprobe{outputs: map[string]string{"": out}}
			if _, err := Metadata(context.Background(), f, "ffprobe", "x.mkv"); !errors.Is(err, ErrNoMetadata) {
				t.Errorf("err = %v, want ErrNoMetadata", err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"02:27:57.535000000", 2*3600 + 27*60 + 57.535, true},
		{"00:00:10", 10, true},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDuration(tt.in)
		if ok != tt.ok || (ok && (got-tt.want > 1e-6 || tt.want-got > 1e-6)) {
			t.Errorf("ParseDuration(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"25/1", 25, true},
		{"30000/1001", 30000.0 / 1001.0, true},
		{"0/0", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFrameRate(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
