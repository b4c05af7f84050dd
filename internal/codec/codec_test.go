package codec

import (
	"context"
	"errors"
	"testing"

	"trimmer/internal/util"
)

type fakeRunner struct {
	out  string
	code int
	err  error
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.args = spec.Args
	if f.err != nil {
		return util.CmdResult{Code: -1, Err: f.err}, f.err
	}
	res := util.CmdResult{Stdout: []byte(f.out), Code: f.code}
	if f.code != 0 {
		return res, errors.New("exit status")
	}
	return res, nil
}

const encodersListing = `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libx265              libx265 H.265 / HEVC (codec hevc)
 V....D hevc_nvenc           NVIDIA NVENC hevc encoder (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestCatalogValidates(t *testing.T) {
	for _, c := range Known() {
		if err := c.Validate(); err != nil {
			t.Errorf("%s: %v", c.Name, err)
		}
	}
}

func TestDetectSupported(t *testing.T) {
	r := &fakeRunner{out: encodersListing}
	got, err := DetectSupported(context.Background(), r, "ffmpeg")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "libx265" || got[1].Name != "hevc_nvenc" {
		t.Errorf("DetectSupported() = %v, want [libx265 hevc_nvenc]", got)
	}
	if len(r.args) != 2 || r.args[0] != "-hide_banner" || r.args[1] != "-encoders" {
		t.Errorf("args = %v", r.args)
	}
}

func TestDetectSupported_Failure(t *testing.T) {
	if _, err := DetectSupported(context.Background(), &fakeRunner{out: "boom", code: 1}, "ffmpeg"); err == nil {
		t.Error("expected error for non-zero exit")
	}
	if _, err := DetectSupported(context.Background(), &fakeRunner{err: errors.New("no such file")}, "ffmpeg"); err == nil {
		t.Error("expected error when ffmpeg cannot start")
	}
}

func TestPreferHEVC(t *testing.T) {
	tests := []struct {
		name      string
		supported []Codec
		gpu       string
		want      string
		wantErr   error
	}{
		{name: "nvidia with nvenc", supported: []Codec{LibX265, HEVCNvenc}, gpu: "NVIDIA GeForce RTX 3080", want: "hevc_nvenc"},
		{name: "nvidia without nvenc", supported: []Codec{LibX265}, gpu: "nvidia", want: "libx265"},
		{name: "nvenc but other gpu", supported: []Codec{HEVCNvenc, LibX265}, gpu: "AMD Radeon", want: "libx265"},
		{name: "apple prefers libx265", supported: []Codec{HEVCVideoToolbox, LibX265}, gpu: "Apple M2", want: "libx265"},
		{name: "toolbox only", supported: []Codec{HEVCVideoToolbox}, gpu: "Apple M2", wantErr: ErrNoHEVCCodec},
		{name: "nothing", supported: nil, gpu: "", wantErr: ErrNoHEVCCodec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PreferHEVC(tt.supported, tt.gpu)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Name != tt.want {
				t.Errorf("PreferHEVC() = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	supported := []Codec{LibX265}
	if c, err := Select(supported, "libx265"); err != nil || c.Name != "libx265" {
		t.Errorf("Select(libx265) = %v, %v", c, err)
	}
	if _, err := Select(supported, "hevc_nvenc"); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("Select(hevc_nvenc) err = %v, want ErrUnsupportedCodec", err)
	}
	if _, err := Select(supported, "vp9"); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("Select(vp9) err = %v, want ErrUnsupportedCodec", err)
	}
}
