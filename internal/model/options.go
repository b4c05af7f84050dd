package model

// CLIOptions holds user-configurable runtime options as resolved from
// flags, environment and the config file.
type CLIOptions struct {
	Recursive bool

	FFmpegBinary  string // optional explicit path to ffmpeg
	FFprobeBinary string // optional explicit path to ffprobe
	GPU           string // free-text GPU description used for codec preference

	Codec     string // encoder name; empty picks the preferred codec
	Preset    string // empty keeps the codec's preferred value
	Tune      string
	Profile   string
	Container string // output extension; empty keeps the input's
	Title     string // container title override; empty keeps the existing one

	KeepVideo    []string // filter tokens; nil leaves video tracks untouched
	KeepAudio    []string
	KeepSubtitle []string
	KeepNone     bool // start from no kept tracks before filters apply

	MetricsFile string
	Verbose     bool
	DryRun      bool
	NoUI        bool
}

// FileStatus is the per-file state of a batch run.
type FileStatus string

const (
	StatusPending   FileStatus = "pending"
	StatusWorking   FileStatus = "working"
	StatusDone      FileStatus = "done"
	StatusError     FileStatus = "error"
	StatusCancelled FileStatus = "cancelled"
)

// Terminal reports whether no further transitions are expected.
func (s FileStatus) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCancelled
}
