package progress

import "time"

// Stage identifies a high-level step in the processing of one file.
type Stage string

const (
	StageProbing    Stage = "probing"
	StageEncoding   Stage = "encoding"
	StageCommitting Stage = "committing"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error"
	StageCancelled  Stage = "cancelled"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
)

// Update conveys progress or stage changes for a file of the batch.
// Percent is 0..100 when known; a negative value means unknown.
type Update struct {
	JobID string // input path
	Index int    // position in the batch
	Stage Stage

	Percent float64 // 0..100, or <0 if unknown
	Frame   int64
	Frames  int64   // expected total, 0 if unknown
	FPS     float64 // encoding speed in frames per second
	Speed   float64 // FPS relative to the file's frame rate, 0 if unknown
	ETA     *time.Duration

	OverallPercent float64
	OverallETA     *time.Duration
	Elapsed        time.Duration // since the batch started

	Message string
}

// Log is a diagnostic line associated with a file.
type Log struct {
	JobID  string
	Stream LogStream
	Line   string
}

// Result is emitted once per file when it completes, fails or is skipped.
type Result struct {
	JobID      string
	Index      int
	OutputPath string
	BackupPath string
	Bytes      int64
	Cancelled  bool
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
// Implementations must not block the caller.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
