// Package commit swaps a finished output into place of its input while
// keeping the original as a numbered backup.
package commit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"trimmer/internal/metrics"
	"trimmer/internal/util"
	"trimmer/internal/util/media"
)

// JournalSuffix is appended to the input path for the in-progress marker.
const JournalSuffix = ".trimmer-commit"

// ErrFinalExists is returned when the output would replace a file other
// than the input. Nothing has been moved when it is returned.
var ErrFinalExists = errors.New("output path already exists")

// Result names where the files ended up.
type Result struct {
	Backup string
	Final  string
}

// CommitError means the original was moved to Backup but the new file did
// not land at Final. The user has to restore from Backup.
type CommitError struct {
	Backup   string
	Produced string
	Final    string
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed: original saved as %s, could not move %s to %s: %v", e.Backup, e.Produced, e.Final, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Journal is the write-ahead record of a commit in progress.
type Journal struct {
	Input    string `json:"input"`
	Backup   string `json:"backup"`
	Produced string `json:"produced"`
	Final    string `json:"final"`
}

// UniqueBackupName returns the first of path.bak0, path.bak1, ... that does
// not exist.
func UniqueBackupName(path string) string {
	for i := 0; ; i++ {
		name := path + ".bak" + strconv.Itoa(i)
		if !util.Exists(name) {
			return name
		}
	}
}

// Commit moves input to a fresh backup name and produced to the input's
// base name with targetExt. A journal file next to input covers the window
// between the two renames. When the extension changes and the new name is
// taken by another file, Commit fails with ErrFinalExists before touching
// anything.
func Commit(input, produced, targetExt string) (Result, error) {
	backup := UniqueBackupName(input)
	final := media.FinalOutputPath(input, targetExt)
	jpath := input + JournalSuffix

	if final != input && util.Exists(final) {
		return Result{}, fmt.Errorf("%w: %s", ErrFinalExists, final)
	}

	if err := writeJournal(jpath, Journal{Input: input, Backup: backup, Produced: produced, Final: final}); err != nil {
		return Result{}, fmt.Errorf("write commit journal: %w", err)
	}

	if err := os.Rename(input, backup); err != nil {
		_ = os.Remove(jpath)
		return Result{}, fmt.Errorf("move %s to %s: %w", input, backup, err)
	}
	metrics.BackupsCreated.Inc()

	if err := os.Rename(produced, final); err != nil {
		metrics.CommitFailures.Inc()
		return Result{Backup: backup}, &CommitError{Backup: backup, Produced: produced, Final: final, Err: err}
	}

	_ = os.Remove(jpath)
	return Result{Backup: backup, Final: final}, nil
}

// Rollback removes a partially written output. The original input is never
// touched. The returned error is for logging only.
func Rollback(produced string) error {
	return util.RemoveIfExists(produced)
}

// PendingJournal returns the journal of an interrupted commit of input, if any.
func PendingJournal(input string) (*Journal, error) {
	data, err := os.ReadFile(input + JournalSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("decode commit journal: %w", err)
	}
	return &j, nil
}

func writeJournal(path string, j Journal) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
