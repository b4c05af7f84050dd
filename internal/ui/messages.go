package ui

import (
	"trimmer/internal/pipeline"
	"trimmer/internal/progress"
)

type fileUpdateMsg struct {
	U progress.Update
}

type fileLogMsg struct {
	L progress.Log
}

type fileResultMsg struct {
	R progress.Result
}

type batchDoneMsg struct {
	Result pipeline.BatchResult
}
