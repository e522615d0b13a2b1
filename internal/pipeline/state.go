package pipeline

// State identifies a step of an orchestrator run.
type State int

const (
	// StateInit validates the run configuration.
	StateInit State = iota
	// StateResolveWorkdir prepares the working and data directories.
	StateResolveWorkdir
	// StateDetectExisting looks for a previous extraction.
	StateDetectExisting
	// StateExtract unpacks the archive into the data directory.
	StateExtract
	// StatePostExtractLocate looks for the data root after extraction.
	StatePostExtractLocate
	// StateScanReady means the data root is known.
	StateScanReady
	// StateScan runs the scan phase.
	StateScan
	// StateAnalyze runs the analyze phase and the result dump.
	StateAnalyze
	// StateReport runs the report phase.
	StateReport
	// StateDone is the terminal success state.
	StateDone
	// StateFailed is the terminal failure state.
	StateFailed
)

var stateNames = [...]string{
	StateInit:              "init",
	StateResolveWorkdir:    "resolve-workdir",
	StateDetectExisting:    "detect-existing",
	StateExtract:           "extract",
	StatePostExtractLocate: "post-extract-locate",
	StateScanReady:         "scan-ready",
	StateScan:              "scan",
	StateAnalyze:           "analyze",
	StateReport:            "report",
	StateDone:              "done",
	StateFailed:            "failed",
}

// String returns the state's name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
