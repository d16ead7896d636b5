package orchestrator

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/transcriptflow/errors"
)

// ErrExecutionRunning is returned by Begin when the file already has a
// live execution. Match it with errors.Is.
var ErrExecutionRunning = stderrors.New("execution already running")

// Execution is the state record of one pipeline run over a source file.
type Execution struct {
	File             string                `json:"original_file"`
	Bucket           string                `json:"bucket"`
	Stage            Stage                 `json:"stage"`
	Attempts         map[Stage]int         `json:"attempts"`
	JobName          string                `json:"job_name,omitempty"`
	ChunksTotal      int                   `json:"chunks_total"`
	ChunksDispatched int                   `json:"chunks_dispatched"`
	Classification   errors.Classification `json:"classification,omitempty"`
	LastError        string                `json:"last_error,omitempty"`
	StartedAt        time.Time             `json:"started_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func (e *Execution) snapshot() Execution {
	cp := *e
	cp.Attempts = make(map[Stage]int, len(e.Attempts))
	for k, v := range e.Attempts {
		cp.Attempts[k] = v
	}
	return cp
}

// Registry tracks executions by source file. One file has at most one
// live execution; terminal records stay readable until replaced by a
// new run.
type Registry struct {
	mu    sync.RWMutex
	execs map[string]*Execution
}

// NewRegistry creates an empty execution registry.
func NewRegistry() *Registry {
	return &Registry{execs: make(map[string]*Execution)}
}

// Begin registers a new execution for the file, starting in the
// Transcribing stage. It refuses to start while another execution for
// the same file is still running; a terminal record is replaced.
func (r *Registry) Begin(bucket, file string) (*Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.execs[file]; ok && !prev.Stage.Terminal() {
		return nil, fmt.Errorf("%w for %s (stage %s)", ErrExecutionRunning, file, prev.Stage)
	}

	now := time.Now().UTC()
	exec := &Execution{
		File:      file,
		Bucket:    bucket,
		Stage:     StageTranscribing,
		Attempts:  make(map[Stage]int),
		StartedAt: now,
		UpdatedAt: now,
	}
	r.execs[file] = exec
	return exec, nil
}

// Get returns a snapshot of the execution for the file.
func (r *Registry) Get(file string) (Execution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exec, ok := r.execs[file]
	if !ok {
		return Execution{}, false
	}
	return exec.snapshot(), true
}

// List returns snapshots of all known executions.
func (r *Registry) List() []Execution {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Execution, 0, len(r.execs))
	for _, exec := range r.execs {
		out = append(out, exec.snapshot())
	}
	return out
}

// advance applies the event to the execution's stage. Terminal records
// never change again.
func (r *Registry) advance(exec *Execution, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exec.Stage.Terminal() {
		return fmt.Errorf("execution for %s is already %s", exec.File, exec.Stage)
	}
	next, err := Transition(exec.Stage, ev)
	if err != nil {
		return err
	}
	exec.Stage = next
	exec.UpdatedAt = time.Now().UTC()
	return nil
}

// recordAttempt bumps the attempt counter for the stage.
func (r *Registry) recordAttempt(exec *Execution, stage Stage, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if attempts > exec.Attempts[stage] {
		exec.Attempts[stage] = attempts
	}
	exec.UpdatedAt = time.Now().UTC()
}

// fail moves the execution to Failed with its classification. The
// error is flattened to a message; stack detail never leaves the
// process.
func (r *Registry) fail(exec *Execution, class errors.Classification, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exec.Stage.Terminal() {
		return
	}
	exec.Stage = StageFailed
	exec.Classification = class
	if cause != nil {
		exec.LastError = cause.Error()
	}
	exec.UpdatedAt = time.Now().UTC()
}

// setJob records the recognition job name once it is known.
func (r *Registry) setJob(exec *Execution, jobName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec.JobName = jobName
	exec.UpdatedAt = time.Now().UTC()
}

// setChunks records fan-out progress.
func (r *Registry) setChunks(exec *Execution, total, dispatched int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec.ChunksTotal = total
	exec.ChunksDispatched = dispatched
	exec.UpdatedAt = time.Now().UTC()
}
