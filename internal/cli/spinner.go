package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/cellgraph/pkg/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// stageLabels are shown next to the document while a pipeline stage runs.
var stageLabels = map[pipeline.Stage]string{
	pipeline.StageLoad:     "loading",
	pipeline.StageBuild:    "building graph",
	pipeline.StageValidate: "validating view",
	pipeline.StageRender:   "rendering",
}

// spinner animates a progress line for one document on stderr. The line
// follows the pipeline stage reported through [spinner.Stage]; it stops
// when Stop is called or ctx is cancelled.
type spinner struct {
	out      io.Writer
	document string
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	once     sync.Once

	mu    sync.Mutex
	stage string
	width int // widest line written, for clearing
}

func newSpinner(ctx context.Context, document string) *spinner {
	return newSpinnerTo(ctx, os.Stderr, document)
}

func newSpinnerTo(parent context.Context, w io.Writer, document string) *spinner {
	ctx, cancel := context.WithCancel(parent)
	return &spinner{
		out:      w,
		document: document,
		parent:   parent,
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
		stage:    stageLabels[pipeline.StageLoad],
	}
}

// Stage switches the label to stage. It has the signature of
// [pipeline.Options.OnStage].
func (s *spinner) Stage(stage pipeline.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if label, ok := stageLabels[stage]; ok {
		s.stage = label
	} else {
		s.stage = string(stage)
	}
}

// line returns the text shown after the frame.
func (s *spinner) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document + ": " + s.stage + "..."
}

// Start begins the animation.
func (s *spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				line := s.line()
				s.mu.Lock()
				s.width = max(s.width, len(line)+2)
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(line))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
}

// StopWithSuccess stops the spinner and prints a success message.
func (s *spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError stops the spinner and prints the stage that failed.
func (s *spinner) StopWithError(err error) {
	s.Stop()
	s.mu.Lock()
	stage := s.stage
	s.mu.Unlock()
	printError("%s failed while %s: %v", s.document, stage, err)
}

// Cancelled reports whether the spinner stopped because its parent context
// was cancelled.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
