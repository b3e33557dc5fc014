package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var out bytes.Buffer
	s := newSpinnerWithContext(ctx, message).WithOutput(&out)
	s.term = &bytes.Buffer{}
	return s, &out
}

func TestSpinnerBasic(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Indexing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s, _ := quietSpinner(ctx, "Classifying...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, _ := quietSpinner(ctx, "Waiting...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Stopping...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Never started")
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Indexing classes...")
	s.Start()
	s.SetMessage("Rendering")
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	term := s.term.(*bytes.Buffer).String()
	if !strings.Contains(term, "Rendering") {
		t.Errorf("terminal output %q does not show the new message", term)
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Analyzing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done")

	if !strings.Contains(out.String(), "Done") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Analyzing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed")

	if !strings.Contains(out.String(), "Failed") {
		t.Errorf("output = %q", out.String())
	}
}
