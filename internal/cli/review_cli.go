package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/at-ishikawa/vocabox/internal/session"
)

// ReviewCLI presents the items of a review session and lets the user grade themselves.
type ReviewCLI struct {
	*InteractiveReviewCLI
	session      *session.Session
	warningsSeen int
}

// NewReviewCLI creates a new ReviewCLI over sess.
func NewReviewCLI(sess *session.Session, stdin io.Reader, stdout io.Writer) *ReviewCLI {
	return &ReviewCLI{
		InteractiveReviewCLI: newInteractiveReviewCLI(stdin, stdout),
		session:              sess,
	}
}

// Session presents the current item, reveals it, and records the self-graded answer.
func (r *ReviewCLI) Session(ctx context.Context) error {
	item := r.session.CurrentItem()
	if item == nil {
		return errEnd
	}
	boxLevel, _ := r.session.CurrentBoxLevel()
	status := r.session.Status()
	w := r.stdoutWriter

	_, _ = fmt.Fprintf(w, "[%d/%d] box %d\n", status.CorrectCount+1, status.TotalCount, boxLevel)
	_, _ = r.bold.Fprintf(w, "%s", item.Text)
	if item.PartOfSpeech != "" {
		_, _ = fmt.Fprintf(w, " (%s)", item.PartOfSpeech)
	}
	_, _ = fmt.Fprint(w, "\nPress Enter to show the meaning...")
	if _, err := r.readLine(); err != nil {
		return endOnEOF(err)
	}

	for _, meaning := range item.Meanings {
		_, _ = fmt.Fprintf(w, "  - %s\n", r.italic.Sprint(meaning))
	}
	for _, example := range item.Examples {
		_, _ = fmt.Fprintf(w, "    e.g. %s\n", example)
	}
	if len(item.Synonyms) > 0 {
		_, _ = fmt.Fprintf(w, "  synonyms: %s\n", strings.Join(item.Synonyms, ", "))
	}

	isCorrect, err := r.askKnown()
	if err != nil {
		return endOnEOF(err)
	}

	result, err := r.session.Answer(isCorrect)
	if err != nil {
		return fmt.Errorf("session.Answer() > %w", err)
	}
	if isCorrect {
		_, _ = fmt.Fprint(w, "✅ ")
		_, _ = r.green.Fprintf(w, "Correct. %s moves to box %d\n", item.Text, result.NewBoxLevel)
	} else {
		_, _ = fmt.Fprint(w, "❌ ")
		_, _ = r.red.Fprintf(w, "Wrong. %s goes back to box %d and comes again in this session\n", item.Text, result.NewBoxLevel)
	}
	r.printNewWarnings(result.Status.Warnings)
	_, _ = fmt.Fprintln(w)
	return nil
}

func (r *ReviewCLI) askKnown() (bool, error) {
	for {
		_, _ = fmt.Fprint(r.stdoutWriter, "Did you know it? [y/n]: ")
		line, err := r.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (r *ReviewCLI) printNewWarnings(warnings []session.Warning) {
	for _, warning := range warnings[min(r.warningsSeen, len(warnings)):] {
		_, _ = r.yellow.Fprintf(r.stdoutWriter, "Warning: the answer for %s was not saved: %s\n", warning.Text, warning.Message)
	}
	r.warningsSeen = max(r.warningsSeen, len(warnings))
}

// Finish waits for the answers to be saved and prints the summary of the session.
func (r *ReviewCLI) Finish(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	closeErr := r.session.Close(ctx)

	status := r.session.Status()
	r.printNewWarnings(status.Warnings)
	w := r.stdoutWriter
	if status.IsCompleted {
		_, _ = r.green.Fprintln(w, "Session complete!")
	}
	_, _ = fmt.Fprintf(w, "Answered %d times, %d of %d items correct\n", status.AnsweredCount, status.CorrectCount, status.TotalCount)
	if len(status.Warnings) > 0 {
		_, _ = r.yellow.Fprintf(w, "%d answers could not be saved\n", len(status.Warnings))
	}
	if closeErr != nil {
		return fmt.Errorf("%d answers are still pending: %w", status.Pending, closeErr)
	}
	return nil
}

func endOnEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return errEnd
	}
	return err
}
