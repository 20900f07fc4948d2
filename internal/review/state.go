package review

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spigell/resume-reviewer/internal/document"
)

// Phase is the position of a run in the review state machine.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseTypeDetermined
	PhaseContentExtracted
	PhaseGraded
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseStart:            "start",
	PhaseTypeDetermined:   "type_determined",
	PhaseContentExtracted: "content_extracted",
	PhaseGraded:           "graded",
	PhaseDone:             "done",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ErrOutOfOrder is returned when a state field is read before it was
// written or written outside its phase.
var ErrOutOfOrder = errors.New("review state accessed out of order")

// State is threaded through every stage of a run. Each field is written
// once by the stage that owns it.
type State struct {
	filePath        string
	documentType    document.Type
	documentContent *Resume
	grade           int
	feedback        string
	phase           Phase
}

// NewState starts a run for filePath.
func NewState(filePath string) *State {
	return &State{filePath: filePath, phase: PhaseStart}
}

func (s *State) Phase() Phase {
	return s.phase
}

func (s *State) FilePath() string {
	return s.filePath
}

// DocumentType is available once the type has been determined.
func (s *State) DocumentType() (document.Type, error) {
	if err := s.require(PhaseTypeDetermined, "document_type"); err != nil {
		return "", err
	}
	return s.documentType, nil
}

// DocumentContent is available once the content has been extracted.
func (s *State) DocumentContent() (*Resume, error) {
	if err := s.require(PhaseContentExtracted, "document_content"); err != nil {
		return nil, err
	}
	return s.documentContent, nil
}

// Grading is available once the resume has been graded.
func (s *State) Grading() (*Grading, error) {
	if err := s.require(PhaseGraded, "grade"); err != nil {
		return nil, err
	}
	return &Grading{Grade: s.grade, Feedback: s.feedback}, nil
}

func (s *State) setDocumentType(t document.Type) error {
	if err := s.advance(PhaseStart, PhaseTypeDetermined); err != nil {
		return err
	}
	s.documentType = t
	return nil
}

func (s *State) setDocumentContent(r *Resume) error {
	if r == nil {
		return errors.New("document content must not be nil")
	}
	if err := s.advance(PhaseTypeDetermined, PhaseContentExtracted); err != nil {
		return err
	}
	s.documentContent = r
	return nil
}

func (s *State) setGrading(g *Grading) error {
	if g == nil {
		return errors.New("grading must not be nil")
	}
	if err := s.advance(PhaseContentExtracted, PhaseGraded); err != nil {
		return err
	}
	s.grade = g.Grade
	s.feedback = g.Feedback
	return nil
}

func (s *State) finish() error {
	return s.advance(PhaseGraded, PhaseDone)
}

func (s *State) advance(from, to Phase) error {
	if s.phase != from {
		return errors.Wrapf(ErrOutOfOrder, "cannot move to %s from %s", to, s.phase)
	}
	s.phase = to
	return nil
}

func (s *State) require(atLeast Phase, field string) error {
	if s.phase < atLeast {
		return errors.Wrapf(ErrOutOfOrder, "%s read in phase %s", field, s.phase)
	}
	return nil
}
