// Package review runs the resume review pipeline: detect the document type,
// extract a structured resume and grade it.
package review

import (
	"context"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/document"
	"github.com/spigell/resume-reviewer/internal/logger"
)

// Config carries everything a pipeline needs. Nothing is read from the
// environment.
type Config struct {
	Oracle  ai.Oracle
	Loaders document.Loaders
	Logger  *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewRunID defaults to random UUIDs.
	NewRunID func() string
}

// Result is the outcome of a completed run.
type Result struct {
	RunID        string        `json:"run_id"`
	FilePath     string        `json:"file_path"`
	DocumentType document.Type `json:"document_type"`
	Resume       *Resume       `json:"document_content"`
	Grade        int           `json:"grade"`
	Feedback     string        `json:"feedback"`
}

// Pipeline executes stages in the topological order of its stage graph.
type Pipeline struct {
	graph    graph.Graph[string, Stage]
	order    []string
	logger   *zap.Logger
	newRunID func() string
}

func stageHash(s Stage) string {
	return s.Name()
}

// New builds the stage graph start -> detect -> read -> grade -> end.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Oracle == nil {
		return nil, errors.New("oracle is required")
	}
	if len(cfg.Loaders) == 0 {
		return nil, errors.New("document loaders are required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	newRunID := cfg.NewRunID
	if newRunID == nil {
		newRunID = func() string { return uuid.NewString() }
	}

	stages := []Stage{
		startStage{},
		NewTypeDetector(cfg.Oracle, log),
		NewContentExtractor(cfg.Oracle, cfg.Loaders, cfg.Now),
		NewResumeGrader(cfg.Oracle),
		endStage{},
	}

	g := graph.New(stageHash, graph.Directed(), graph.PreventCycles())
	for _, stage := range stages {
		shape := "box"
		if stage.Name() == StageStart || stage.Name() == StageEnd {
			shape = "oval"
		}
		if err := g.AddVertex(stage, graph.VertexAttribute("shape", shape)); err != nil {
			return nil, errors.Wrapf(err, "add stage %s", stage.Name())
		}
	}

	for i := 1; i < len(stages); i++ {
		from, to := stages[i-1].Name(), stages[i].Name()
		if err := g.AddEdge(from, to); err != nil {
			return nil, errors.Wrapf(err, "link %s to %s", from, to)
		}
	}

	order, err := graph.TopologicalSort(g)
	if err != nil {
		return nil, errors.Wrap(err, "order stages")
	}

	return &Pipeline{
		graph:    g,
		order:    order,
		logger:   log,
		newRunID: newRunID,
	}, nil
}

// Stages returns stage names in execution order.
func (p *Pipeline) Stages() []string {
	return append([]string(nil), p.order...)
}

// Run reviews the resume at filePath. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, filePath string) (*Result, error) {
	runID := p.newRunID()
	log := logger.WithFields(p.logger, logger.RunFields(runID, filePath)...)
	state := NewState(filePath)

	log.Info("starting review")

	for _, name := range p.order {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "before %s", name)
		}

		stage, err := p.graph.Vertex(name)
		if err != nil {
			return nil, errors.Wrapf(err, "lookup stage %s", name)
		}

		started := time.Now()
		if err := stage.Run(ctx, state); err != nil {
			log.Error("pipeline step failed", zap.String(logger.FieldStage, name), zap.Error(err))
			return nil, errors.Wrap(err, name)
		}

		log.Info("pipeline step",
			zap.String(logger.FieldStage, name),
			zap.Stringer("phase", state.Phase()),
			zap.Duration("took", time.Since(started)),
		)
	}

	return resultFrom(runID, state)
}

func resultFrom(runID string, state *State) (*Result, error) {
	if state.Phase() != PhaseDone {
		return nil, errors.Wrapf(ErrOutOfOrder, "run ended in phase %s", state.Phase())
	}

	docType, err := state.DocumentType()
	if err != nil {
		return nil, err
	}
	resume, err := state.DocumentContent()
	if err != nil {
		return nil, err
	}
	grading, err := state.Grading()
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:        runID,
		FilePath:     state.FilePath(),
		DocumentType: docType,
		Resume:       resume,
		Grade:        grading.Grade,
		Feedback:     grading.Feedback,
	}, nil
}
