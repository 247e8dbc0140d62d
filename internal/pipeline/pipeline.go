package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/config"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
)

// Pipeline runs ingest, aggregation, profiling and recommendation over one
// fixed batch. It is immutable after New and may run several batches.
type Pipeline struct {
	bank     *itembank.Bank
	vocab    answer.Vocabulary
	profiler *profile.Profiler
	engine   *recommend.Engine
	workers  int
	log      *zap.Logger
	now      func() time.Time
}

// New validates cfg and builds the pipeline for a bank. A nil logger
// discards output.
func New(cfg config.Config, bank *itembank.Bank, log *zap.Logger) (*Pipeline, error) {
	if bank == nil {
		return nil, fmt.Errorf("pipeline: nil item bank")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	vocab, err := cfg.AnswerVocabulary()
	if err != nil {
		return nil, err
	}
	profiler, err := profile.New(cfg.Profile)
	if err != nil {
		return nil, err
	}
	engine, err := recommend.New(cfg.Recommend)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		bank:     bank,
		vocab:    vocab,
		profiler: profiler,
		engine:   engine,
		workers:  cfg.EffectiveWorkers(),
		log:      log,
		now:      time.Now,
	}, nil
}

// Run ingests raw rows and scores the accepted records. Rejected rows are
// reported on the result, never fatal.
func (p *Pipeline) Run(ctx context.Context, raws []answer.RawRecord) (*Report, error) {
	ing := answer.Ingest(raws, p.vocab)
	for _, rej := range ing.Rejected {
		p.log.Debug("rejected answer row", zap.Int("row", rej.Row), zap.String("reason", rej.Reason))
	}
	return p.score(ctx, ing)
}

// RunRecords scores records that are already validated, such as simulator
// output.
func (p *Pipeline) RunRecords(ctx context.Context, records []answer.Record) (*Report, error) {
	return p.score(ctx, answer.IngestResult{Records: records})
}

func (p *Pipeline) score(ctx context.Context, ing answer.IngestResult) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
		Records:   len(ing.Records),
		Rejected:  ing.Rejected,
		Repaired:  ing.Repaired,
		Defaulted: ing.Defaulted,
	}
	log := p.log.With(zap.String("run_id", rep.RunID))

	rep.Scores = scoring.Aggregate(p.bank, ing.Records)
	for _, ex := range rep.Scores.Excluded {
		log.Debug("excluded record",
			zap.String("student_id", ex.Record.StudentID),
			zap.String("question_id", ex.Record.QuestionID),
			zap.Error(ex.Err))
	}

	students := rep.Scores.Students()
	profiles := make([]profile.StudentProfile, len(students))
	recs := make([][]recommend.Recommendation, len(students))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, id := range students {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, _ := rep.Scores.Summary(id)
			sp := p.profiler.Build(sum, rep.Scores.TopicsFor(id))
			for _, gap := range rep.Scores.GapsFor(id) {
				sp.Gaps = append(sp.Gaps, gap.Topic)
			}
			profiles[i] = sp
			recs[i] = p.engine.Recommend(sp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile students: %w", err)
	}

	rep.Profiles = profiles
	for _, r := range recs {
		rep.Recommendations = append(rep.Recommendations, r...)
	}
	rep.Class = profile.ClassSummary(profiles)

	unknown, invalid := rep.Scores.Issues()
	log.Info("run complete",
		zap.Int("students", len(students)),
		zap.Int("records", rep.Records),
		zap.Int("rejected", len(rep.Rejected)),
		zap.Int("repaired", rep.Repaired),
		zap.Int("unknown_questions", unknown),
		zap.Int("invalid_records", invalid),
		zap.Int("gaps", len(rep.Scores.Gaps)),
		zap.Int("recommendations", len(rep.Recommendations)))

	return rep, nil
}
