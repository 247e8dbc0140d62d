package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// Run is the header of one stored pipeline run.
type Run struct {
	ID        string
	Sequence  int64
	StartedAt time.Time
	// Source describes the input, e.g. "simulated" or a CSV path.
	Source   string
	Seed     *uint64
	Students int
	Records  int
	Rejected int
	Repaired int
	Excluded int
	Gaps     int
	// Issues holds one line per reported problem.
	Issues []string
}

// TopicScoreRow is a persisted per-topic score with its profile labels.
type TopicScoreRow struct {
	StudentID      string
	Topic          string
	Accuracy       float64
	MeanTime       float64
	MeanConfidence float64
	Attempts       int
	Level          string
	Label          string
}

// SummaryRow is a persisted overall summary.
type SummaryRow struct {
	StudentID string
	Accuracy  float64
	MeanTime  float64
	Attempts  int
	Level     string
	Label     string
}

// RecommendationRow is a persisted recommendation. Rank is its position
// in the student's ordered list, starting at 1.
type RecommendationRow struct {
	StudentID     string
	Rank          int
	Topic         string
	Priority      int
	Score         float64
	Justification string
	Action        string
}

// RunRecord is everything saved for one run.
type RunRecord struct {
	Run             Run
	TopicScores     []TopicScoreRow
	Summaries       []SummaryRow
	Recommendations []RecommendationRow
}

// QueryOpts configures run listing.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // started_at >= From
}

// RunRepo persists and queries run history.
type RunRepo interface {
	// Save stores a run and its rows atomically, assigning Run.Sequence.
	Save(ctx context.Context, rec *RunRecord) error

	// List returns run headers, newest first.
	List(ctx context.Context, opts QueryOpts) ([]Run, error)

	// Get returns one run with all of its rows.
	Get(ctx context.Context, id string) (*RunRecord, error)

	// StudentHistory returns a student's summaries across runs, newest first.
	StudentHistory(ctx context.Context, studentID string, limit int) ([]StudentRun, error)

	// Prune deletes all but the N most recent runs.
	Prune(ctx context.Context, keep int) error
}

// StudentRun pairs a run header with one student's summary in that run.
type StudentRun struct {
	Run     Run
	Summary SummaryRow
}

type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *runRepo) Save(ctx context.Context, rec *RunRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return err
	}

	run := &rec.Run
	var seed any
	if run.Seed != nil {
		seed = int64(*run.Seed)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, sequence, started_at, source, seed, students, records, rejected, repaired, excluded, gaps, issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, seq, run.StartedAt.UTC(), run.Source, seed, run.Students, run.Records,
		run.Rejected, run.Repaired, run.Excluded, run.Gaps, strings.Join(run.Issues, "\n"))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, ts := range rec.TopicScores {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO topic_scores (run_id, student_id, topic, accuracy, mean_time, mean_confidence, attempts, level, label)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, ts.StudentID, ts.Topic, ts.Accuracy, ts.MeanTime, ts.MeanConfidence, ts.Attempts, ts.Level, ts.Label)
		if err != nil {
			return fmt.Errorf("insert topic score %s/%s: %w", ts.StudentID, ts.Topic, err)
		}
	}

	for _, s := range rec.Summaries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO summaries (run_id, student_id, accuracy, mean_time, attempts, level, label)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, s.StudentID, s.Accuracy, s.MeanTime, s.Attempts, s.Level, s.Label)
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", s.StudentID, err)
		}
	}

	for _, rr := range rec.Recommendations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recommendations (run_id, student_id, rank, topic, priority, score, justification, action)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, rr.StudentID, rr.Rank, rr.Topic, rr.Priority, rr.Score, rr.Justification, rr.Action)
		if err != nil {
			return fmt.Errorf("insert recommendation %s #%d: %w", rr.StudentID, rr.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	run.Sequence = seq
	return nil
}

const runColumns = `id, sequence, started_at, source, seed, students, records, rejected, repaired, excluded, gaps, issues`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (Run, error) {
	var (
		run    Run
		seed   sql.NullInt64
		issues string
	)
	err := sc.Scan(&run.ID, &run.Sequence, &run.StartedAt, &run.Source, &seed, &run.Students,
		&run.Records, &run.Rejected, &run.Repaired, &run.Excluded, &run.Gaps, &issues)
	if err != nil {
		return Run{}, err
	}
	if seed.Valid {
		v := uint64(seed.Int64)
		run.Seed = &v
	}
	if issues != "" {
		run.Issues = strings.Split(issues, "\n")
	}
	return run, nil
}

func (r *runRepo) List(ctx context.Context, opts QueryOpts) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if !opts.From.IsZero() {
		query += ` WHERE started_at >= ?`
		args = append(args, opts.From.UTC())
	}
	query += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *runRepo) Get(ctx context.Context, id string) (*RunRecord, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	rec := &RunRecord{Run: run}

	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, topic, accuracy, mean_time, mean_confidence, attempts, level, label
		 FROM topic_scores WHERE run_id = ? ORDER BY student_id, topic`, id)
	if err != nil {
		return nil, fmt.Errorf("query topic scores: %w", err)
	}
	for rows.Next() {
		var ts TopicScoreRow
		if err := rows.Scan(&ts.StudentID, &ts.Topic, &ts.Accuracy, &ts.MeanTime, &ts.MeanConfidence, &ts.Attempts, &ts.Level, &ts.Label); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan topic score: %w", err)
		}
		rec.TopicScores = append(rec.TopicScores, ts)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT student_id, accuracy, mean_time, attempts, level, label
		 FROM summaries WHERE run_id = ? ORDER BY student_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.StudentID, &s.Accuracy, &s.MeanTime, &s.Attempts, &s.Level, &s.Label); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		rec.Summaries = append(rec.Summaries, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT student_id, rank, topic, priority, score, justification, action
		 FROM recommendations WHERE run_id = ? ORDER BY student_id, rank`, id)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rr RecommendationRow
		if err := rows.Scan(&rr.StudentID, &rr.Rank, &rr.Topic, &rr.Priority, &rr.Score, &rr.Justification, &rr.Action); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.Recommendations = append(rec.Recommendations, rr)
	}
	return rec, rows.Err()
}

func (r *runRepo) StudentHistory(ctx context.Context, studentID string, limit int) ([]StudentRun, error) {
	query := `SELECT r.id, r.sequence, r.started_at, r.source, r.seed, r.students, r.records, r.rejected,
			r.repaired, r.excluded, r.gaps, r.issues,
			s.student_id, s.accuracy, s.mean_time, s.attempts, s.level, s.label
		FROM summaries s JOIN runs r ON r.id = s.run_id
		WHERE s.student_id = ?
		ORDER BY r.sequence DESC`
	args := []any{studentID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query student history: %w", err)
	}
	defer rows.Close()

	var out []StudentRun
	for rows.Next() {
		var (
			sr     StudentRun
			seed   sql.NullInt64
			issues string
		)
		err := rows.Scan(&sr.Run.ID, &sr.Run.Sequence, &sr.Run.StartedAt, &sr.Run.Source, &seed,
			&sr.Run.Students, &sr.Run.Records, &sr.Run.Rejected, &sr.Run.Repaired, &sr.Run.Excluded,
			&sr.Run.Gaps, &issues,
			&sr.Summary.StudentID, &sr.Summary.Accuracy, &sr.Summary.MeanTime, &sr.Summary.Attempts,
			&sr.Summary.Level, &sr.Summary.Label)
		if err != nil {
			return nil, fmt.Errorf("scan student history: %w", err)
		}
		if seed.Valid {
			v := uint64(seed.Int64)
			sr.Run.Seed = &v
		}
		if issues != "" {
			sr.Run.Issues = strings.Split(issues, "\n")
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (r *runRepo) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return fmt.Errorf("prune: keep must be >= 0, got %d", keep)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY sequence DESC LIMIT ?)`
	for _, table := range []string{"recommendations", "summaries", "topic_scores"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id IN (`+stale+`)`, keep); err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return tx.Commit()
}
