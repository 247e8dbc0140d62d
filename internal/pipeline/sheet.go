package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alesfias96/student-performance-ai/internal/answer"
)

// ErrSheetRejected is returned when a manual answer sheet has any row that
// cannot be accepted as written.
var ErrSheetRejected = errors.New("answer sheet rejected")

// SheetResult is a manual answer sheet accepted against the bank.
type SheetResult struct {
	Records   []answer.Record
	Repaired  int
	Defaulted int
}

// IngestSheet normalizes a hand-marked sheet. Unlike Run it is strict: a
// rejected row or a question missing from the bank fails the whole sheet,
// so nothing half-corrected reaches the answers file.
func (p *Pipeline) IngestSheet(raws []answer.RawRecord) (SheetResult, error) {
	ing := answer.Ingest(raws, p.vocab)

	var problems []string
	for _, rej := range ing.Rejected {
		problems = append(problems, rej.Error())
	}
	for _, r := range ing.Records {
		if _, ok := p.bank.Question(r.QuestionID); !ok {
			problems = append(problems, fmt.Sprintf("question %q is not in the bank", r.QuestionID))
		}
	}
	if len(problems) > 0 {
		return SheetResult{}, fmt.Errorf("%w:\n  %s", ErrSheetRejected, strings.Join(problems, "\n  "))
	}

	if ing.Repaired > 0 {
		p.log.Info("relabelled wrong answers marked none", zap.Int("count", ing.Repaired))
	}
	return SheetResult{Records: ing.Records, Repaired: ing.Repaired, Defaulted: ing.Defaulted}, nil
}
