package generation

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/quota"
)

// maxPromptChars caps the user prompt, in characters, before it is turned
// into an edit instruction.
const maxPromptChars = 1000

// Request is one inbound generation, already authenticated and with the
// client identity derived.
type Request struct {
	Email          string
	ClientIdentity string
	Prompt         string
	Images         []image.SourceImage
	RequestID      string
}

// Result is a successful generation with the post-commit accounting state.
type Result struct {
	ImageData          string
	MimeType           string
	Remaining          int64
	BudgetRemainingKrw int64
	CreditUnit         int64
}

// Orchestrator sequences one request through decision, provider call and
// commit. The ordering invariant is strict: no ledger is charged before the
// provider confirms success, so a failed generation never costs the user
// anything. The flip side is that the admission races documented on the
// engine are the only source of over-admission.
type Orchestrator struct {
	engine *quota.Engine
	editor image.Editor
	logger zerolog.Logger
}

func NewOrchestrator(engine *quota.Engine, editor image.Editor, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, editor: editor, logger: logger}
}

// Generate runs the full sequence. Admission denials come back as
// domain.ErrFreeLimitExceeded / domain.ErrBudgetExceeded; provider errors
// propagate without any ledger mutation.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	decision, err := o.engine.Check(ctx, req.Email, req.ClientIdentity)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		switch decision.Reason {
		case quota.DenyBudgetExceeded:
			return nil, domain.ErrBudgetExceeded
		default:
			return nil, domain.ErrFreeLimitExceeded
		}
	}

	edited, err := o.editor.Edit(ctx, image.EditRequest{
		Instruction: instruction(req.Prompt),
		Images:      req.Images,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}

	commit, err := o.engine.Commit(ctx, decision, req.Email, req.ClientIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			// A concurrent consumer drained the balance between check and
			// commit. The generated image is abandoned; provider cost is
			// already incurred and accepted.
			o.logger.Warn().
				Str("request_id", req.RequestID).
				Str("email", req.Email).
				Msg("credit balance drained between check and commit")
			return nil, domain.ErrFreeLimitExceeded
		}
		return nil, err
	}

	return &Result{
		ImageData:          edited.Data,
		MimeType:           edited.MIME,
		Remaining:          commit.Remaining,
		BudgetRemainingKrw: commit.BudgetRemainingKrw,
		CreditUnit:         quota.CreditUnit,
	}, nil
}

// instruction frames the prompt as an image-editing instruction. Truncation
// counts characters, not bytes, so a multibyte prompt is never cut inside a
// rune.
func instruction(prompt string) string {
	if runes := []rune(prompt); len(runes) > maxPromptChars {
		prompt = string(runes[:maxPromptChars])
	}
	return prompt + "\n\nReturn the edited image as output."
}
