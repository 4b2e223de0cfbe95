package workflow

import (
	"context"

	"asset-report/internal/models"
	"asset-report/internal/validation"
)

type conclusionPayload struct {
	Rating    string   `json:"rating"`
	Severity  string   `json:"severity"`
	Findings  []string `json:"findings"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Actions   []string `json:"actions"`
}

const conclusionTask = `Write the final verdict on this period. Grade it with a rating (A+, A, B+, B, C, D) and a risk severity (low, medium, high), list the key findings, strengths and risks, and give actions ordered from most to least important.`

func (e *Engine) conclude(ctx context.Context, st *State) StageOutcome {
	var payload conclusionPayload
	serr := e.ask(ctx, st, StageConclude, validation.SchemaConclusion, conclusionTask, withAnalysis, &payload)
	if serr != nil {
		st.Conclusion = FallbackConclusion(st)
		return skipped(serr, "rule-based conclusion (rating %s): %v", st.Conclusion.Rating, serr.Err)
	}

	st.Conclusion = &models.QualitativeConclusion{
		Source:    models.SourceLLM,
		Rating:    models.Rating(payload.Rating),
		Severity:  models.Severity(payload.Severity),
		Findings:  payload.Findings,
		Strengths: payload.Strengths,
		Risks:     payload.Risks,
		Actions:   payload.Actions,
	}
	return completed("rated %s, severity %s", payload.Rating, payload.Severity)
}
