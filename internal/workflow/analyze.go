package workflow

import (
	"context"

	"asset-report/internal/models"
	"asset-report/internal/utils"
	"asset-report/internal/validation"
)

type analysisPayload struct {
	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Risks        []string `json:"risks"`
	Suggestions  []string `json:"suggestions"`
}

const analysisTask = `Assess the overall health of these assets. Give an overall_score from 0 to 100, a one-paragraph summary, and lists of strengths, risks and concrete suggestions.`

func (e *Engine) analyze(ctx context.Context, st *State) StageOutcome {
	var payload analysisPayload
	serr := e.ask(ctx, st, StageAnalyze, validation.SchemaAnalysis, analysisTask, snapshotsOnly, &payload)
	if serr != nil {
		st.Analysis = FallbackAnalysis(st.Fixed, st.Virtual)
		return skipped(serr, "rule-based analysis (score %.2f): %v", st.Analysis.OverallScore, serr.Err)
	}

	score := utils.Round2(utils.Clamp(payload.OverallScore, 0, 100))
	st.Analysis = &models.IntegratedAnalysis{
		Source:       models.SourceLLM,
		OverallScore: score,
		Band:         BandFor(score),
		Summary:      payload.Summary,
		Strengths:    payload.Strengths,
		Risks:        payload.Risks,
		Suggestions:  payload.Suggestions,
	}
	return completed("analysis score %.2f (%s)", score, st.Analysis.Band)
}
