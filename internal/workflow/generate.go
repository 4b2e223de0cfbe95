package workflow

import (
	"context"
	"fmt"
	"unicode/utf8"

	"asset-report/internal/models"
	"asset-report/internal/validation"
)

// maxTemperature bounds the decoding temperature however many retries run
const maxTemperature = 1.2

type narrativePayload struct {
	ExecutiveSummary string `json:"executive_summary"`
	Outlook          string `json:"outlook"`
}

const narrativeTask = `Write the executive summary (two short paragraphs, plain prose, no headings) and a one-paragraph outlook for this asset report. Refer to the conclusion's rating and the most important actions.`

// generate writes the narrative and renders the report. A failed narrative
// is left out of the document rather than replaced, so the quality gate can
// ask for another attempt.
func (e *Engine) generate(ctx context.Context, st *State) StageOutcome {
	note := ""
	var degraded *StageError
	st.Narrative = nil

	if e.provider == nil || !st.Task.HasCredential() {
		st.Narrative = FallbackNarrative(st)
		note = ", rule-based narrative"
	} else {
		req, err := e.newRequest(validation.SchemaNarrative, narrativeTask, st, withAnalysis|withConclusion)
		if err != nil {
			degraded = newStageError(ProviderResponseError, StageGenerate, err)
		} else {
			req.Temperature = e.retryTemperature(st.RetryCount)
			var payload narrativePayload
			if serr := e.askJSON(ctx, st, StageGenerate, req, &payload); serr != nil {
				degraded = serr
			} else {
				st.Narrative = &models.Narrative{
					Source:           models.SourceLLM,
					ExecutiveSummary: payload.ExecutiveSummary,
					Outlook:          payload.Outlook,
				}
			}
		}
	}

	content, err := Render(st)
	if err != nil {
		return failed(newStageError(RenderError, StageGenerate, err))
	}
	st.Content = content
	if degraded != nil {
		note = fmt.Sprintf(", narrative omitted: %v", degraded.Err)
	}
	out := completed("attempt %d rendered %d characters%s", st.RetryCount+1, utf8.RuneCountInString(content), note)
	out.Err = degraded
	return out
}

func (e *Engine) retryTemperature(retryCount int) float64 {
	t := e.temperature + e.cfg.RetryTemperatureStep*float64(retryCount)
	if t > maxTemperature {
		return maxTemperature
	}
	return t
}
