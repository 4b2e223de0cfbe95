package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"asset-report/internal/models"
	"asset-report/internal/validation"
)

const systemPreamble = `You are a personal finance assistant who reviews a household's fixed assets (devices, vehicles, furniture) and virtual assets (subscriptions, memberships, digital goods).
Base every statement on the numbers provided. Do not invent assets, amounts or dates.
Respond with ONLY valid JSON matching the schema below. No markdown, no code fences, no explanatory text.`

// buildSystemPrompt appends the payload schema so the model sees the exact shape expected
func buildSystemPrompt(schemaName string) (string, error) {
	schema, err := validation.SchemaText(schemaName)
	if err != nil {
		return "", err
	}
	return systemPreamble + "\n\nJSON schema:\n" + schema, nil
}

// dataContext is the portion of the state a prompt is allowed to see
type dataContext struct {
	Kind       models.ReportKind             `json:"kind"`
	Period     string                        `json:"period"`
	FocusAreas []string                      `json:"focusAreas,omitempty"`
	Fixed      *models.FixedAssetSnapshot    `json:"fixedAssets,omitempty"`
	Virtual    *models.VirtualAssetSnapshot  `json:"virtualAssets,omitempty"`
	Analysis   *models.IntegratedAnalysis    `json:"integratedAnalysis,omitempty"`
	Comparison *models.ComparisonAnalysis    `json:"comparison,omitempty"`
	Conclusion *models.QualitativeConclusion `json:"conclusion,omitempty"`
}

// promptScope selects which earlier stage outputs a prompt includes on top
// of the snapshots and comparison
type promptScope uint8

const (
	withAnalysis promptScope = 1 << iota
	withConclusion
)

const snapshotsOnly promptScope = 0

func (p promptScope) has(flag promptScope) bool {
	return p&flag != 0
}

func buildUserPrompt(task string, st *State, scope promptScope) (string, error) {
	data := dataContext{
		Kind:       st.Task.Kind,
		Period:     st.Task.Window.String(),
		FocusAreas: st.Task.FocusAreas,
		Fixed:      st.Fixed,
		Virtual:    st.Virtual,
		Comparison: st.Comparison,
	}
	if scope.has(withAnalysis) {
		data.Analysis = st.Analysis
	}
	if scope.has(withConclusion) {
		data.Conclusion = st.Conclusion
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data context: %w", err)
	}

	var b strings.Builder
	b.WriteString(task)
	if len(st.Task.FocusAreas) > 0 {
		fmt.Fprintf(&b, "\nPay particular attention to: %s.", strings.Join(st.Task.FocusAreas, ", "))
	}
	b.WriteString("\n\nData:\n")
	b.Write(payload)
	return b.String(), nil
}

func decodePayload(raw, schemaName string, out interface{}) error {
	return validation.DecodePayload(raw, schemaName, out)
}

// newRequest assembles the prompts for one provider call
func (e *Engine) newRequest(schemaName, task string, st *State, scope promptScope) (ChatRequest, error) {
	system, err := buildSystemPrompt(schemaName)
	if err != nil {
		return ChatRequest{}, err
	}
	user, err := buildUserPrompt(task, st, scope)
	if err != nil {
		return ChatRequest{}, err
	}
	return ChatRequest{
		Purpose:     schemaName,
		System:      system,
		User:        user,
		Temperature: e.temperature,
	}, nil
}

// ask builds the request for schemaName and runs it through askJSON
func (e *Engine) ask(ctx context.Context, st *State, stage Stage, schemaName, task string, scope promptScope, out interface{}) *StageError {
	req, err := e.newRequest(schemaName, task, st, scope)
	if err != nil {
		return newStageError(ProviderResponseError, stage, err)
	}
	return e.askJSON(ctx, st, stage, req, out)
}
