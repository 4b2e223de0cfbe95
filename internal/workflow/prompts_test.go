package workflow

import (
	"strings"
	"testing"

	"asset-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserPromptScope(t *testing.T) {
	st := NewState(testTask(t, ""), testNow)
	st.Fixed = &models.FixedAssetSnapshot{TotalCount: 2}
	st.Virtual = &models.VirtualAssetSnapshot{TotalCount: 1}
	st.Analysis = &models.IntegratedAnalysis{Summary: "steady"}
	st.Conclusion = &models.QualitativeConclusion{Rating: models.RatingB}

	tests := []struct {
		name           string
		scope          promptScope
		wantAnalysis   bool
		wantConclusion bool
	}{
		{"snapshots only", snapshotsOnly, false, false},
		{"with analysis", withAnalysis, true, false},
		{"with analysis and conclusion", withAnalysis | withConclusion, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := buildUserPrompt("Summarize.", st, tt.scope)
			require.NoError(t, err)
			assert.Contains(t, prompt, `"fixedAssets"`)
			assert.Equal(t, tt.wantAnalysis, strings.Contains(prompt, `"integratedAnalysis"`))
			assert.Equal(t, tt.wantConclusion, strings.Contains(prompt, `"conclusion"`))
		})
	}
}
