package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"asset-report/internal/config"
	"asset-report/internal/models"
	"asset-report/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeStore serves fixtures keyed by the window start date
type fakeStore struct {
	fixed   map[string][]models.FixedAssetRecord
	virtual map[string][]models.VirtualAssetRecord
	income  map[string][]models.IncomeRecord

	fixedErr   map[string]error
	virtualErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fixed:      make(map[string][]models.FixedAssetRecord),
		virtual:    make(map[string][]models.VirtualAssetRecord),
		income:     make(map[string][]models.IncomeRecord),
		fixedErr:   make(map[string]error),
		virtualErr: make(map[string]error),
	}
}

func (f *fakeStore) QueryFixedAssets(ctx context.Context, userID string, window models.Window) ([]models.FixedAssetRecord, error) {
	key := utils.FormatDate(window.Start)
	if err := f.fixedErr[key]; err != nil {
		return nil, err
	}
	return f.fixed[key], nil
}

func (f *fakeStore) QueryVirtualAssets(ctx context.Context, userID string, window models.Window) ([]models.VirtualAssetRecord, error) {
	key := utils.FormatDate(window.Start)
	if err := f.virtualErr[key]; err != nil {
		return nil, err
	}
	return f.virtual[key], nil
}

func (f *fakeStore) QueryIncome(ctx context.Context, userID string, window models.Window) ([]models.IncomeRecord, error) {
	return f.income[utils.FormatDate(window.Start)], nil
}

// fakeSink keeps every write so tests can inspect the sequence
type fakeSink struct {
	mu          sync.Mutex
	checkpoints []*models.Report
	completed   []*models.Report
	failed      []*models.Report

	completeErr error
	failErr     error
}

func (s *fakeSink) Checkpoint(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints = append(s.checkpoints, report)
	return nil
}

func (s *fakeSink) Complete(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completed = append(s.completed, report)
	return nil
}

func (s *fakeSink) Fail(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.failed = append(s.failed, report)
	return nil
}

// scriptedProvider answers each purpose from a queue; the last answer repeats
type scriptedProvider struct {
	mu        sync.Mutex
	responses map[string][]string
	errs      map[string]error
	calls     []ChatRequest
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		responses: map[string][]string{
			"analysis":   {goodAnalysis},
			"conclusion": {goodConclusion},
			"narrative":  {goodNarrative},
		},
		errs: make(map[string]error),
	}
}

func (p *scriptedProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)

	if err := p.errs[req.Purpose]; err != nil {
		return "", err
	}
	queue := p.responses[req.Purpose]
	if len(queue) == 0 {
		return "", fmt.Errorf("no scripted response for %s", req.Purpose)
	}
	answer := queue[0]
	if len(queue) > 1 {
		p.responses[req.Purpose] = queue[1:]
	}
	return answer, nil
}

func (p *scriptedProvider) callsFor(purpose string) []ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ChatRequest
	for _, c := range p.calls {
		if c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}

const (
	goodAnalysis   = `{"overall_score":72,"summary":"Assets are in decent shape.","strengths":["Most devices are in use"],"risks":["The gym membership is barely used"],"suggestions":["Cancel the gym membership"]}`
	goodConclusion = `{"rating":"B+","severity":"low","findings":["Fixed assets hold their value"],"strengths":["Laptop sees daily use"],"risks":["Idle bike"],"actions":["Cancel the gym membership","Rent out the bike"]}`
	goodNarrative  = "```json\n{\"executive_summary\":\"This week your assets held their value.\\n\\nSubscriptions need attention.\",\"outlook\":\"Expect steady value next week.\"}\n```"
)

var testNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func testWindow(t *testing.T) models.Window {
	t.Helper()
	w, err := models.NewWindow("2026-03-02", "2026-03-08")
	require.NoError(t, err)
	return w
}

func testTask(t *testing.T, credential string) models.TaskContext {
	return models.TaskContext{
		ReportID:   "report-1",
		UserID:     "user-1",
		Kind:       models.ReportKindWeekly,
		Window:     testWindow(t),
		Credential: credential,
	}
}

func date(s string) time.Time {
	d, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedCurrentWindow loads the standard fixture for the test window
func seedCurrentWindow(store *fakeStore) {
	key := "2026-03-02"
	store.fixed[key] = []models.FixedAssetRecord{
		{ID: "f1", Name: "Laptop", Category: "electronics", PurchasePrice: money("1500"), CurrentValue: money("1200"), PurchaseDate: date("2024-06-01"), Status: models.FixedStatusInUse},
		{ID: "f2", Name: "Bike", Category: "vehicle", PurchasePrice: money("800"), CurrentValue: money("500"), PurchaseDate: date("2023-04-10"), Status: models.FixedStatusIdle},
		{ID: "f3", Name: "Camera", Category: "electronics", PurchasePrice: money("600"), CurrentValue: money("0"), PurchaseDate: date("2019-01-01"), Status: models.FixedStatusDisposed},
	}
	gymExpiry := date("2026-03-20")
	store.virtual[key] = []models.VirtualAssetRecord{
		{ID: "v1", Name: "Streaming", Category: "entertainment", Cost: money("15"), StartDate: date("2025-01-01"), Status: models.VirtualStatusActive, UsageCount: 10, ExpectedUsage: 8},
		{ID: "v2", Name: "Gym", Category: "health", Cost: money("40"), StartDate: date("2025-09-20"), ExpiryDate: &gymExpiry, Status: models.VirtualStatusActive, UsageCount: 1, ExpectedUsage: 12},
		{ID: "v3", Name: "Cloud storage", Category: "software", Cost: money("5"), StartDate: date("2025-03-01"), Status: models.VirtualStatusExpired},
	}
	store.income[key] = []models.IncomeRecord{
		{ID: "i1", AssetID: "f2", AssetKind: "fixed", Amount: money("120"), Date: date("2026-03-04"), Source: "rental"},
	}
}

// seedPriorWindow loads the week before, when a tablet was still held
func seedPriorWindow(store *fakeStore) {
	key := "2026-02-23"
	store.fixed[key] = []models.FixedAssetRecord{
		{ID: "f1", Name: "Laptop", Category: "electronics", PurchasePrice: money("1500"), CurrentValue: money("1250"), PurchaseDate: date("2024-06-01"), Status: models.FixedStatusInUse},
		{ID: "f2", Name: "Bike", Category: "vehicle", PurchasePrice: money("800"), CurrentValue: money("520"), PurchaseDate: date("2023-04-10"), Status: models.FixedStatusInUse},
		{ID: "f4", Name: "Tablet", Category: "electronics", PurchasePrice: money("460"), CurrentValue: money("300"), PurchaseDate: date("2025-05-15"), Status: models.FixedStatusIdle},
	}
	store.virtual[key] = []models.VirtualAssetRecord{
		{ID: "v1", Name: "Streaming", Category: "entertainment", Cost: money("15"), StartDate: date("2025-01-01"), Status: models.VirtualStatusActive, UsageCount: 9, ExpectedUsage: 8},
	}
}

// testConfig is the shipped quality gate with a short store timeout
func testConfig() config.WorkflowConfig {
	cfg := config.DefaultWorkflowConfig()
	cfg.StoreTimeout = time.Second
	return cfg
}

func newTestEngine(t *testing.T, store AssetStore, sink ReportSink, provider Provider, cfg config.WorkflowConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(store, sink, provider, cfg, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return engine
}

func traceStages(trace models.ExecutionTrace) []string {
	out := make([]string, len(trace))
	for i, e := range trace {
		out[i] = e.Stage
	}
	return out
}
