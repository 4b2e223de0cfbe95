package workflow

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"asset-report/internal/config"
	"asset-report/internal/models"
	"asset-report/internal/utils"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Verdict is the quality gate decision
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictRetry
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictRetry:
		return "retry"
	case VerdictFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Decide passes a score at or above threshold, retries while budget
// remains, and fails otherwise
func Decide(total, threshold float64, retryCount, maxRetries int) Verdict {
	switch {
	case total >= threshold:
		return VerdictPass
	case retryCount < maxRetries:
		return VerdictRetry
	default:
		return VerdictFail
	}
}

// Evaluator scores rendered Markdown against a fixed rubric. Scores depend
// only on the content and the configuration.
type Evaluator struct {
	cfg      config.WorkflowConfig
	markdown goldmark.Markdown
}

// NewEvaluator creates an evaluator for the configured rubric
func NewEvaluator(cfg config.WorkflowConfig) *Evaluator {
	return &Evaluator{
		cfg:      cfg,
		markdown: goldmark.New(),
	}
}

// docSection is one H2 section of a parsed report
type docSection struct {
	title      string
	hasContent bool
}

// docOutline is what the rubric looks at
type docOutline struct {
	leadingH1    bool
	h1Count      int
	metadataPara bool
	sections     []docSection
}

// Score rates content. Component scores and the total are on 0..100.
// A document missing any required section never totals more than
// MissingSectionCap, which lies below the pass threshold.
func (ev *Evaluator) Score(content string) models.QualityScore {
	outline := ev.outline([]byte(content))

	accuracy := ev.accuracy(outline)
	completeness := ev.completeness(utf8.RuneCountInString(content))
	structure := structureScore(outline)

	w := ev.cfg.Weights
	total := w.Accuracy*accuracy + w.Completeness*completeness + w.Structure*structure
	if accuracy < 100 && total > ev.cfg.MissingSectionCap {
		total = ev.cfg.MissingSectionCap
	}
	return models.QualityScore{
		Accuracy:     utils.Round2(accuracy),
		Completeness: utils.Round2(completeness),
		Structure:    utils.Round2(structure),
		Total:        utils.Round2(total),
	}
}

func (ev *Evaluator) outline(source []byte) docOutline {
	doc := ev.markdown.Parser().Parse(text.NewReader(source))

	var out docOutline
	current := -1 // index into out.sections
	index := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			switch heading.Level {
			case 1:
				out.h1Count++
				if index == 0 {
					out.leadingH1 = true
				}
				current = -1
			case 2:
				out.sections = append(out.sections, docSection{title: strings.TrimSpace(headingText(heading, source))})
				current = len(out.sections) - 1
			}
		} else {
			if index == 1 && out.leadingH1 && n.Kind() == ast.KindParagraph {
				out.metadataPara = true
			}
			if current >= 0 {
				out.sections[current].hasContent = true
			}
		}
		index++
	}
	return out
}

// accuracy is the share of required sections present with a body
func (ev *Evaluator) accuracy(o docOutline) float64 {
	required := ev.cfg.RequiredSections
	if len(required) == 0 {
		return 100
	}
	present := 0
	for _, want := range required {
		for _, s := range o.sections {
			if strings.EqualFold(s.title, want) && s.hasContent {
				present++
				break
			}
		}
	}
	return float64(present) / float64(len(required)) * 100
}

// completeness rises linearly to 60 at MinLength, then to 100 at MaxLength
func (ev *Evaluator) completeness(length int) float64 {
	lo, hi := ev.cfg.MinLength, ev.cfg.MaxLength
	switch {
	case length >= hi:
		return 100
	case length >= lo:
		return 60 + 40*float64(length-lo)/float64(hi-lo)
	default:
		return 60 * float64(length) / float64(lo)
	}
}

// structureScore is the share of envelope checks passed
func structureScore(o docOutline) float64 {
	checks := []bool{
		o.leadingH1 && o.h1Count == 1,
		o.metadataPara,
		len(o.sections) > 0 && allSectionsHaveContent(o.sections),
		len(o.sections) > 0 && uniqueTitles(o.sections),
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks)) * 100
}

func allSectionsHaveContent(sections []docSection) bool {
	for _, s := range sections {
		if !s.hasContent {
			return false
		}
	}
	return true
}

func uniqueTitles(sections []docSection) bool {
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		key := strings.ToLower(s.title)
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// headingText collects the literal text under a heading
func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
