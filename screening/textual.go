package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
	"github.com/Innominate-Dev/Halal-Stock-Screener/services"
)

// reasonNoFindings is the verdict reason when no text evidence raises a flag
const reasonNoFindings = "no concerning signal found"

// TextualEvaluator classifies a screened company from free-text evidence.
// Implementations fetch their own evidence: the keyword strategy reads news
// headlines, the classifier strategy reads the business summary. The
// orchestrator does not care which is active.
type TextualEvaluator interface {
	Evaluate(ctx context.Context, profile *models.CompanyProfile) (models.TextualLabel, string, error)
}

// KeywordEvaluator flags companies from news headlines using two severity
// tiers: clear-violation terms fail the company outright, doubtful terms
// flag it for human review.
type KeywordEvaluator struct {
	news          services.NewsAPIServiceInterface
	clearTerms    []string
	doubtfulTerms []string
	articleLimit  int
}

// NewKeywordEvaluator creates a KeywordEvaluator with the given term tiers
func NewKeywordEvaluator(news services.NewsAPIServiceInterface, clearTerms, doubtfulTerms []string, articleLimit int) *KeywordEvaluator {
	return &KeywordEvaluator{
		news:          news,
		clearTerms:    clearTerms,
		doubtfulTerms: doubtfulTerms,
		articleLimit:  articleLimit,
	}
}

// Evaluate fetches recent headlines for the company and scans them for
// flagged terms. A failed news fetch degrades to "no articles found" rather
// than failing the pipeline.
func (e *KeywordEvaluator) Evaluate(ctx context.Context, profile *models.CompanyProfile) (models.TextualLabel, string, error) {
	query := profile.CompanyName
	if query == "" {
		query = profile.Ticker
	}

	var texts []string
	if e.news != nil {
		articles, err := e.news.GetNews(ctx, query, e.articleLimit)
		if err != nil {
			observability.Warn("news fetch failed, proceeding without headlines",
				"ticker", profile.Ticker,
				"error", err)
		} else {
			texts = make([]string, 0, len(articles))
			for _, article := range articles {
				texts = append(texts, article.Title)
			}
		}
	}

	label, reason := e.EvaluateTexts(texts)
	return label, reason, nil
}

// EvaluateTexts scans the given texts against both term tiers. The
// clear-violation tier is checked across all texts before the doubtful tier,
// so a clear hit anywhere outranks a doubtful hit. An empty input is valid
// and yields a compliant label.
func (e *KeywordEvaluator) EvaluateTexts(texts []string) (models.TextualLabel, string) {
	for _, text := range texts {
		folded := strings.ToLower(text)
		for _, term := range e.clearTerms {
			if strings.Contains(folded, strings.ToLower(term)) {
				return models.LabelNonCompliant, fmt.Sprintf("Flagged due to headline: %s", text)
			}
		}
	}

	for _, text := range texts {
		folded := strings.ToLower(text)
		for _, term := range e.doubtfulTerms {
			if strings.Contains(folded, strings.ToLower(term)) {
				return models.LabelDoubtful, fmt.Sprintf("Potential concern, human review recommended: %s", text)
			}
		}
	}

	return models.LabelCompliant, reasonNoFindings
}

// ClassifierEvaluator delegates the textual check to an external text
// classifier over the company's business summary. It trusts the returned
// label with no keyword tie-break.
type ClassifierEvaluator struct {
	classifier services.TextClassifierInterface
}

// NewClassifierEvaluator creates a ClassifierEvaluator backed by the given
// classifier
func NewClassifierEvaluator(classifier services.TextClassifierInterface) *ClassifierEvaluator {
	return &ClassifierEvaluator{classifier: classifier}
}

// Evaluate classifies the company's business summary. A company without a
// summary has no text evidence against it and passes the textual check.
func (e *ClassifierEvaluator) Evaluate(ctx context.Context, profile *models.CompanyProfile) (models.TextualLabel, string, error) {
	if strings.TrimSpace(profile.Description) == "" {
		return models.LabelCompliant, reasonNoFindings, nil
	}

	label, err := e.classifier.Classify(ctx, profile.Description)
	if err != nil {
		return "", "", fmt.Errorf("text classification failed: %w", err)
	}

	return label, fmt.Sprintf("text classifier labeled the business summary as %s", label), nil
}

// Compile-time interface verification
var _ TextualEvaluator = (*KeywordEvaluator)(nil)
var _ TextualEvaluator = (*ClassifierEvaluator)(nil)
