// Package sentiment labels cleaned comments as negative, neutral or positive.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Label is a sentiment class.
type Label string

const (
	Negative Label = "negative"
	Neutral  Label = "neutral"
	Positive Label = "positive"
)

// Labels lists every class in model order.
var Labels = []Label{Negative, Neutral, Positive}

// ParseLabel maps free-form classifier output onto a Label.
func ParseLabel(s string) (Label, bool) {
	switch Label(normalize(s)) {
	case Negative, "neg", "tiêu cực":
		return Negative, true
	case Neutral, "neu", "trung tính", "mixed":
		return Neutral, true
	case Positive, "pos", "tích cực":
		return Positive, true
	default:
		return "", false
	}
}

// Classifier labels a batch of texts. The result is aligned with texts.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Label, error)
}

// New returns the classifier selected by cfg.Provider.
func New(cfg config.SentimentConfig, logger *slog.Logger) (Classifier, error) {
	switch cfg.Provider {
	case "", "lexicon":
		return NewLexiconClassifier(), nil
	case string(ProviderOllama), string(ProviderOpenAI):
		return NewLLMClassifier(cfg, NewLexiconClassifier(), logger), nil
	default:
		return nil, fmt.Errorf("unsupported sentiment provider: %s", cfg.Provider)
	}
}

// Analyzer runs a Classifier over comment tables in fixed-size batches.
type Analyzer struct {
	classifier Classifier
	batchSize  int
	display    map[Label]string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewAnalyzer creates an Analyzer. cfg.Labels optionally renames the classes
// in the output, e.g. to localized names. metrics may be nil.
func NewAnalyzer(classifier Classifier, cfg config.SentimentConfig, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	display := make(map[Label]string, len(Labels))
	for _, l := range Labels {
		display[l] = string(l)
		if name, ok := cfg.Labels[string(l)]; ok && name != "" {
			display[l] = name
		}
	}
	return &Analyzer{
		classifier: classifier,
		batchSize:  max(cfg.BatchSize, 1),
		display:    display,
		logger:     logger.With("component", "sentiment"),
		metrics:    metrics,
	}
}

// Label adds a sentiment to every comment, preserving order.
func (a *Analyzer) Label(ctx context.Context, comments []types.CleanComment) ([]types.LabeledComment, error) {
	out := make([]types.LabeledComment, 0, len(comments))

	for start := 0; start < len(comments); start += a.batchSize {
		end := min(start+a.batchSize, len(comments))
		batch := comments[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Comment
		}

		labels, err := a.classifier.Classify(ctx, texts)
		if err != nil {
			return nil, &types.PipelineError{Stage: "sentiment", Err: err}
		}
		if len(labels) != len(batch) {
			return nil, &types.PipelineError{
				Stage: "sentiment",
				Err:   fmt.Errorf("classifier returned %d labels for %d texts", len(labels), len(batch)),
			}
		}

		for i, c := range batch {
			out = append(out, types.LabeledComment{
				URL:       c.URL,
				Comment:   c.Comment,
				Sentiment: a.display[labels[i]],
			})
		}
		a.logger.Debug("batch labeled", "from", start, "to", end)
	}

	if a.metrics != nil {
		a.metrics.CommentsLabeled.Add(int64(len(out)))
	}
	a.logger.Info("sentiment analysis finished", "comments", len(out))
	return out, nil
}

// DisplayNames returns the output name of every class in model order.
func (a *Analyzer) DisplayNames() []string {
	names := make([]string, len(Labels))
	for i, l := range Labels {
		names[i] = a.display[l]
	}
	return names
}
