package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/spigell/lead-scorer/internal/ai"
	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/logger"
)

// State is a stage of a scoring run. Transitions are logged.
type State string

const (
	StateIdle               State = "idle"
	StateRuleScoring        State = "rule_scoring"
	StateClassifyingBatches State = "classifying_batches"
	StateMerging            State = "merging"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

var intentPoints = map[ai.Intent]int{
	ai.IntentHigh:   50,
	ai.IntentMedium: 30,
	ai.IntentLow:    10,
}

// IntentPoints maps an intent label to its score contribution. ok is false
// for labels outside the enum.
func IntentPoints(intent ai.Intent) (points int, ok bool) {
	points, ok = intentPoints[intent]
	return points, ok
}

// Options tune how a run talks to the classifier.
type Options struct {
	// BatchSize is the number of leads per classification call.
	BatchSize int
	// Concurrency is the number of batches classified at the same time.
	Concurrency int
	// RateLimit caps classification calls per second. Zero disables it.
	RateLimit float64
	// RequestTimeout bounds a single classification call. Zero disables it.
	RequestTimeout time.Duration
}

// Scorer runs the scoring pipeline. It keeps no state between runs.
type Scorer struct {
	classifier ai.Classifier
	opts       Options
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a Scorer. Zero options fall back to sequential batches of
// DefaultBatchSize.
func New(classifier ai.Classifier, opts Options, log *zap.Logger) *Scorer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scorer{
		classifier: classifier,
		opts:       opts,
		logger:     log,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return s
}

// Run scores every lead against offer. It either returns one ScoredLead per
// input lead, in input order, or fails the whole run with an *Error.
func (s *Scorer) Run(ctx context.Context, input []leads.Lead, offer *leads.Offer) ([]ScoredLead, error) {
	log := s.logger.With(zap.String(logger.FieldRunID, uuid.NewString()))
	log.Info("scoring run", zap.String("state", string(StateIdle)), zap.Int("leads", len(input)))

	results, err := s.run(ctx, log, input, offer)
	if err != nil {
		log.Error("scoring run", zap.String("state", string(StateFailed)), zap.Error(err))
		return nil, err
	}

	log.Info("scoring run", zap.String("state", string(StateCompleted)), zap.Int("scored", len(results)))
	return results, nil
}

func (s *Scorer) run(ctx context.Context, log *zap.Logger, input []leads.Lead, offer *leads.Offer) ([]ScoredLead, error) {
	if len(input) == 0 || offer == nil || strings.TrimSpace(offer.Name) == "" {
		return nil, &Error{Kind: KindPrerequisitesMissing, Err: ErrPrerequisitesMissing}
	}
	if s.classifier == nil {
		return nil, &Error{Kind: KindClassification, Err: eris.New("no classifier configured")}
	}

	log.Info("scoring run", zap.String("state", string(StateRuleScoring)))
	rulePoints := make([]int, len(input))
	for i, lead := range input {
		rulePoints[i] = RuleScore(lead, *offer)
	}

	classified, err := s.classifyAll(ctx, log, input, *offer)
	if err != nil {
		return nil, err
	}

	log.Info("scoring run", zap.String("state", string(StateMerging)), zap.Int("classified", len(classified)))
	return merge(input, rulePoints, classified)
}

func (s *Scorer) classifyAll(ctx context.Context, log *zap.Logger, input []leads.Lead, offer leads.Offer) ([]ai.IntentResult, error) {
	batches := Chunk(input, s.opts.BatchSize)
	perBatch := make([][]ai.IntentResult, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &Error{Kind: KindClassification, Err: err}
			}

			batchLog := log.With(logger.BatchFields(i, len(batches), len(batch))...)
			batchLog.Info("scoring run", zap.String("state", string(StateClassifyingBatches)))

			results, err := s.classify(gctx, batch, offer)
			if err != nil {
				return &Error{
					Kind: KindClassification,
					Err:  eris.Wrapf(err, "batch %d of %d", i+1, len(batches)),
				}
			}

			batchLog.Debug("batch classified", zap.Int("results", len(results)))
			perBatch[i] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	classified := make([]ai.IntentResult, 0, len(input))
	for _, results := range perBatch {
		classified = append(classified, results...)
	}
	return classified, nil
}

func (s *Scorer) classify(ctx context.Context, batch []leads.Lead, offer leads.Offer) ([]ai.IntentResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "waiting for rate limiter")
		}
	}

	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	return s.classifier.Classify(ctx, batch, offer)
}

// merge joins classification results back to leads by ID, falling back to the
// exact lead name for results that carry no ID.
func merge(input []leads.Lead, rulePoints []int, classified []ai.IntentResult) ([]ScoredLead, error) {
	byID := make(map[string]ai.IntentResult, len(classified))
	byName := make(map[string]ai.IntentResult, len(classified))
	for _, res := range classified {
		if res.ID != "" {
			byID[res.ID] = res
			continue
		}
		if _, ok := byName[res.Name]; !ok {
			byName[res.Name] = res
		}
	}

	scored := make([]ScoredLead, 0, len(input))
	for i, lead := range input {
		res, ok := byID[lead.ID]
		if !ok {
			res, ok = byName[lead.Name]
		}
		if !ok {
			return nil, &Error{
				Kind: KindReconciliation,
				Lead: lead.Name,
				Err:  eris.New("no classification result for lead"),
			}
		}

		points, ok := IntentPoints(res.Intent)
		if !ok {
			return nil, &Error{
				Kind: KindReconciliation,
				Lead: lead.Name,
				Err:  fmt.Errorf("unexpected intent %q", res.Intent),
			}
		}

		scored = append(scored, ScoredLead{
			ID:           lead.ID,
			Name:         lead.Name,
			Role:         lead.Role,
			Company:      lead.Company,
			Intent:       res.Intent,
			Score:        rulePoints[i] + points,
			Reasoning:    res.Reasoning,
			RulePoints:   rulePoints[i],
			IntentPoints: points,
		})
	}

	return scored, nil
}
