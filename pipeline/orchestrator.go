package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/cache"
	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/history"
	"github.com/campusrag/campusrag/internal/metrics"
	"github.com/campusrag/campusrag/llm"
	"github.com/campusrag/campusrag/rag"
	"github.com/campusrag/campusrag/records"
	"github.com/campusrag/campusrag/types"
)

// ApologyAnswer is the fixed answer returned when a collaborator fails
// mid-pipeline. The upstream reason is logged, never exposed.
const ApologyAnswer = "Sorry, I couldn't process your question right now. Please try again in a moment."

// Source attributes part of an answer to an indexed chunk.
type Source struct {
	Content    string `json:"content"`
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
}

// QueryResult is the terminal output of one pipeline run. Answer is
// never empty; Sources is empty unless the route was knowledge.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Route   Route    `json:"-"`
	Sources []Source `json:"sources"`
	Cached  bool     `json:"-"`
}

// state is the per-request value threaded through the stages. Each
// stage receives a copy and returns an extended copy; nothing is shared
// between requests.
type state struct {
	question string
	userID   string
	route    Route
	topK     int
	chunks   []rag.RetrievedChunk
	prompt   string
	answer   string
}

// Orchestrator drives one question through classify, dispatch,
// optional retrieval or record loading, prompt rendering, completion,
// and history append.
type Orchestrator struct {
	retriever rag.Retriever
	completer llm.CompletionProvider
	records   records.Store
	log       history.Store
	answers   *cache.AnswerCache
	metrics   *metrics.Collector
	cfg       config.PipelineConfig
	logger    *zap.Logger
}

// NewOrchestrator wires the pipeline. The answer cache and metrics
// collector may be nil; history and the three adapters are required.
func NewOrchestrator(
	retriever rag.Retriever,
	completer llm.CompletionProvider,
	recordStore records.Store,
	log history.Store,
	answers *cache.AnswerCache,
	collector *metrics.Collector,
	cfg config.PipelineConfig,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.RetrieveTimeout <= 0 {
		cfg.RetrieveTimeout = 10 * time.Second
	}
	if cfg.CompleteTimeout <= 0 {
		cfg.CompleteTimeout = 60 * time.Second
	}

	return &Orchestrator{
		retriever: retriever,
		completer: completer,
		records:   recordStore,
		log:       log,
		answers:   answers,
		metrics:   collector,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "orchestrator")),
	}
}

// Answer runs the full pipeline for one question with the configured
// top-k. On collaborator failure it returns both a terminal result
// carrying the fixed apology answer and the typed upstream error; the
// caller decides how much of the error to expose.
func (o *Orchestrator) Answer(ctx context.Context, question, userID string) (*QueryResult, error) {
	return o.AnswerWithTopK(ctx, question, userID, 0)
}

// AnswerWithTopK overrides how many chunks back a knowledge answer.
// topK <= 0 falls back to the configured default.
func (o *Orchestrator) AnswerWithTopK(ctx context.Context, question, userID string, topK int) (*QueryResult, error) {
	start := time.Now()
	if topK <= 0 {
		topK = o.cfg.TopK
	}

	if o.answers != nil {
		if answer, ok := o.answers.Get(ctx, question); ok {
			o.metrics.CacheHit()
			result := &QueryResult{Answer: answer, Route: Classify(question), Sources: []Source{}, Cached: true}
			o.appendHistory(ctx, userID, question, answer)
			o.metrics.ObserveQuery(result.Route.String(), "cached", time.Since(start).Seconds())
			return result, nil
		}
		o.metrics.CacheMiss()
	}

	st := state{question: question, userID: userID, route: Classify(question), topK: topK}

	st, err := o.dispatch(ctx, st)
	if err != nil {
		o.logger.Error("pipeline stage failed",
			zap.String("route", st.route.String()),
			zap.String("user_id", userID),
			zap.Error(err))
		o.metrics.ObserveQuery(st.route.String(), "error", time.Since(start).Seconds())

		result := &QueryResult{Answer: ApologyAnswer, Route: st.route, Sources: []Source{}}
		o.appendHistory(ctx, userID, question, ApologyAnswer)
		return result, err
	}

	result := &QueryResult{Answer: st.answer, Route: st.route, Sources: sourcesFrom(st)}

	o.appendHistory(ctx, userID, question, st.answer)
	if o.answers != nil {
		o.answers.Set(ctx, question, st.answer)
	}

	o.metrics.ObserveQuery(st.route.String(), "ok", time.Since(start).Seconds())
	o.logger.Info("question answered",
		zap.String("route", st.route.String()),
		zap.Int("sources", len(result.Sources)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// dispatch drives the branch states. The route switch is exhaustive:
// adding a Route constant without a case here is a compile-visible gap
// in this function, not a silent misroute at runtime.
func (o *Orchestrator) dispatch(ctx context.Context, st state) (state, error) {
	switch st.route {
	case RouteGreeting:
		st.answer = Greet(st.question)
		return st, nil

	case RouteKnowledge:
		next, err := o.retrieve(ctx, st)
		if err != nil {
			return next, err
		}
		next.prompt = RenderKnowledge(next.question, next.chunks)
		return o.complete(ctx, next)

	case RouteRecord:
		data := o.loadRecords(ctx)
		st.prompt = RenderRecord(st.question, data)
		return o.complete(ctx, st)

	case RouteChat:
		st.prompt = RenderChat(st.question)
		return o.complete(ctx, st)

	default:
		// Classify is total; this is unreachable.
		st.prompt = RenderChat(st.question)
		return o.complete(ctx, st)
	}
}

func (o *Orchestrator) retrieve(ctx context.Context, st state) (state, error) {
	rctx, cancel := context.WithTimeout(ctx, o.cfg.RetrieveTimeout)
	defer cancel()

	chunks, err := o.retriever.Retrieve(rctx, st.question, st.topK)
	if err != nil {
		return st, types.NewError(types.ErrRetrievalUnavailable, "retrieval failed").WithCause(err)
	}

	st.chunks = chunks
	return st, nil
}

// loadRecords degrades to an empty dataset on failure: the record
// template then instructs the model to answer with the fixed
// not-found phrase.
func (o *Orchestrator) loadRecords(ctx context.Context) map[string]any {
	data, err := o.records.Load(ctx)
	if err != nil {
		o.logger.Warn("record store unreadable, using empty dataset", zap.Error(err))
	}
	if data == nil {
		data = map[string]any{}
	}
	return data
}

func (o *Orchestrator) complete(ctx context.Context, st state) (state, error) {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.CompleteTimeout)
	defer cancel()

	answer, err := o.completer.Complete(cctx, st.prompt)
	if err != nil {
		return st, types.NewError(types.ErrCompletionUnavailable, "completion failed").WithCause(err)
	}
	if answer == "" {
		return st, types.NewError(types.ErrCompletionUnavailable, "completion returned empty answer")
	}

	st.answer = answer
	return st, nil
}

// appendHistory records the turn. Write failures are logged and
// swallowed: the computed answer must still reach the caller.
func (o *Orchestrator) appendHistory(ctx context.Context, userID, question, answer string) {
	if o.log == nil || userID == "" {
		return
	}
	if err := o.log.Append(ctx, userID, history.Turn{Question: question, Answer: answer}); err != nil {
		o.logger.Warn("history append failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// sourcesFrom exposes retrieved chunks as attributions only for the
// knowledge route; every other route answers without sources.
func sourcesFrom(st state) []Source {
	if st.route != RouteKnowledge {
		return []Source{}
	}
	sources := make([]Source, 0, len(st.chunks))
	for _, chunk := range st.chunks {
		sources = append(sources, Source{
			Content:    chunk.Content,
			DocID:      chunk.DocID,
			ChunkIndex: chunk.ChunkIndex,
		})
	}
	return sources
}
