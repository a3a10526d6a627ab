// Package chat runs conversation turns: it decides per message whether
// retrieval is needed, scans the configured corpus when it is, and keeps each
// thread's history across turns.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/wikidocu"
	"github.com/google/uuid"
)

// DefaultQueryCount is the number of keyword phrases requested per turn.
const DefaultQueryCount = 3

// Ensure Engine implements wikidocu.Engine at compile time.
var _ wikidocu.Engine = (*Engine)(nil)

// Engine implements wikidocu.Engine as an explicit state machine. The zero
// value is not usable; set at least Completer, Scanner, Extractor and
// Threads.
type Engine struct {
	Completer wikidocu.Completer
	Scanner   wikidocu.Scanner
	Extractor wikidocu.EvidenceExtractor
	Threads   wikidocu.ThreadStore

	// Roots are the files, directories and URLs scanned on retrieval turns.
	Roots []string

	// QueryCount caps the keyword phrases generated per turn.
	// Defaults to DefaultQueryCount.
	QueryCount int

	// Retention is applied to the thread after every turn.
	Retention wikidocu.RetentionPolicy

	Logger *slog.Logger

	// Now and NewID default to time.Now and random UUIDs.
	Now   func() time.Time
	NewID func() string

	mu    sync.Mutex
	locks map[string]chan struct{}
}

// run holds the working state of one turn as it moves through the machine.
type run struct {
	thread  *wikidocu.Thread
	turn    *wikidocu.Turn
	history []wikidocu.Message
	queries []string
	answer  string
}

type step func(ctx context.Context, r *run) (State, error)

// Turn answers message within thread threadID. The thread is loaded, or
// created on first use, and saved only after an answer was produced, so a
// failed turn leaves stored state untouched.
func (e *Engine) Turn(ctx context.Context, threadID, message string) (*wikidocu.Turn, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "thread ID required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "message required")
	}

	unlock, err := e.lock(ctx, threadID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	thread, err := e.Threads.FindThreadByID(ctx, threadID)
	if wikidocu.ErrorCode(err) == wikidocu.ENOTFOUND {
		thread = wikidocu.NewThread(threadID)
	} else if err != nil {
		return nil, err
	}

	r := &run{
		thread: thread.Clone(),
		turn:   &wikidocu.Turn{ID: e.newID(), Question: message},
	}
	r.history = append(append([]wikidocu.Message(nil), thread.Messages...),
		wikidocu.Message{Role: wikidocu.RoleUser, Content: message})

	steps := map[State]step{
		StateQueryGeneration: e.generateQueries,
		StateRoutingDecision: e.route,
		StateFileResearch:    e.research,
		StateDirectChat:      e.directChat,
		StateFinalAnswer:     e.finalAnswer,
	}

	state := StateQueryGeneration
	for state != StateEnd {
		next, err := steps[state](ctx, r)
		if err != nil {
			return nil, err
		}
		if !CanTransition(state, next) {
			return nil, wikidocu.Errorf(wikidocu.EINTERNAL, "illegal transition %s -> %s", state, next)
		}
		e.logger().Debug("turn transition", "thread", threadID, "turn", r.turn.ID, "from", state, "to", next)
		state = next
	}

	if err := e.end(ctx, r); err != nil {
		return nil, err
	}
	return r.turn, nil
}

// generateQueries asks for keyword phrases for the latest message. A reply
// that cannot be used is logged and treated as no keywords, which routes the
// turn to direct chat.
func (e *Engine) generateQueries(ctx context.Context, r *run) (State, error) {
	n := e.QueryCount
	if n <= 0 {
		n = DefaultQueryCount
	}

	var list wikidocu.SearchQueryList
	err := e.Completer.CompleteStructured(ctx, BuildQueryRequest(r.history, n, e.now()), wikidocu.SchemaSearchQueries, &list)
	if isContextErr(err) {
		return 0, err
	} else if err != nil {
		e.logger().Warn("query generation failed", "turn", r.turn.ID, "code", wikidocu.ErrorCode(err), "err", err)
		return StateRoutingDecision, nil
	}

	if query := SearchQuery(r.turn.Question, list.Query, n); query != "" {
		r.queries = []string{query}
		r.turn.SearchQuery = query
	}
	return StateRoutingDecision, nil
}

func (e *Engine) route(ctx context.Context, r *run) (State, error) {
	r.turn.Route = wikidocu.RouteFor(r.queries)
	if r.turn.Route == wikidocu.RouteFileResearch {
		return StateFileResearch, nil
	}
	return StateDirectChat, nil
}

// research scans the roots with this turn's query and synthesizes an answer
// to the original question from the merged evidence.
func (e *Engine) research(ctx context.Context, r *run) (State, error) {
	result := wikidocu.MergeUnitResults(r.turn.SearchQuery, nil, nil)
	if len(e.Roots) > 0 {
		var err error
		result, err = e.Scanner.Scan(ctx, e.Roots, r.turn.SearchQuery)
		if err != nil {
			return 0, err
		}
	}
	r.turn.Evidence = result.Evidence
	r.turn.Sources = result.Sources

	answer, err := e.Extractor.Synthesize(ctx, r.turn.Question, result.Evidence)
	if err != nil {
		return 0, err
	}
	r.answer = answer
	return StateFinalAnswer, nil
}

// directChat answers from the conversation history alone.
func (e *Engine) directChat(ctx context.Context, r *run) (State, error) {
	answer, err := e.Completer.Complete(ctx, BuildDirectChatRequest(r.history))
	if isContextErr(err) {
		return 0, err
	} else if err != nil {
		return 0, wikidocu.Errorf(wikidocu.ESYNTHESIS, "direct chat: %v", err)
	}
	if strings.TrimSpace(answer) == "" {
		return 0, wikidocu.Errorf(wikidocu.ESYNTHESIS, "model returned an empty answer")
	}
	r.answer = answer
	return StateFinalAnswer, nil
}

func (e *Engine) finalAnswer(ctx context.Context, r *run) (State, error) {
	r.turn.Answer = strings.TrimSpace(r.answer)
	return StateEnd, nil
}

// end records the turn in the thread and saves it.
func (e *Engine) end(ctx context.Context, r *run) error {
	r.turn.CreatedAt = e.now()
	r.thread.Append(r.turn)
	e.Retention.Apply(r.thread)
	if err := e.Threads.SaveThread(ctx, r.thread); err != nil {
		return err
	}
	e.logger().Info("turn complete",
		"thread", r.thread.ID,
		"turn", r.turn.Index,
		"route", r.turn.Route,
		"sources", len(r.turn.Sources),
	)
	return nil
}

// lock serializes turns per thread. It blocks until the thread is free or
// ctx is done.
func (e *Engine) lock(ctx context.Context, threadID string) (func(), error) {
	e.mu.Lock()
	if e.locks == nil {
		e.locks = make(map[string]chan struct{})
	}
	ch, ok := e.locks[threadID]
	if !ok {
		ch = make(chan struct{}, 1)
		e.locks[threadID] = ch
	}
	e.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.New().String()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
