package wikidocu

import (
	"context"
	"strings"
	"time"
)

// Route is the per-turn choice between retrieval-backed answering and
// context-only chat.
type Route string

// Route constants.
const (
	RouteFileResearch Route = "file_research"
	RouteDirectChat   Route = "direct_chat"
)

// RouteFor decides a turn's route from the search queries generated for that
// turn. Only the last query matters: retrieval happens when it exists and is
// not blank.
func RouteFor(queries []string) Route {
	if len(queries) == 0 || strings.TrimSpace(queries[len(queries)-1]) == "" {
		return RouteDirectChat
	}
	return RouteFileResearch
}

// Turn is the record of one completed user message → assistant reply cycle.
type Turn struct {
	ID          string         `json:"id"`
	Index       int            `json:"index"`
	Question    string         `json:"question"`
	SearchQuery string         `json:"searchQuery,omitempty"`
	Route       Route          `json:"route"`
	Evidence    string         `json:"evidence,omitempty"`
	Sources     []SourceRecord `json:"sources,omitempty"`
	Answer      string         `json:"answer"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Citations numbers the turn's sources for display.
func (t *Turn) Citations() []Citation {
	return AssembleCitations(t.Sources)
}

// Thread is the persistent state of one conversation.
//
// Messages, SearchQueries, ResearchResults and Sources only ever grow through
// Append; nothing is removed unless a RetentionPolicy is applied explicitly.
type Thread struct {
	ID              string         `json:"id"`
	Messages        []Message      `json:"messages"`
	SearchQueries   []string       `json:"searchQueries"`
	ResearchResults []string       `json:"researchResults"`
	Sources         []SourceRecord `json:"sources"`
	Turns           []*Turn        `json:"turns"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewThread returns an empty thread.
func NewThread(id string) *Thread {
	return &Thread{ID: id}
}

// Validate returns an error if the thread contains invalid fields.
func (t *Thread) Validate() error {
	if t.ID == "" {
		return Errorf(EINVALID, "thread ID required")
	}
	return nil
}

// Append merges a completed turn into the thread. This is the only way state
// grows: the question and answer are appended to Messages, the turn's search
// query (if any) to SearchQueries, its evidence to ResearchResults when the
// turn took the retrieval route, and its sources, tagged with the turn ID, to
// Sources.
func (t *Thread) Append(turn *Turn) {
	turn.Index = 0
	if last := t.LastTurn(); last != nil {
		turn.Index = last.Index + 1
	}
	for i := range turn.Sources {
		turn.Sources[i].TurnID = turn.ID
	}

	t.Messages = append(t.Messages,
		Message{Role: RoleUser, Content: turn.Question},
		Message{Role: RoleAssistant, Content: turn.Answer},
	)
	if turn.SearchQuery != "" {
		t.SearchQueries = append(t.SearchQueries, turn.SearchQuery)
	}
	if turn.Route == RouteFileResearch {
		t.ResearchResults = append(t.ResearchResults, turn.Evidence)
	}
	t.Sources = append(t.Sources, turn.Sources...)
	t.Turns = append(t.Turns, turn)
	t.UpdatedAt = turn.CreatedAt
	if t.CreatedAt.IsZero() {
		t.CreatedAt = turn.CreatedAt
	}
}

// LastTurn returns the most recent turn or nil.
func (t *Thread) LastTurn() *Turn {
	if len(t.Turns) == 0 {
		return nil
	}
	return t.Turns[len(t.Turns)-1]
}

// Clone returns a deep copy of the thread.
func (t *Thread) Clone() *Thread {
	if t == nil {
		return nil
	}
	other := *t
	other.Messages = append([]Message(nil), t.Messages...)
	other.SearchQueries = append([]string(nil), t.SearchQueries...)
	other.ResearchResults = append([]string(nil), t.ResearchResults...)
	other.Sources = append([]SourceRecord(nil), t.Sources...)
	other.Turns = make([]*Turn, len(t.Turns))
	for i, turn := range t.Turns {
		tc := *turn
		tc.Sources = append([]SourceRecord(nil), turn.Sources...)
		other.Turns[i] = &tc
	}
	return &other
}

// RetentionPolicy bounds how much research history a thread keeps.
// The zero value keeps everything.
type RetentionPolicy struct {
	// KeepLast, when positive, keeps only the last KeepLast entries of
	// SearchQueries, ResearchResults, Sources and Turns. Messages are
	// never pruned.
	KeepLast int
}

// Apply prunes t according to the policy.
func (p RetentionPolicy) Apply(t *Thread) {
	if p.KeepLast <= 0 {
		return
	}
	t.SearchQueries = keepLast(t.SearchQueries, p.KeepLast)
	t.ResearchResults = keepLast(t.ResearchResults, p.KeepLast)
	t.Sources = keepLast(t.Sources, p.KeepLast)
	t.Turns = keepLast(t.Turns, p.KeepLast)
}

func keepLast[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return append([]T(nil), s[len(s)-n:]...)
}

// ThreadStore persists conversation threads between turns.
type ThreadStore interface {
	// FindThreadByID retrieves a thread by ID.
	// Returns ENOTFOUND if the thread does not exist.
	FindThreadByID(ctx context.Context, id string) (*Thread, error)

	// SaveThread creates or replaces a thread.
	SaveThread(ctx context.Context, thread *Thread) error

	// DeleteThread permanently removes a thread.
	// Returns ENOTFOUND if the thread does not exist.
	DeleteThread(ctx context.Context, id string) error
}

// ThreadSummary is a one-line overview of a stored thread.
type ThreadSummary struct {
	ID           string
	Turns        int
	LastQuestion string
	UpdatedAt    time.Time
}

// ThreadLister lists stored threads, most recently updated first.
type ThreadLister interface {
	ListThreads(ctx context.Context, limit, offset int) ([]*ThreadSummary, error)
}

// Engine runs conversation turns.
type Engine interface {
	// Turn answers message within the thread identified by threadID,
	// creating the thread on first use. Turns on the same thread are
	// serialized. Returns ESYNTHESIS if no answer could be produced, in
	// which case the thread is left unchanged.
	Turn(ctx context.Context, threadID, message string) (*Turn, error)
}
