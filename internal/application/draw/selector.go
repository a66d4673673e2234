package draw

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

// Selector picks winners from a raw entrant list.
type Selector struct {
	selfID string
	mu     sync.Mutex
	rng    *rand.Rand
	logger zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithSeed makes draws reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewSelector creates a selector that never lets selfID win. An empty selfID
// falls back to contest.DefaultSystemIdentity.
func NewSelector(selfID string, logger zerolog.Logger, opts ...Option) *Selector {
	selfID = strings.TrimSpace(selfID)
	if selfID == "" {
		selfID = contest.DefaultSystemIdentity
	}
	now := uint64(time.Now().UnixNano())
	s := &Selector{
		selfID: selfID,
		rng:    rand.New(rand.NewPCG(now, now>>1|1)),
		logger: logger.With().Str("service", "draw").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select drops bots and excluded ids, dedupes by id keeping the first
// occurrence, and draws up to count distinct ids. A pool smaller than count
// is returned whole.
func (s *Selector) Select(entrants []contest.Entrant, exclude []string, count int) []string {
	return s.draw(s.pool(entrants, exclude, nil), count)
}

// SelectEligible is Select restricted to entrants satisfying requirement.
func (s *Selector) SelectEligible(entrants []contest.Entrant, exclude []string, count int, requirement string) ([]string, error) {
	expr, err := CompileRequirement(requirement)
	if err != nil {
		return nil, err
	}
	return s.draw(s.pool(entrants, exclude, expr), count), nil
}

func (s *Selector) pool(entrants []contest.Entrant, exclude []string, expr *govaluate.EvaluableExpression) []string {
	skip := make(map[string]struct{}, len(exclude)+1)
	if s.selfID != "" {
		skip[s.selfID] = struct{}{}
	}
	for _, id := range exclude {
		skip[strings.TrimSpace(id)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(entrants))
	pool := make([]string, 0, len(entrants))
	for _, e := range entrants {
		id := strings.TrimSpace(e.ID)
		if id == "" || e.Bot {
			continue
		}
		if _, ok := skip[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if expr != nil && !s.eligible(expr, e) {
			continue
		}
		pool = append(pool, id)
	}
	return pool
}

func (s *Selector) eligible(expr *govaluate.EvaluableExpression, e contest.Entrant) bool {
	params := make(map[string]interface{}, len(e.Attributes)+3)
	for k, v := range e.Attributes {
		params[k] = v
	}
	params["id"] = e.ID
	params["name"] = e.Name
	params["bot"] = e.Bot
	result, err := expr.Evaluate(params)
	if err != nil {
		s.logger.Debug().Err(err).Str("entrant_id", e.ID).Msg("requirement not evaluable, entrant skipped")
		return false
	}
	ok, isBool := result.(bool)
	return isBool && ok
}

// draw runs a partial Fisher-Yates shuffle over pool.
func (s *Selector) draw(pool []string, count int) []string {
	if count <= 0 || len(pool) == 0 {
		return []string{}
	}
	if count > len(pool) {
		count = len(pool)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < count; i++ {
		j := i + s.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return append([]string(nil), pool[:count]...)
}

// CompileRequirement parses an entrant requirement expression. An empty
// requirement compiles to nil and admits everyone.
func CompileRequirement(requirement string) (*govaluate.EvaluableExpression, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil, nil
	}
	expr, err := govaluate.NewEvaluableExpression(requirement)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contest.ErrInvalidRequirement, err)
	}
	return expr, nil
}
