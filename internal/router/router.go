// Package router dispatches incoming requests to exactly one skill based on
// the input signatures (file extensions, query keywords) skills declare.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/skills"
)

var (
	// ErrNoMatch means no registered skill handles the request.
	ErrNoMatch = errors.New("no skill matches the request")

	// ErrSkillNotFound means an explicitly requested skill is not registered.
	ErrSkillNotFound = errors.New("skill not found")
)

// Method identifies how a routing decision was made.
type Method string

const (
	MethodUserSpecified Method = "user-specified"
	MethodFileExtension Method = "file-extension"
	MethodKeyword       Method = "keyword"
)

// Request is an incoming analysis request: free text, zero or more input
// files, and an optional explicit skill override.
type Request struct {
	Query  string   `json:"query,omitempty"`
	Inputs []string `json:"inputs,omitempty"`
	Skill  string   `json:"skill,omitempty"`
}

// Decision is the outcome of routing a request.
type Decision struct {
	Skill      *skills.Skill `json:"-"`
	SkillName  string        `json:"skill"`
	Method     Method        `json:"method"`
	Matched    string        `json:"matched,omitempty"`    // the extension or keyword that decided
	Candidates []string      `json:"candidates,omitempty"` // other skills that also matched
}

// Router selects one skill per request using the registry's declared triggers.
type Router struct {
	registry *skills.Registry
	bus      *events.Bus
}

// New creates a Router over the given registry. The bus may be nil.
func New(registry *skills.Registry, bus *events.Bus) *Router {
	return &Router{registry: registry, bus: bus}
}

// Route selects exactly one skill for the request, or returns ErrNoMatch.
// Resolution order: explicit override, then input file extensions (longest
// declared suffix wins), then query keywords (most hits wins). Ties break
// by skill name order so routing is deterministic.
func (r *Router) Route(ctx context.Context, req Request) (*Decision, error) {
	r.publish(events.NewTypedEventWithRun(events.SourceRouter, events.RequestReceivedPayload{
		Query:  req.Query,
		Inputs: req.Inputs,
		Skill:  req.Skill,
	}, events.RunIDFromContext(ctx)))

	decision, err := r.decide(req)
	if err != nil {
		return nil, err
	}

	slog.Info("routed request",
		"skill", decision.SkillName,
		"method", decision.Method,
		"matched", decision.Matched)

	r.publish(events.NewTypedEventWithRun(events.SourceRouter, events.RouteDecidedPayload{
		Skill:      decision.SkillName,
		Method:     string(decision.Method),
		Matched:    decision.Matched,
		Candidates: decision.Candidates,
	}, events.RunIDFromContext(ctx)))

	return decision, nil
}

func (r *Router) decide(req Request) (*Decision, error) {
	// Explicit override bypasses detection entirely.
	if req.Skill != "" {
		s := r.registry.Get(req.Skill)
		if s == nil {
			return nil, fmt.Errorf("%w: %q (available: %s)",
				ErrSkillNotFound, req.Skill, strings.Join(r.registry.Names(), ", "))
		}
		return &Decision{
			Skill:     s,
			SkillName: s.Name,
			Method:    MethodUserSpecified,
		}, nil
	}

	if d := r.byExtension(req.Inputs); d != nil {
		return d, nil
	}
	if d := r.byKeyword(req.Query); d != nil {
		return d, nil
	}

	return nil, fmt.Errorf("%w (available: %s)",
		ErrNoMatch, strings.Join(r.registry.Names(), ", "))
}

// byExtension matches inputs against declared extensions. The longest
// matching suffix across all skills wins so ".vcf.gz" beats ".gz".
func (r *Router) byExtension(inputs []string) *Decision {
	for _, input := range inputs {
		var (
			best      *skills.Skill
			bestExt   string
			alsoMatch []string
		)
		for _, s := range r.registry.All() {
			ext := s.HandlesExtension(input)
			if ext == "" {
				continue
			}
			switch {
			case len(ext) > len(bestExt):
				if best != nil {
					alsoMatch = append(alsoMatch, best.Name)
				}
				best, bestExt = s, ext
			case len(ext) == len(bestExt) && best != nil:
				alsoMatch = append(alsoMatch, s.Name)
			default:
				alsoMatch = append(alsoMatch, s.Name)
			}
		}
		if best != nil {
			return &Decision{
				Skill:      best,
				SkillName:  best.Name,
				Method:     MethodFileExtension,
				Matched:    bestExt,
				Candidates: alsoMatch,
			}
		}
	}
	return nil
}

// byKeyword matches the query against declared keywords. The skill with the
// most keyword hits wins; registry order (sorted by name) breaks ties.
func (r *Router) byKeyword(query string) *Decision {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var (
		best      *skills.Skill
		bestHits  int
		bestWord  string
		alsoMatch []string
	)
	for _, s := range r.registry.All() {
		hits, first := s.KeywordHits(query)
		if hits == 0 {
			continue
		}
		if hits > bestHits {
			if best != nil {
				alsoMatch = append(alsoMatch, best.Name)
			}
			best, bestHits, bestWord = s, hits, first
		} else {
			alsoMatch = append(alsoMatch, s.Name)
		}
	}
	if best == nil {
		return nil
	}
	return &Decision{
		Skill:      best,
		SkillName:  best.Name,
		Method:     MethodKeyword,
		Matched:    bestWord,
		Candidates: alsoMatch,
	}
}

func (r *Router) publish(e events.Event) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(e)
}
