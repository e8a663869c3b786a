// Package session runs indexing passes with an explicit lifecycle: a pass
// begins when a tree (or recorded trace) is walked and ends when its index
// is no longer needed.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
	"domkey/internal/logging"
	"domkey/internal/registry"
	"domkey/internal/source"
)

// Options configures a Session.
type Options struct {
	Mode   registry.Mode
	Logger *slog.Logger
}

// Summary describes a finished pass.
type Summary struct {
	PassID     string        `json:"passId" yaml:"passId" toml:"pass_id"`
	Nodes      int           `json:"nodes" yaml:"nodes" toml:"nodes"`
	Lanes      int           `json:"lanes" yaml:"lanes" toml:"lanes"`
	Branches   int           `json:"branches" yaml:"branches" toml:"branches"`
	Violations int           `json:"violations" yaml:"violations" toml:"violations"`
	Duration   time.Duration `json:"duration" yaml:"duration" toml:"duration"`
}

// Session owns the registry and element manager of one pass at a time.
type Session struct {
	base     *slog.Logger
	mode     registry.Mode
	logger   *slog.Logger
	registry *registry.Registry
	elements *domtree.Manager

	passID  string
	started time.Time
	active  bool
}

// New creates an idle Session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	return &Session{
		base:     opts.Logger,
		mode:     opts.Mode,
		logger:   opts.Logger,
		registry: registry.New(registry.Options{Mode: opts.Mode, Logger: opts.Logger}),
		elements: domtree.NewManager(),
	}
}

// Begin starts a pass over tree. A pass already in progress is discarded.
// If the walk fails or ctx is cancelled the pass is abandoned and the
// session is left idle.
func (s *Session) Begin(ctx context.Context, tree *domtree.Tree) (*Summary, error) {
	s.start()
	s.elements.AddTree(tree)

	if err := domtree.Index(ctx, tree, s.registry); err != nil {
		return nil, s.abandon(err)
	}
	return s.finish(), nil
}

// Replay starts a pass that feeds recorded visits straight into the registry.
func (s *Session) Replay(ctx context.Context, visits []source.TraceVisit) (*Summary, error) {
	s.start()

	for _, v := range visits {
		if err := ctx.Err(); err != nil {
			return nil, s.abandon(dkerrors.New(dkerrors.PassCancelled, "replay cancelled", err))
		}
		if _, err := s.registry.Register(v.ID, v.Depth, v.Sibling); err != nil {
			return nil, s.abandon(err)
		}
	}
	return s.finish(), nil
}

// start opens a fresh pass. Everything logged during the pass, including
// the registry's own records, carries the pass id.
func (s *Session) start() {
	if s.active {
		s.logger.Debug("Discarding unfinished pass")
	}
	s.registry.Destroy()
	s.elements.Destroy()
	s.passID = uuid.New().String()
	s.logger = s.base.With(logging.PassKey, s.passID)
	s.registry = registry.New(registry.Options{Mode: s.mode, Logger: s.logger})
	s.started = time.Now()
	s.active = true
}

func (s *Session) abandon(err error) error {
	s.logger.Warn("Pass abandoned",
		"registered", s.registry.Len(),
		"error", err.Error(),
	)
	s.registry.Reset()
	s.elements.Destroy()
	s.passID = ""
	s.logger = s.base
	s.active = false
	return err
}

func (s *Session) finish() *Summary {
	stats := s.registry.Keygen().Stats()
	sum := &Summary{
		PassID:     s.passID,
		Nodes:      s.registry.Len(),
		Lanes:      stats.Lanes,
		Branches:   stats.Branches,
		Violations: len(s.registry.Violations()),
		Duration:   time.Since(s.started),
	}
	s.logger.Info("Pass indexed",
		"nodes", sum.Nodes,
		"lanes", sum.Lanes,
		"branches", sum.Branches,
		"violations", sum.Violations,
		"duration", sum.Duration.String(),
	)
	return sum
}

// End destroys the current pass. Queries after End see an empty index.
func (s *Session) End() {
	if !s.active {
		return
	}
	s.logger.Debug("Pass ended")
	s.registry.Destroy()
	s.elements.Destroy()
	s.passID = ""
	s.logger = s.base
	s.active = false
}

// Active reports whether a pass is in progress.
func (s *Session) Active() bool {
	return s.active
}

// PassID returns the id of the current pass, or "" when idle.
func (s *Session) PassID() string {
	return s.passID
}

// Registry returns the registry of the current pass.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Elements returns the element manager of the current pass. It is empty
// for replayed traces.
func (s *Session) Elements() *domtree.Manager {
	return s.elements
}

// Siblings returns the sibling group of id. The id must belong to the
// current pass.
func (s *Session) Siblings(id string) ([]string, error) {
	if _, ok := s.registry.Node(id); !ok {
		return nil, dkerrors.Newf(dkerrors.NodeNotIndexed, "node %q is not indexed in this pass", id)
	}
	return s.registry.Siblings(id), nil
}

// Ancestors returns the ids from the root down to id's parent.
func (s *Session) Ancestors(id string) ([]string, error) {
	if _, ok := s.registry.Node(id); !ok {
		return nil, dkerrors.Newf(dkerrors.NodeNotIndexed, "node %q is not indexed in this pass", id)
	}
	return s.registry.AncestorIDs(id), nil
}
