package preservation

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-preservation/framework/container"
)

// FrameMatcher reports whether a request was issued by supporting
// infrastructure rather than by application code. Such frames are skipped
// when looking for the activation a root resolves on behalf of.
type FrameMatcher func(req container.Request) bool

// IndirectionFrames matches requests whose target is tagged as an
// infrastructure indirection, such as the resolution root handed to an
// interface factory's interceptor.
func IndirectionFrames(req container.Request) bool {
	t := req.Target()
	return t != nil && t.Indirection()
}

// DeferredFrames matches requests issued by a deferred-value wrapper on
// behalf of its owner.
func DeferredFrames(req container.Request) bool {
	parent := req.ParentRequest()
	return parent != nil && container.IsDeferred(parent.Service())
}

// DefaultFrameMatchers are the matchers the Module installs.
func DefaultFrameMatchers() []FrameMatcher {
	return []FrameMatcher{IndirectionFrames, DeferredFrames}
}

type frames []FrameMatcher

func (f frames) synthetic(req container.Request) bool {
	for _, match := range f {
		if match(req) {
			return true
		}
	}
	return false
}

// discover walks up from req past synthetic frames and returns the context
// and target of the first frame application code produced. A nil context
// means there is nothing to preserve.
func (f frames) discover(req container.Request) (*container.Context, *container.Target) {
	for req != nil && f.synthetic(req) {
		req = req.ParentRequest()
	}
	if req == nil {
		return nil, nil
	}
	return req.ParentContext(), req.Target()
}

// Strategy binds every unbound Root the kernel activates to the context of
// the object it is being injected into.
type Strategy struct {
	container.BaseStrategy

	frames frames
	log    zerolog.Logger
}

// StrategyOption configures a Strategy.
type StrategyOption func(*Strategy)

// WithFrameMatchers replaces the frame matchers.
func WithFrameMatchers(m ...FrameMatcher) StrategyOption {
	return func(s *Strategy) { s.frames = frames(m) }
}

// WithStrategyLogger sets the logger used to trace ancestor discovery.
func WithStrategyLogger(l zerolog.Logger) StrategyOption {
	return func(s *Strategy) { s.log = l }
}

// NewStrategy creates a discovery strategy using DefaultFrameMatchers
// unless overridden.
func NewStrategy(opts ...StrategyOption) *Strategy {
	s := &Strategy{frames: DefaultFrameMatchers(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate binds instance when it is an unbound *Root. Roots resolved
// without a parent stay unbound.
func (s *Strategy) Activate(ctx *container.Context, instance any) error {
	root, ok := instance.(*Root)
	if !ok || root.Bound() {
		return nil
	}

	parent, target := s.frames.discover(ctx.Request())
	if parent == nil {
		s.log.Debug().Str("context", ctx.ID()).Msg("resolution root has no ancestor")
		return nil
	}

	root.bind(parent, target)
	ev := s.log.Debug().
		Str("context", ctx.ID()).
		Str("ancestor", parent.ID()).
		Str("chain", container.Chain(parent.Request())).
		Int("inherited", len(root.InheritedParameters()))
	if target != nil {
		ev = ev.Stringer("target", target)
	}
	ev.Msg("resolution root bound")
	return nil
}
