package renderer

import (
	"errors"
	"fmt"

	"yaws/internal/profiling"
)

// State is the lifecycle phase of a FrameGraph.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateShutDown:
		return "shut down"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// producer records who publishes a resource and with which kind.
type producer struct {
	pass string // empty for imported resources
	kind ResourceKind
}

// FrameGraph owns an ordered list of passes and drives them through
// Init, Execute and Shutdown against a single RenderContext.
//
// Resource dependencies are checked when a pass is added: every required read
// must be produced by an earlier pass (or imported) with the same kind, and
// each resource has exactly one writer.
type FrameGraph struct {
	passes    []Pass
	producers map[ResourceName]producer
	ctx       *RenderContext
	state     State
}

// NewFrameGraph creates a graph and adds the passes in order.
func NewFrameGraph(passes ...Pass) (*FrameGraph, error) {
	g := &FrameGraph{producers: make(map[ResourceName]producer)}
	for _, p := range passes {
		if err := g.AddPass(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Import declares a resource supplied by the caller rather than by a pass,
// so later passes may list it as a required read.
func (g *FrameGraph) Import(name ResourceName, kind ResourceKind) error {
	if g.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	if prev, ok := g.producers[name]; ok {
		return fmt.Errorf("%w: %s (written by %q)", ErrDuplicateWriter, name, prev.pass)
	}
	g.producers[name] = producer{kind: kind}
	return nil
}

// AddPass appends p after the passes already registered.
func (g *FrameGraph) AddPass(p Pass) error {
	if g.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	if p == nil {
		return errors.New("nil pass")
	}
	name := p.Name()
	regErr := func(err error) error {
		return &PassError{Pass: name, Phase: PhaseRegister, Err: err}
	}
	for _, existing := range g.passes {
		if existing.Name() == name {
			return regErr(ErrDuplicatePass)
		}
	}

	res := p.Resources()
	for _, r := range res.Reads {
		prod, ok := g.producers[r.Name]
		if !ok {
			if r.Optional {
				continue
			}
			return regErr(fmt.Errorf("%w: %s", ErrUnresolvedRead, r.Name))
		}
		if prod.kind != r.Kind {
			return regErr(fmt.Errorf("%w: %s is %s, read as %s", ErrKindMismatch, r.Name, prod.kind, r.Kind))
		}
	}
	seen := make(map[ResourceName]bool, len(res.Writes))
	for _, w := range res.Writes {
		if prev, ok := g.producers[w.Name]; ok {
			return regErr(fmt.Errorf("%w: %s (written by %q)", ErrDuplicateWriter, w.Name, prev.pass))
		}
		if seen[w.Name] {
			return regErr(fmt.Errorf("%w: %s declared twice", ErrDuplicateWriter, w.Name))
		}
		seen[w.Name] = true
	}
	for _, w := range res.Writes {
		g.producers[w.Name] = producer{pass: name, kind: w.Kind}
	}

	g.passes = append(g.passes, p)
	return nil
}

// PassOrder returns the pass names in execution order.
func (g *FrameGraph) PassOrder() []string {
	names := make([]string, len(g.passes))
	for i, p := range g.passes {
		names[i] = p.Name()
	}
	return names
}

// State returns the current lifecycle phase.
func (g *FrameGraph) State() State { return g.state }

// Context returns the render context bound by Init, or nil.
func (g *FrameGraph) Context() *RenderContext { return g.ctx }

// Init binds ctx to the graph and initializes every pass in registration
// order. A failing pass aborts the graph: the passes already initialized are
// shut down in reverse and the graph ends in StateShutDown.
func (g *FrameGraph) Init(ctx *RenderContext) error {
	switch g.state {
	case StateInitialized:
		return ErrAlreadyInitialized
	case StateShutDown:
		return ErrShutDown
	}
	if ctx == nil {
		return errors.New("nil render context")
	}
	if ctx.Width <= 0 || ctx.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, ctx.Width, ctx.Height)
	}

	g.ctx = ctx
	if err := g.initPasses(false); err != nil {
		return err
	}
	g.state = StateInitialized
	Logger().Debug("frame graph initialized", "passes", len(g.passes), "width", ctx.Width, "height", ctx.Height)
	return nil
}

// initPasses runs Init on every pass. On a resize all passes hold buffers
// from the previous Init, so a failure shuts all of them down.
func (g *FrameGraph) initPasses(resize bool) error {
	for i, p := range g.passes {
		err := p.Init(g.ctx)
		if err == nil {
			err = g.checkOutputs(p)
		}
		if err != nil {
			last := i
			if resize {
				last = len(g.passes) - 1
			}
			g.abort(last)
			return &PassError{Pass: p.Name(), Phase: PhaseInit, Err: err}
		}
		Logger().Debug("pass initialized", "pass", p.Name())
	}
	return nil
}

// abort shuts down passes [0, n] in reverse after a failed Init.
func (g *FrameGraph) abort(n int) {
	for i := n; i >= 0; i-- {
		if err := g.passes[i].Shutdown(); err != nil {
			Logger().Warn("pass shutdown after failed init", "pass", g.passes[i].Name(), "err", err)
		}
	}
	g.unpublish()
	g.state = StateShutDown
}

// Execute advances ctx.Time by dt and runs every pass in order.
// ctx must be the context the graph was initialized with.
func (g *FrameGraph) Execute(dt float64, ctx *RenderContext) error {
	switch g.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateShutDown:
		return ErrShutDown
	}
	if ctx != g.ctx {
		return ErrContextMismatch
	}

	ctx.UpdateTime(dt)
	for _, p := range g.passes {
		stop := profiling.Track("pass." + p.Name())
		err := p.Execute(dt, ctx)
		stop()
		if err == nil {
			err = g.checkOutputs(p)
		}
		if err != nil {
			return &PassError{Pass: p.Name(), Phase: PhaseExecute, Err: err}
		}
	}
	return nil
}

// Resize changes the render target size and re-initializes every pass.
// Call it between frames only.
func (g *FrameGraph) Resize(width, height int) error {
	switch g.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateShutDown:
		return ErrShutDown
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == g.ctx.Width && height == g.ctx.Height {
		return nil
	}

	g.ctx.Width, g.ctx.Height = width, height
	if err := g.initPasses(true); err != nil {
		return err
	}
	Logger().Debug("frame graph resized", "width", width, "height", height)
	return nil
}

// Shutdown releases every pass in reverse registration order and removes
// their outputs from the context. It is idempotent and succeeds on a graph
// that was never initialized. Errors from individual passes are joined.
func (g *FrameGraph) Shutdown() error {
	if g.state == StateShutDown {
		return nil
	}
	var errs []error
	for i := len(g.passes) - 1; i >= 0; i-- {
		p := g.passes[i]
		if err := p.Shutdown(); err != nil {
			errs = append(errs, &PassError{Pass: p.Name(), Phase: PhaseShutdown, Err: err})
		}
	}
	g.unpublish()
	g.state = StateShutDown
	Logger().Debug("frame graph shut down")
	return errors.Join(errs...)
}

func (g *FrameGraph) unpublish() {
	if g.ctx == nil {
		return
	}
	for _, p := range g.passes {
		for _, w := range p.Resources().Writes {
			g.ctx.RemoveTexture(w.Name)
		}
	}
}

// checkOutputs verifies that p published each declared write with the
// declared kind at the context resolution.
func (g *FrameGraph) checkOutputs(p Pass) error {
	for _, w := range p.Resources().Writes {
		buf := g.ctx.Texture(w.Name, nil)
		if buf == nil {
			return fmt.Errorf("%w: %s", ErrMissingOutput, w.Name)
		}
		if buf.Kind() != w.Kind {
			return fmt.Errorf("%w: %s published as %s, declared %s", ErrKindMismatch, w.Name, buf.Kind(), w.Kind)
		}
		if bw, bh := buf.Size(); bw != g.ctx.Width || bh != g.ctx.Height {
			return fmt.Errorf("%w: %s is %dx%d", ErrInvalidSize, w.Name, bw, bh)
		}
	}
	return nil
}
