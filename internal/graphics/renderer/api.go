package renderer

// Pass is one image-space stage of the frame graph. Every method is required.
//
// Init allocates the pass's working buffers at ctx.Width × ctx.Height and
// publishes its outputs into ctx. It is called again after a resize and must
// reallocate only what changed size.
//
// Execute computes one frame and re-publishes every declared output, even
// when the values did not change.
//
// Shutdown releases the pass's buffers. It may be called more than once and
// before Init.
type Pass interface {
	Name() string
	Resources() PassResources
	Init(ctx *RenderContext) error
	Execute(dt float64, ctx *RenderContext) error
	Shutdown() error
}
