package engine

/**
 * @brief The application driven by the engine. Engine is set before
 * FnInitialize is called.
 */
type Game struct {
	Config *EngineConfig
	Engine *Engine
	State  interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render returns the draws submitted for the frame.
type Render func(deltaTime float64) ([]Draw, error)
type Shutdown func() error
