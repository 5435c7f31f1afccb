package engine

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/composition"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/programs"
	"github.com/spaghettifunk/prism/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// ViewBindGroupFormat is the layout of the per view bind group allocated for
// every render action.
var ViewBindGroupFormat = &metadata.BindGroupFormat{
	Name: "view",
	Entries: []metadata.BindGroupEntry{
		{Name: "ub_view", Type: metadata.BindGroupEntryUniformBuffer},
	},
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *EngineConfig
	isRunning     atomic.Bool
	isShutdown    bool
	events        *core.EventBus
	metrics       *core.Metrics
	clock         *core.Clock
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager

	scene       *metadata.Scene
	targets     map[string]*metadata.RenderTarget
	composition *composition.LayerComposition

	viewUniformFormat   *metadata.UniformBufferFormat
	viewBindGroupFormat *metadata.BindGroupFormat
	nextBindGroupID     uint32
	liveBindGroups      int

	frameNumber uint64
	lastTime    time.Duration
}

/**
 * @brief Creates the engine and its systems. A game without a config runs
 * with DefaultConfig.
 */
func New(g *Game) (*Engine, error) {
	config := g.Config
	if config == nil {
		config = DefaultConfig()
		g.Config = config
	}
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := core.SetLogLevel(config.LogLevel); err != nil {
		core.LogWarn("invalid log level '%s': %s", config.LogLevel, err.Error())
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	events := core.NewEventBus()
	metrics := core.NewMetrics()
	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		MaxCameraCount:   config.MaxCameraCount,
		MaxTextureCount:  config.MaxTextureCount,
		MaxMaterialCount: config.MaxMaterialCount,
		MaxProgramCount:  config.MaxProgramCount,
	}, am, events, metrics)
	if err != nil {
		core.LogError(err.Error())
		_ = am.Shutdown()
		return nil, err
	}

	e := &Engine{
		currentStage:        EngineStageUninitialized,
		gameInstance:        g,
		config:              config,
		events:              events,
		metrics:             metrics,
		clock:               core.NewClock(),
		assetManager:        am,
		systemManager:       sm,
		viewUniformFormat:   programs.DefaultViewUniformFormat,
		viewBindGroupFormat: ViewBindGroupFormat,
	}
	g.Engine = e
	return e, nil
}

/**
 * @brief Indexes the assets, creates the configured textures, the scene and
 * the composition, then initializes the game.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if e.config.AssetsDir != "" {
		if _, err := os.Stat(e.config.AssetsDir); err == nil {
			if err := e.assetManager.Initialize(e.config.AssetsDir, e.config.WatchAssets); err != nil {
				core.LogError(err.Error())
				return err
			}
		} else if errors.Is(err, os.ErrNotExist) {
			core.LogWarn("assets directory '%s' does not exist, materials can only be created from configs", e.config.AssetsDir)
		} else {
			return err
		}
	}

	for _, tc := range e.config.Textures {
		if _, err := e.systemManager.TextureSystem.Create(tc); err != nil {
			return err
		}
	}

	e.scene = e.config.Scene.BuildScene()
	e.scene.ClusteredLightingEnabled = e.config.ClusteredLighting
	if name := e.config.Scene.Skybox; name != "" {
		t, err := e.systemManager.TextureSystem.Acquire(name, false)
		if err != nil {
			return err
		}
		e.scene.Skybox = t
	}
	if name := e.config.Scene.EnvAtlas; name != "" {
		t, err := e.systemManager.TextureSystem.Acquire(name, false)
		if err != nil {
			return err
		}
		e.scene.EnvAtlas = t
	}

	e.targets = BuildRenderTargets(e.config.RenderTargets)
	comp, err := BuildComposition(e.config, e.systemManager.CameraSystem, e.targets, e.metrics)
	if err != nil {
		return err
	}
	e.composition = comp
	// Surface render target errors before the first frame.
	if _, err := e.composition.Update(); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("engine '%s' initialized", e.config.Name)
	return nil
}

/**
 * @brief Runs the frame loop. frames <= 0 runs until Stop is called.
 */
func (e *Engine) Run(frames int) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for count := 0; e.isRunning.Load() && (frames <= 0 || count < frames); count++ {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()
		frameStart := time.Now()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				return err
			}
		}

		var draws []Draw
		if e.gameInstance.FnRender != nil {
			var err error
			draws, err = e.gameInstance.FnRender(delta)
			if err != nil {
				core.LogError("game render failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				return err
			}
		}

		plan, err := e.Frame(draws)
		if err != nil {
			e.isRunning.Store(false)
			return err
		}
		core.LogDebug("frame %d: %d actions, %d draw calls, %d failed variants",
			plan.Frame, len(plan.Actions), plan.DrawCallCount(), len(plan.Errors))

		e.metrics.Update(time.Since(frameStart).Seconds())
		e.lastTime = currentTime
	}

	fps, avg := e.metrics.Frame()
	core.LogInfo("ran %d frames: %.1f fps, %.3f ms avg, program cache hit ratio %.2f (%d compiled, %d failed)",
		e.frameNumber, fps, avg, e.metrics.ProgramCacheHitRatio(), e.metrics.ProgramCompiles, e.metrics.ProgramFailures)
	e.currentStage = EngineStageInitialized
	return nil
}

// Stop makes Run return after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases everything the engine created. Calling it again is a no-op.
func (e *Engine) Shutdown() error {
	if e.isShutdown {
		return nil
	}
	e.isShutdown = true
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.composition != nil {
		e.composition.Destroy()
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.events.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Composition() *composition.LayerComposition {
	return e.composition
}

func (e *Engine) Scene() *metadata.Scene {
	return e.scene
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Config() *EngineConfig {
	return e.config
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// LiveBindGroups is the number of view bind groups not yet destroyed.
func (e *Engine) LiveBindGroups() int {
	return e.liveBindGroups
}
