package systems

import (
	"fmt"
	"reflect"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief Soft limit on cached programs. NOTE: exceeding it only logs a warning. */
	MaxProgramCount uint32
}

type programKey struct {
	family     string
	options    interface{}
	processing string
}

/**
 * @brief Process wide program library. Programs are generated by the
 * generator registered for their family and cached by content: equal
 * (family, options, processing) always return the same program.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// Registered generators by family name.
	generators map[string]material.ProgramGenerator
	// Generated programs.
	programs map[programKey]*metadata.Program
	// sub systems
	metrics *core.Metrics
	events  *core.EventBus
	clock   *core.Clock
	warned  bool
}

func NewShaderSystem(config *ShaderSystemConfig, metrics *core.Metrics, events *core.EventBus) (*ShaderSystem, error) {
	if config.MaxProgramCount < 64 {
		if config.MaxProgramCount == 0 {
			err := fmt.Errorf("func NewShaderSystem - config.MaxProgramCount must be greater than 0")
			core.LogError(err.Error())
			return nil, err
		}
		core.LogWarn("func NewShaderSystem - config.MaxProgramCount is recommended to be at least 64.")
	}
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &ShaderSystem{
		Config:     config,
		generators: make(map[string]material.ProgramGenerator),
		programs:   make(map[programKey]*metadata.Program, config.MaxProgramCount),
		metrics:    metrics,
		events:     events,
		clock:      core.NewClock(),
	}, nil
}

/**
 * @brief Shuts down the shader system, dropping every program and generator.
 */
func (ss *ShaderSystem) Shutdown() error {
	ss.Clear()
	clear(ss.generators)
	return nil
}

/**
 * @brief Registers the generator of a program family.
 *
 * @param family The family name, e.g. "standard".
 * @param generator The generator used on cache misses.
 * @return An error wrapping core.ErrDuplicateProgramFamily if the family exists.
 */
func (ss *ShaderSystem) Register(family string, generator material.ProgramGenerator) error {
	if _, ok := ss.generators[family]; ok {
		err := fmt.Errorf("%w: '%s'", core.ErrDuplicateProgramFamily, family)
		core.LogError(err.Error())
		return err
	}
	if generator == nil {
		err := fmt.Errorf("func Register - generator for family '%s' is nil", family)
		core.LogError(err.Error())
		return err
	}
	ss.generators[family] = generator
	return nil
}

/**
 * @brief Returns the program for the given options, generating it on a
 * miss. Failures are returned to the caller and never cached, so the next
 * request retries generation.
 */
func (ss *ShaderSystem) GetProgram(family string, options interface{}, processing metadata.ShaderProcessingOptions) (*metadata.Program, error) {
	generator, ok := ss.generators[family]
	if !ok {
		err := fmt.Errorf("%w: '%s'", core.ErrUnknownProgramFamily, family)
		core.LogError(err.Error())
		return nil, err
	}
	if options == nil || !reflect.ValueOf(options).Comparable() {
		err := fmt.Errorf("%w: options of type %T cannot key the program cache", core.ErrShaderCompilation, options)
		core.LogError(err.Error())
		return nil, err
	}

	key := programKey{family: family, options: options, processing: processing.Key()}
	if program, ok := ss.programs[key]; ok {
		ss.metrics.ProgramCacheHits++
		return program, nil
	}
	ss.metrics.ProgramCacheMisses++

	ss.clock.Start()
	program, err := generator.Generate(options, processing)
	ss.clock.Update()
	ss.clock.Stop()
	if err != nil {
		ss.metrics.ProgramFailures++
		err = fmt.Errorf("family '%s': %w", family, err)
		core.LogError(err.Error())
		return nil, err
	}
	ss.metrics.ProgramCompiles++
	ss.programs[key] = program
	core.LogDebug("generated program '%s' of family '%s' in %s", program.Name, family, ss.clock.Elapsed())

	if uint32(len(ss.programs)) > ss.Config.MaxProgramCount && !ss.warned {
		core.LogWarn("shader system holds %d programs, above the configured maximum of %d", len(ss.programs), ss.Config.MaxProgramCount)
		ss.warned = true
	}
	return program, nil
}

// ProgramCount returns the number of cached programs.
func (ss *ShaderSystem) ProgramCount() int {
	return len(ss.programs)
}

/**
 * @brief Drops every cached program of a family, for example after its
 * chunk library changed. Fires EventCodeProgramsInvalidated.
 *
 * @return The number of programs dropped.
 */
func (ss *ShaderSystem) InvalidateFamily(family string) int {
	dropped := 0
	for key := range ss.programs {
		if key.family == family {
			delete(ss.programs, key)
			dropped++
		}
	}
	if dropped > 0 {
		core.LogDebug("invalidated %d programs of family '%s'", dropped, family)
	}
	if ss.events != nil {
		ss.events.Fire(core.EventCodeProgramsInvalidated, ss, core.EventContext{Name: family, Data: dropped})
	}
	return dropped
}

// Clear drops every cached program.
func (ss *ShaderSystem) Clear() {
	clear(ss.programs)
	ss.warned = false
}
