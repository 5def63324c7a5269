package agent

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"checkers/game"
	"checkers/searcher"

	"github.com/pkg/errors"
)

// Module builds an engine from the parameters of a configuration string.
// It must pop every parameter it understands from params.
type Module func(params map[string]string) (searcher.Engine, error)

var modules = map[string]Module{
	"minimax": newMinimax,
	"mcts":    newMCTS,
	"random":  newRandom,
}

// Register adds a module under name. It is not safe to call concurrently
// with New.
func Register(name string, module Module) {
	modules[name] = module
}

// DefaultConfig is used when New is given an empty configuration.
var DefaultConfig = "mcts"

// New creates an agent from a configuration string: the module name,
// optionally followed by a colon and comma separated key=value parameters,
// e.g. "mcts:iterations=400,c=1.2" or "minimax:depth=4,king=3".
//
// Modules and their parameters:
//
//	minimax: depth, time, and the evaluator weights
//	mcts:    iterations, time, c, cutoff, seed, workers, reuse, and the evaluator weights
//	random:  seed
//
// The evaluator weights are man, king, advancement, mobility and backrow.
func New(config string) (Agent, error) {
	if config == "" {
		config = DefaultConfig
	}

	moduleName, paramString, _ := strings.Cut(config, ":")
	module, ok := modules[moduleName]
	if !ok {
		return nil, errors.Errorf("unknown agent module %q", moduleName)
	}

	params := splitConfigString(paramString)
	engine, err := module(params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create agent %q", config)
	}
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return nil, errors.Errorf("agent %q: unknown parameters %s", config, strings.Join(keys, ", "))
	}
	return NewEvaluationAgent(config, engine), nil
}

// splitConfigString splits "a=1,b" into {"a": "1", "b": ""}.
func splitConfigString(config string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		params[key] = value
	}
	return params
}

type paramType interface {
	bool | int | uint64 | float64 | time.Duration
}

// GetParamOr parses the parameter at key, or returns defaultValue if it is
// absent. A bool key without a value is true.
func GetParamOr[T paramType](params map[string]string, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	toT := func(v any) T { return v.(T) }

	var t T
	switch any(defaultValue).(type) {
	case bool:
		switch strings.ToLower(value) {
		case "", "true", "1":
			return toT(true), nil
		case "false", "0":
			return toT(false), nil
		}
		return t, errors.Errorf("failed to parse configuration %s=%q to bool", key, value)
	case int:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to int", key, value)
		}
		return toT(parsed), nil
	case uint64:
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to uint", key, value)
		}
		return toT(parsed), nil
	case float64:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
		}
		return toT(parsed), nil
	case time.Duration:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to duration", key, value)
		}
		return toT(parsed), nil
	}
	return defaultValue, nil
}

// PopParamOr is like GetParamOr but also deletes key from params.
func PopParamOr[T paramType](params map[string]string, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

func popWeights(params map[string]string) (game.Weights, error) {
	values := make(map[string]float64)
	for _, name := range game.WeightNames() {
		if _, ok := params[name]; !ok {
			continue
		}
		value, err := PopParamOr(params, name, 0.0)
		if err != nil {
			return game.Weights{}, err
		}
		values[name] = value
	}
	weights, err := game.WeightsFromMap(values)
	return weights, errors.WithStack(err)
}

func validate(cfg searcher.Config) error {
	return errors.WithStack(searcher.NewConfig(searcher.WithConfig(cfg)).Validate())
}

func newMinimax(params map[string]string) (searcher.Engine, error) {
	var cfg searcher.Config
	var err error
	if cfg.DepthLimit, err = PopParamOr(params, "depth", 0); err != nil {
		return nil, err
	}
	if cfg.TimeLimit, err = PopParamOr(params, "time", time.Duration(0)); err != nil {
		return nil, err
	}
	if cfg.Weights, err = popWeights(params); err != nil {
		return nil, err
	}
	if err = validate(cfg); err != nil {
		return nil, err
	}
	return searcher.NewMinimax(searcher.WithConfig(cfg), searcher.WithMetrics()), nil
}

func newMCTS(params map[string]string) (searcher.Engine, error) {
	var cfg searcher.Config
	var err error
	if cfg.Iterations, err = PopParamOr(params, "iterations", 0); err != nil {
		return nil, err
	}
	if cfg.TimeLimit, err = PopParamOr(params, "time", time.Duration(0)); err != nil {
		return nil, err
	}
	if cfg.ExplorationConstant, err = PopParamOr(params, "c", 0.0); err != nil {
		return nil, err
	}
	if cfg.RolloutDepthCap, err = PopParamOr(params, "cutoff", 0); err != nil {
		return nil, err
	}
	if cfg.Seed, err = PopParamOr(params, "seed", uint64(0)); err != nil {
		return nil, err
	}
	if cfg.Workers, err = PopParamOr(params, "workers", 0); err != nil {
		return nil, err
	}
	reuse, err := PopParamOr(params, "reuse", false)
	if err != nil {
		return nil, err
	}
	if cfg.Weights, err = popWeights(params); err != nil {
		return nil, err
	}
	if err = validate(cfg); err != nil {
		return nil, err
	}

	options := []searcher.Option{searcher.WithConfig(cfg), searcher.WithMetrics()}
	if reuse {
		options = append(options, searcher.WithTreeReuse())
	}
	return searcher.NewMCTS(options...), nil
}

func newRandom(params map[string]string) (searcher.Engine, error) {
	seed, err := PopParamOr(params, "seed", uint64(0))
	if err != nil {
		return nil, err
	}
	return newRandomEngine(seed), nil
}
