// Package arith provides small arithmetic node types used by examples and
// tests: a numeric state is seeded, transformed and routed on its sign.
package arith

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/extension"
	"github.com/viant/toolbox"
	"github.com/viant/x"
)

// DefaultKey is the session key the arithmetic nodes operate on when the
// configuration names none.
const DefaultKey = "value"

// Config configures an arithmetic node
type Config struct {
	// Operand is the right-hand side of the operation, or the seeded value
	// for the "number" node.
	Operand float64 `yaml:"operand" json:"operand"`
	// Key is the session key holding the operated value; DefaultKey when
	// empty.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
}

func (c *Config) key() string {
	if c.Key == "" {
		return DefaultKey
	}
	return c.Key
}

// CheckConfig configures the sign router node
type CheckConfig struct {
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
}

func (c *CheckConfig) key() string {
	if c.Key == "" {
		return DefaultKey
	}
	return c.Key
}

// Outcome labels produced by the "check" node.
const (
	OutcomePositive = "positive"
	OutcomeNegative = "negative"
)

func current(session *execution.Session, params map[string]interface{}, key string) float64 {
	if value, ok := session.Get(key); ok {
		return toolbox.AsFloat(value)
	}
	if value, ok := params[key]; ok {
		return toolbox.AsFloat(value)
	}
	return 0
}

func newNumber(name string, config interface{}) (execution.Node, error) {
	cfg, err := asConfig(config)
	if err != nil {
		return nil, err
	}
	return execution.NewTask(name).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			session.Set(cfg.key(), cfg.Operand)
			return "", nil
		}), nil
}

func newBinary(name string, config interface{}, apply func(value, operand float64) float64) (execution.Node, error) {
	cfg, err := asConfig(config)
	if err != nil {
		return nil, err
	}
	return execution.NewTask(name).
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return current(session, params, cfg.key()), nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			return apply(toolbox.AsFloat(prep), cfg.Operand), nil
		}).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			session.Set(cfg.key(), exec)
			return "", nil
		}), nil
}

func newCheck(name string, config interface{}) (execution.Node, error) {
	cfg, ok := config.(*CheckConfig)
	if !ok {
		cfg = &CheckConfig{}
	}
	return execution.NewTask(name).
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return current(session, params, cfg.key()), nil
		}).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			if toolbox.AsFloat(prep) >= 0 {
				return OutcomePositive, nil
			}
			return OutcomeNegative, nil
		}), nil
}

func asConfig(config interface{}) (*Config, error) {
	if config == nil {
		return &Config{}, nil
	}
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unsupported arith config type: %T", config)
	}
	return cfg, nil
}

// Registrations returns the arithmetic node type registrations
func Registrations() []*extension.Registration {
	configType := x.NewType(reflect.TypeOf(Config{}), x.WithName("arith.Config"))
	checkType := x.NewType(reflect.TypeOf(CheckConfig{}), x.WithName("arith.CheckConfig"))
	return []*extension.Registration{
		{Name: "arith/number", Config: configType, New: newNumber},
		{Name: "arith/add", Config: configType, New: func(name string, config interface{}) (execution.Node, error) {
			return newBinary(name, config, func(value, operand float64) float64 { return value + operand })
		}},
		{Name: "arith/subtract", Config: configType, New: func(name string, config interface{}) (execution.Node, error) {
			return newBinary(name, config, func(value, operand float64) float64 { return value - operand })
		}},
		{Name: "arith/multiply", Config: configType, New: func(name string, config interface{}) (execution.Node, error) {
			return newBinary(name, config, func(value, operand float64) float64 { return value * operand })
		}},
		{Name: "arith/check", Config: checkType, New: newCheck},
	}
}
