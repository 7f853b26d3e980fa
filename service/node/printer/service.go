// Package printer provides a node type that prints a message, optionally
// expanded with session state.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/extension"
	"github.com/viant/x"
)

// Config configures a printer node
type Config struct {
	// Message is the text to print; $key references expand to session state.
	Message string `yaml:"message" json:"message"`
}

// Option customises the printer registration
type Option func(*printer)

// WithWriter redirects output, used by tests
func WithWriter(writer io.Writer) Option {
	return func(p *printer) {
		p.writer = writer
	}
}

type printer struct {
	writer io.Writer
}

func (p *printer) expand(session *execution.Session, message string) string {
	for key, value := range session.Snapshot() {
		message = strings.ReplaceAll(message, "$"+key, fmt.Sprintf("%v", value))
	}
	return message
}

func (p *printer) new(name string, config interface{}) (execution.Node, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unsupported printer config type: %T", config)
	}
	return execution.NewTask(name).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			fmt.Fprintln(p.writer, p.expand(session, cfg.Message))
			return "", nil
		}), nil
}

// Registration returns the printer node type registration
func Registration(options ...Option) *extension.Registration {
	p := &printer{writer: os.Stdout}
	for _, option := range options {
		option(p)
	}
	return &extension.Registration{
		Name:   "printer",
		Config: x.NewType(reflect.TypeOf(Config{}), x.WithName("printer.Config")),
		New:    p.new,
	}
}
