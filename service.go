package stepflow

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/extension"
	"github.com/viant/stepflow/model"
	"github.com/viant/stepflow/model/types"
	"github.com/viant/stepflow/policy"
	"github.com/viant/stepflow/service/meta"
	"github.com/viant/stepflow/service/node/arith"
	"github.com/viant/stepflow/service/node/printer"
	"github.com/viant/structology/conv"
	"github.com/viant/x"
	"gopkg.in/yaml.v3"
)

// Service is the engine facade: it loads declarative graph definitions,
// builds executable flows out of registered node types and hands out a
// Runtime to run them.
type Service struct {
	config            *Config
	runtime           *Runtime
	nodes             *extension.Nodes
	extensionTypes    []*x.Type
	nodeRegistrations []*extension.Registration
	metaService       *meta.Service
	metaBaseURL       string
	metaFsOptions     []storage.Option
	converter         *conv.Converter
	listener          execution.Listener
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.nodes = extension.NewNodes(s.extensionTypes...)
	for _, registration := range arith.Registrations() {
		s.nodes.Register(registration)
	}
	s.nodes.Register(printer.Registration())
	for _, registration := range s.nodeRegistrations {
		s.nodes.Register(registration)
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	converterOptions := conv.DefaultOptions()
	converterOptions.ClonePointerData = true
	converterOptions.IgnoreUnmapped = true
	s.converter = conv.NewConverter(converterOptions)
}

// Config returns the effective engine configuration
func (s *Service) Config() *Config {
	return s.config
}

// Nodes returns the node type registry
func (s *Service) Nodes() *extension.Nodes {
	return s.nodes
}

// RegisterExtensionTypes registers additional Go types with the registry
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.nodes.Types().Register(types[i])
	}
}

// RegisterNodes registers additional declarative node types
func (s *Service) RegisterNodes(registrations ...*extension.Registration) {
	for i := range registrations {
		s.nodes.Register(registrations[i])
	}
}

// Runtime returns the service runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Load loads a graph definition from the supplied location
func (s *Service) Load(ctx context.Context, URL string) (*model.Graph, error) {
	graph := &model.Graph{}
	if err := s.metaService.Load(ctx, URL, graph); err != nil {
		return nil, err
	}
	graph.Source = &model.Source{URL: URL}
	return graph, nil
}

// DecodeYAML decodes a graph definition from YAML bytes
func (s *Service) DecodeYAML(data []byte) (*model.Graph, error) {
	graph := &model.Graph{}
	if err := yaml.Unmarshal(data, graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// Build turns a declarative graph into an executable flow: every node
// definition is instantiated through its registered factory, transitions
// become successor edges and the graph init parameters become the flow
// parameters.
func (s *Service) Build(graph *model.Graph) (*execution.Flow, error) {
	if issues := graph.Validate(); len(issues) > 0 {
		return nil, errors.Join(issues...)
	}
	built := make(map[string]execution.Node, len(graph.Nodes))
	for _, def := range graph.Nodes {
		node, err := s.buildNode(def.ID, def.Type, def.Config)
		if err != nil {
			return nil, err
		}
		if def.Retry != nil {
			retrier, ok := node.(interface{ SetRetry(*policy.Retry) })
			if !ok {
				return nil, types.NewUsageError("node %q: type %q does not support retry", def.ID, def.Type)
			}
			interval := time.Duration(0)
			if def.Retry.Interval != "" {
				if interval, err = time.ParseDuration(def.Retry.Interval); err != nil {
					return nil, err
				}
			}
			retrier.SetRetry(policy.New(def.Retry.MaxAttempts, interval))
		}
		built[def.ID] = node
	}
	for _, def := range graph.Nodes {
		for _, transition := range def.Goto {
			on := transition.On
			if on == "" {
				on = execution.DefaultOutcome
			}
			if err := built[def.ID].Next(built[transition.Node], on); err != nil {
				return nil, err
			}
		}
	}
	flow := execution.NewFlow(graph.Name, built[graph.Start]).WithListener(s.listener)
	if len(graph.Init) > 0 {
		flow.SetParams(graph.Init.ToMap())
	}
	return flow, nil
}

// NewBatchFlow creates a batch flow wired with the service listener
func (s *Service) NewBatchFlow(name string, start execution.Node) *execution.BatchFlow {
	return execution.NewBatchFlow(name, start).WithListener(s.listener)
}

// NewParallelBatchFlow creates a parallel batch flow bounded by the
// service's parallel configuration and wired with the service listener
func (s *Service) NewParallelBatchFlow(name string, start execution.Node) *execution.ParallelBatchFlow {
	return execution.NewParallelBatchFlow(name, start).
		WithMaxConcurrent(s.config.Parallel.MaxConcurrent).
		WithErrorCollection(s.config.Parallel.CollectErrors).
		WithListener(s.listener)
}

// buildNode instantiates a node through its registered factory, converting
// the raw configuration map into the factory's typed config first.
func (s *Service) buildNode(id, nodeType string, config map[string]interface{}) (execution.Node, error) {
	registration := s.nodes.Lookup(nodeType)
	if registration == nil {
		return nil, types.NewUsageError("node %q: unknown node type %q", id, nodeType)
	}
	var typed interface{}
	if registration.Config != nil {
		instance := newInstance(registration.Config)
		if len(config) > 0 {
			if err := s.converter.Convert(config, instance); err != nil {
				return nil, err
			}
		}
		typed = instance
	}
	return registration.New(id, typed)
}

func newInstance(dataType *x.Type) interface{} {
	rType := dataType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return reflect.New(rType).Interface()
}

// New creates a new stepflow service
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	ret.runtime = &Runtime{service: ret}
	return ret
}
