// Package meshcore provides a small façade over the collection and mail
// packages. Most applications interact with it by:
//  1. Creating a Mesh via New() (optionally overriding the identifier
//     generator, logger or configuration)
//  2. Creating mailboxes for their components (NewMailbox), which are
//     registered with the router automatically
//  3. Sending packages between mailboxes and running the router (Run)
//
// Collections themselves (collection.Pile, collection.Progression,
// collection.Flow) are used directly; entities minted for them should draw
// identifiers from Mesh.IDs().
package meshcore

import (
	"context"

	"github.com/hupe1980/meshcore/config"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
	"github.com/hupe1980/meshcore/logging"
	"github.com/hupe1980/meshcore/mail"
)

// Options configures the Mesh instance.
type Options struct {
	// Config holds identifier, mail and log settings. Defaults to
	// config.Default().
	Config config.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Generator mints identifiers. Defaults to an ident.DefaultGenerator
	// using Config.Identifier.Prefix.
	Generator ident.Generator
}

// Mesh aggregates the identifier generator, logger and router shared by all
// mailboxes of one process.
type Mesh struct {
	opts   Options
	router *mail.Manager
}

// New creates a new Mesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Generator == nil {
		opts.Generator = ident.NewGenerator(func(o *ident.GeneratorOptions) {
			if opts.Config.Identifier.Prefix != "" {
				o.Prefix = opts.Config.Identifier.Prefix
			}
		})
	}

	router := mail.NewManager(func(o *mail.ManagerOptions) {
		o.Logger = componentLogger(opts.Logger, "router")
		o.RefreshInterval = opts.Config.Mail.RefreshInterval
	})

	return &Mesh{opts: opts, router: router}
}

// NewFromConfig validates cfg and builds a Mesh whose logger follows
// cfg.Log.
func NewFromConfig(cfg config.Config) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger, err := logging.NewFromConfig(cfg.Log)
	if err != nil {
		return nil, err
	}

	return New(func(o *Options) {
		o.Config = cfg
		o.Logger = logger
	}), nil
}

// componentLogger tags MeshLogger output with a component name; other
// loggers are returned unchanged.
func componentLogger(l logging.Logger, component string) logging.Logger {
	if ml, ok := l.(*logging.MeshLogger); ok {
		return ml.WithComponent(component)
	}
	return l
}

// IDs returns the identifier generator.
func (m *Mesh) IDs() ident.Generator { return m.opts.Generator }

// Logger returns the configured logger.
func (m *Mesh) Logger() logging.Logger { return m.opts.Logger }

// Config returns the configuration the Mesh was built with.
func (m *Mesh) Config() config.Config { return m.opts.Config }

// Router returns the mail router.
func (m *Mesh) Router() *mail.Manager { return m.router }

// NewMailbox creates a mailbox with a fresh identifier and registers it with
// the router.
func (m *Mesh) NewMailbox() (*mail.Mailbox, error) {
	id := m.opts.Generator.NewID()

	logger := m.opts.Logger
	if ml, ok := logger.(*logging.MeshLogger); ok {
		logger = ml.WithComponent("mailbox").WithMailbox(id.Short())
	}

	mb := mail.NewMailbox(id, func(o *mail.MailboxOptions) { o.Logger = logger })

	if err := m.router.AddSources(mb); err != nil {
		return nil, err
	}

	return mb, nil
}

// NewPackage creates a package with an identifier from the Mesh generator.
func (m *Mesh) NewPackage(sender, recipient ident.ID, category mail.Category, payload any, optFns ...func(o *mail.PackageOptions)) *mail.Package {
	return mail.NewPackage(m.opts.Generator, sender, recipient, category, payload, optFns...)
}

// Run routes packages until ctx is done.
func (m *Mesh) Run(ctx context.Context) error {
	return m.router.Run(ctx)
}
