package mail

import (
	"fmt"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
)

// PackageKind tags every Package.
var PackageKind = entity.NewKind("Package", entity.ElementKind)

// PackageOptions holds optional package attributes.
type PackageOptions struct {
	// RequestSource identifies the component that originally asked for this
	// package, when it differs from the sender.
	RequestSource ident.ID
}

// Package is an envelope routed between mailboxes. Everything but the status
// is immutable after construction.
type Package struct {
	entity.Element

	sender        ident.ID
	recipient     ident.ID
	category      Category
	payload       any
	requestSource ident.ID

	status statusCell
}

// NewPackage creates a package in the created state. It is validated when
// sent or received.
func NewPackage(gen ident.Generator, sender, recipient ident.ID, category Category, payload any, optFns ...func(o *PackageOptions)) *Package {
	opts := PackageOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Package{
		Element:       entity.NewElement(gen, PackageKind),
		sender:        sender,
		recipient:     recipient,
		category:      category,
		payload:       payload,
		requestSource: opts.RequestSource,
	}
}

// Sender returns the sending mailbox identifier.
func (p *Package) Sender() ident.ID { return p.sender }

// Recipient returns the receiving mailbox identifier.
func (p *Package) Recipient() ident.ID { return p.recipient }

// Category returns the package category.
func (p *Package) Category() Category { return p.category }

// Payload returns the carried value.
func (p *Package) Payload() any { return p.payload }

// RequestSource returns the originating requester, if any.
func (p *Package) RequestSource() ident.ID { return p.requestSource }

// Status returns the current delivery state.
func (p *Package) Status() Status { return p.status.load() }

// Validate checks addressing and category.
func (p *Package) Validate() error {
	switch {
	case p.ID().IsZero():
		return errors.WrapSentinel(ErrInvalidPackage, "empty package identifier")
	case p.sender.IsZero():
		return errors.WrapSentinel(ErrInvalidPackage, "package %s has no sender", p.ID().Short())
	case p.recipient.IsZero():
		return errors.WrapSentinel(ErrInvalidPackage, "package %s has no recipient", p.ID().Short())
	case p.sender == p.recipient:
		return errors.WrapSentinel(ErrInvalidPackage, "package %s is addressed to its sender", p.ID().Short())
	case !p.category.Valid():
		return errors.WrapSentinel(ErrInvalidPackage, "package %s has unknown category %q", p.ID().Short(), p.category)
	}
	return nil
}

// String implements fmt.Stringer.
func (p *Package) String() string {
	return fmt.Sprintf("Package(%s %s->%s %s %s)", p.ID().Short(), p.sender.Short(), p.recipient.Short(), p.category, p.Status())
}
