package iuhpage

import (
	"context"
	"errors"
	"fmt"

	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/asset"
	"github.com/landinghub/pagekit/core/page"
	"github.com/sirupsen/logrus"
)

// ErrUnresolvedAsset is returned by a strict Packer when a reference cannot
// be resolved.
var ErrUnresolvedAsset = errors.New("unresolved asset")

// Packer bundles a page and its images into an Envelope.
type Packer struct {
	resolver core.AssetResolver
	logger   logrus.FieldLogger
	// Lenient skips references that fail to resolve instead of aborting.
	Lenient bool
}

// New creates a Packer that resolves references through r.
func New(r core.AssetResolver, logger logrus.FieldLogger) *Packer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Packer{resolver: r, logger: logger}
}

// Pack collects the canvas background and every image source and
// background url(...) in doc, de-duplicated in first-seen order, and
// resolves each one to a data URI. References that are already data URIs
// are not embedded again. The envelope carries doc itself, unmodified.
func (p *Packer) Pack(ctx context.Context, doc *page.PageData) (*Envelope, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no page to pack", page.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	queue := asset.NewQueue()
	queue.Add(doc.AssetRefs()...)

	images := make(map[string]string, queue.Len())
	for queue.HasNext() {
		ref := queue.Next()
		if asset.Classify(ref) == asset.KindDataURI {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		uri, err := p.resolver.Resolve(ctx, ref)
		if err == nil && asset.Classify(uri) != asset.KindDataURI {
			err = fmt.Errorf("resolver returned %.32q, not a data URI", uri)
		}
		if err != nil {
			if !p.Lenient {
				return nil, fmt.Errorf("%w: %s: %w", ErrUnresolvedAsset, ref, err)
			}
			p.logger.WithError(err).WithField("ref", ref).Warn("skipping unresolved asset")
			continue
		}
		images[ref] = uri
	}

	env := &Envelope{
		Format:         Format,
		PageData:       doc,
		EmbeddedImages: images,
	}
	if doc.Meta != nil {
		env.Metadata = &Metadata{Title: doc.Meta.Title, Description: doc.Meta.Description}
	}

	p.logger.WithFields(logrus.Fields{
		"references": queue.Len(),
		"embedded":   len(images),
	}).Debug("packed page")
	return env, nil
}
