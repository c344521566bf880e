package engine

import (
	"context"

	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/model"
)

// Publisher receives every snapshot and error notice the engine produces.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap *model.Snapshot) error
	PublishError(ctx context.Context, notice model.ErrorNotice) error
}

// PublisherFuncs adapts plain functions to Publisher. Nil fields are no-ops.
type PublisherFuncs struct {
	Snapshot func(ctx context.Context, snap *model.Snapshot) error
	Error    func(ctx context.Context, notice model.ErrorNotice) error
}

func (p PublisherFuncs) PublishSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if p.Snapshot == nil {
		return nil
	}
	return p.Snapshot(ctx, snap)
}

func (p PublisherFuncs) PublishError(ctx context.Context, notice model.ErrorNotice) error {
	if p.Error == nil {
		return nil
	}
	return p.Error(ctx, notice)
}

func (e *Engine) publishSnapshot(ctx context.Context, snap *model.Snapshot) {
	for _, p := range e.publishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			ctxlog.FromContext(ctx).Warn("Publisher rejected snapshot.", "publisher", publisherName(p), "error", err)
		}
	}
}

func (e *Engine) publishError(ctx context.Context, err error) {
	notice := model.NewErrorNotice(err)
	for _, p := range e.publishers {
		if perr := p.PublishError(ctx, notice); perr != nil {
			ctxlog.FromContext(ctx).Warn("Publisher rejected error notice.", "publisher", publisherName(p), "error", perr)
		}
	}
}

func publisherName(p Publisher) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "anonymous"
}
