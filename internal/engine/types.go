package engine

import (
	"context"

	"github.com/m3rciful/assetbot/internal/asset"
)

// Inbound is one text message from a user.
type Inbound struct {
	UserID      int64
	Username    string
	DisplayName string
	Text        string
}

// Keyboard describes the reply keyboard sent with a reply. Remove asks the
// transport to hide any keyboard; Rows is ignored then.
type Keyboard struct {
	Rows   [][]string
	Remove bool
}

// Reply is the single message sent back for an inbound message.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Submitter persists finished records.
type Submitter interface {
	Submit(ctx context.Context, records []asset.Record) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, records []asset.Record) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, records []asset.Record) error {
	return f(ctx, records)
}
