package publish

import "context"

// Sink receives the rendered projects document at the end of a run
type Sink interface {
	Name() string
	Write(ctx context.Context, data []byte) error
}
