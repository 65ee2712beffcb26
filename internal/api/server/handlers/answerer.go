package handlers

import (
	"context"
	"fmt"
)

// Answerer produces the answer to a question about an uploaded document.
type Answerer interface {
	Answer(ctx context.Context, doc Document, question string) (string, error)
}

// CannedAnswerer does not read the document; it only confirms what it got.
type CannedAnswerer struct{}

func (CannedAnswerer) Answer(_ context.Context, doc Document, question string) (string, error) {
	return fmt.Sprintf("The development backend received %q about %s (%d bytes) but does not read documents.",
		question, doc.Name, len(doc.Content)), nil
}
