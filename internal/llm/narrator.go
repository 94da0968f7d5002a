package llm

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Narrator turns an assembled prompt into the natural-language reply by
// running a single generate call against the configured backend.
type Narrator struct {
	cm model.BaseChatModel
}

// NewNarrator wraps a chat model for narration.
func NewNarrator(cm model.BaseChatModel) *Narrator {
	return &Narrator{cm: cm}
}

// Narrate performs one generation; transport failures are reported to the
// caller as errors, never panics.
func (n *Narrator) Narrate(ctx context.Context, promptText string) (string, error) {
	msg, err := n.cm.Generate(ctx, []*schema.Message{schema.UserMessage(promptText)})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
