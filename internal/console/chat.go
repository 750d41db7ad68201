package console

import (
	"context"
	"strings"

	"github.com/coopco/postpilot/internal/providers"
	"github.com/coopco/postpilot/internal/session"
)

const chatSessionKey = "chat:default"

// chatMode is a free-form conversation with the model. The transcript
// persists across runs so the model keeps its context.
func (c *Controller) chatMode(ctx context.Context) {
	sess := c.sessions.GetOrCreate(chatSessionKey)
	c.printf("Chat mode. Type 'exit' or 'quit' to return to the menu.\n")

	for {
		input, err := c.ask("You: ")
		if err != nil {
			break
		}
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			if err := c.sessions.Save(sess); err != nil {
				c.errlog.Append("chat session save", err)
			}
			return
		}

		sess.AppendMessage(session.Message{Role: "user", Content: input})

		history := toProviderMessages(sess.AllMessages())
		reply, err := c.text.Converse(ctx, history)
		if err != nil {
			c.report("chat", err)
			continue
		}

		sess.AppendMessage(session.Message{Role: "assistant", Content: reply})
		c.printf("AI: %s\n", reply)
	}

	if err := c.sessions.Save(sess); err != nil {
		c.errlog.Append("chat session save", err)
	}
}

func toProviderMessages(msgs []session.Message) []providers.Message {
	out := make([]providers.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, providers.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
