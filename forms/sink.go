package forms

import (
	"context"
	"log/slog"
	"strings"

	"recipebox/slack"
)

// LogSink records submissions in the log and nowhere else.
type LogSink struct{}

func (LogSink) Submit(ctx context.Context, s Submission) error {
	slog.Info("SUBMISSION: Recipe submitted",
		"id", s.ID,
		"name", s.Name,
		"category", s.Category,
		"ingredients", s.FilledIngredients(),
		"images", len(s.Images),
	)
	return nil
}

// SlackSink posts each submission to a Slack channel.
type SlackSink struct {
	Client  *slack.Client
	Channel string
}

func (k SlackSink) Submit(ctx context.Context, s Submission) error {
	return k.Client.Post(ctx, SlackMessage(k.Channel, s))
}

// SlackMessage renders a submission as a webhook message.
func SlackMessage(channel string, s Submission) slack.Message {
	return slack.Message{
		Channel: channel,
		Text:    "New recipe submitted: " + s.Name,
		Attachments: []slack.Attachment{{
			Title: s.Name,
			Text:  s.Instructions,
			Fields: []slack.Field{
				{Title: "Category", Value: s.Category, Short: true},
				{Title: "Ingredients", Value: strings.Join(s.FilledIngredients(), "\n")},
			},
			Footer: s.ID,
		}},
	}
}

var (
	_ Sink = LogSink{}
	_ Sink = SlackSink{}
)
