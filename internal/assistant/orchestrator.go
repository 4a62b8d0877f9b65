// Package assistant drives one OpenAI assistant run per newsletter body and
// parses the constrained JSON reply into issue records.
package assistant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"summarizer/internal/models"
)

// threadsAPI is the slice of the OpenAI client the orchestrator needs.
// *openai.Client satisfies it; tests inject fakes.
type threadsAPI interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// Orchestrator binds a fixed, pre-provisioned assistant identity to fresh
// threads and polls each run to a terminal status.
type Orchestrator struct {
	api          threadsAPI
	assistantID  string
	pollInterval time.Duration
	sleep        func(time.Duration)
	logger       zerolog.Logger
}

// New creates an orchestrator for the given assistant id.
func New(client *openai.Client, assistantID string, pollInterval time.Duration, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		api:          client,
		assistantID:  assistantID,
		pollInterval: pollInterval,
		sleep:        time.Sleep,
		logger:       logger,
	}
}

// Summarize partitions one email body into issues. A nil result means the
// item is dropped: every failure along the protocol is logged here and the
// caller moves on without retrying.
func (o *Orchestrator) Summarize(ctx context.Context, emailContent string) *models.IssueSet {
	thread, err := o.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to create thread")
		return nil
	}
	o.logger.Info().Str("thread_id", thread.ID).Msg("Thread created")

	if _, err := o.api.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: emailContent,
	}); err != nil {
		o.logger.Error().Err(err).Str("thread_id", thread.ID).Msg("Failed to add message to thread")
		return nil
	}

	run, err := o.api.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: o.assistantID})
	if err != nil {
		o.logger.Error().Err(err).Str("thread_id", thread.ID).Msg("Failed to start run")
		return nil
	}

	// Poll until a terminal status appears. The run API is asynchronous with
	// no webhook here; a fixed-interval poll with no attempt cap matches the
	// expected run latency and the batch caller's tolerance for blocking.
	status := run.Status
	for status == openai.RunStatusQueued || status == openai.RunStatusInProgress {
		o.sleep(o.pollInterval)
		updated, err := o.api.RetrieveRun(ctx, thread.ID, run.ID)
		if err != nil {
			o.logger.Error().Err(err).Str("run_id", run.ID).Msg("Failed to poll run status")
			return nil
		}
		status = updated.Status
		o.logger.Info().Str("status", string(status)).Msg("Run status update")
	}

	if status != openai.RunStatusCompleted {
		event := o.logger.Error().Str("run_id", run.ID).Str("status", string(status))
		if failed, err := o.api.RetrieveRun(ctx, thread.ID, run.ID); err == nil && failed.LastError != nil {
			event = event.Str("code", string(failed.LastError.Code)).Str("detail", failed.LastError.Message)
		}
		event.Msg("Run did not complete")
		return nil
	}

	messages, err := o.api.ListMessage(ctx, thread.ID, nil, nil, nil, nil, nil)
	if err != nil {
		o.logger.Error().Err(err).Str("thread_id", thread.ID).Msg("Failed to list thread messages")
		return nil
	}

	var reply *openai.Message
	for i := range messages.Messages {
		if messages.Messages[i].Role == openai.ChatMessageRoleAssistant {
			reply = &messages.Messages[i]
			break
		}
	}
	if reply == nil || len(reply.Content) == 0 {
		o.logger.Error().Str("thread_id", thread.ID).Msg("No assistant response found")
		return nil
	}

	raw := ""
	if reply.Content[0].Text != nil {
		raw = reply.Content[0].Text.Value
	}
	cleaned := Sanitize(raw)

	var issues models.IssueSet
	if err := json.Unmarshal([]byte(cleaned), &issues); err != nil {
		o.logger.Error().Err(err).
			Str("raw", raw).
			Str("cleaned", cleaned).
			Msg("Failed to parse assistant reply as JSON")
		return nil
	}
	return &issues
}
