package assistant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summarizer/internal/models"
)

// fakeThreadsAPI scripts the protocol: CreateRun returns a queued run and
// successive RetrieveRun calls walk through statuses.
type fakeThreadsAPI struct {
	statuses []openai.RunStatus
	reply    string
	lastErr  *openai.RunLastError

	createThreadErr  error
	createMessageErr error
	createRunErr     error
	retrieveRunErr   error
	listMessageErr   error

	messageContent string
	retrieveCalls  int
	listCalls      int
}

func (f *fakeThreadsAPI) CreateThread(_ context.Context, _ openai.ThreadRequest) (openai.Thread, error) {
	if f.createThreadErr != nil {
		return openai.Thread{}, f.createThreadErr
	}
	return openai.Thread{ID: "thread-1"}, nil
}

func (f *fakeThreadsAPI) CreateMessage(_ context.Context, _ string, req openai.MessageRequest) (openai.Message, error) {
	if f.createMessageErr != nil {
		return openai.Message{}, f.createMessageErr
	}
	f.messageContent = req.Content
	return openai.Message{ID: "msg-1"}, nil
}

func (f *fakeThreadsAPI) CreateRun(_ context.Context, _ string, _ openai.RunRequest) (openai.Run, error) {
	if f.createRunErr != nil {
		return openai.Run{}, f.createRunErr
	}
	return openai.Run{ID: "run-1", Status: openai.RunStatusQueued}, nil
}

func (f *fakeThreadsAPI) RetrieveRun(_ context.Context, _ string, _ string) (openai.Run, error) {
	if f.retrieveRunErr != nil {
		return openai.Run{}, f.retrieveRunErr
	}
	run := openai.Run{ID: "run-1", LastError: f.lastErr}
	if f.retrieveCalls < len(f.statuses) {
		run.Status = f.statuses[f.retrieveCalls]
	} else {
		run.Status = f.statuses[len(f.statuses)-1]
	}
	f.retrieveCalls++
	return run, nil
}

func (f *fakeThreadsAPI) ListMessage(_ context.Context, _ string, _ *int, _ *string, _ *string, _ *string, _ *string) (openai.MessagesList, error) {
	f.listCalls++
	if f.listMessageErr != nil {
		return openai.MessagesList{}, f.listMessageErr
	}
	return openai.MessagesList{Messages: []openai.Message{
		{
			Role: openai.ChatMessageRoleAssistant,
			Content: []openai.MessageContent{
				{Type: "text", Text: &openai.MessageText{Value: f.reply}},
			},
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: []openai.MessageContent{
				{Type: "text", Text: &openai.MessageText{Value: "original email"}},
			},
		},
	}}, nil
}

func newTestOrchestrator(api threadsAPI, sleeps *int) *Orchestrator {
	return &Orchestrator{
		api:          api,
		assistantID:  "asst-test",
		pollInterval: 15 * time.Second,
		sleep:        func(time.Duration) { *sleeps++ },
		logger:       zerolog.Nop(),
	}
}

func TestSummarize_Success(t *testing.T) {
	api := &fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusInProgress, openai.RunStatusCompleted},
		reply:    "```json\n{\"issues\":[{\"title\":\"First\",\"content\":\"one【4:0†source】\"},{\"title\":\"Second\",\"content\":\"two\"}]}\n```",
	}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	got := o.Summarize(context.Background(), "email body")
	require.NotNil(t, got)
	assert.Equal(t, &models.IssueSet{Issues: []models.Issue{
		{Title: "First", Content: "one"},
		{Title: "Second", Content: "two"},
	}}, got)

	assert.Equal(t, "email body", api.messageContent)
	assert.Equal(t, 2, sleeps, "one sleep per poll while the run is not terminal")
	assert.Equal(t, 1, api.listCalls)
}

func TestSummarize_ImmediateCompletion(t *testing.T) {
	api := &fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusCompleted},
		reply:    `{"issues":[]}`,
	}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	got := o.Summarize(context.Background(), "email body")
	require.NotNil(t, got)
	assert.Empty(t, got.Issues)
	assert.Equal(t, 1, sleeps)
}

func TestSummarize_RunFailed(t *testing.T) {
	api := &fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusFailed},
		lastErr:  &openai.RunLastError{Code: "rate_limit_exceeded", Message: "slow down"},
	}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	got := o.Summarize(context.Background(), "email body")
	assert.Nil(t, got)
	assert.Equal(t, 1, sleeps)
	assert.Equal(t, 0, api.listCalls, "a failed run must not fetch messages")
}

func TestSummarize_MalformedReply(t *testing.T) {
	api := &fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusCompleted},
		reply:    "Sure! ```json\n{not valid json\n```",
	}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	assert.Nil(t, o.Summarize(context.Background(), "email body"))
}

func TestSummarize_MissingIssuesKeyYieldsEmptySet(t *testing.T) {
	api := &fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusCompleted},
		reply:    `{"summary":"not the expected shape"}`,
	}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	got := o.Summarize(context.Background(), "email body")
	require.NotNil(t, got)
	assert.Empty(t, got.Issues)
}

func TestSummarize_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeThreadsAPI
	}{
		{
			name: "create thread fails",
			api:  &fakeThreadsAPI{createThreadErr: fmt.Errorf("boom")},
		},
		{
			name: "create message fails",
			api:  &fakeThreadsAPI{createMessageErr: fmt.Errorf("boom")},
		},
		{
			name: "create run fails",
			api:  &fakeThreadsAPI{createRunErr: fmt.Errorf("boom")},
		},
		{
			name: "poll fails",
			api:  &fakeThreadsAPI{retrieveRunErr: fmt.Errorf("boom")},
		},
		{
			name: "list messages fails",
			api: &fakeThreadsAPI{
				statuses:       []openai.RunStatus{openai.RunStatusCompleted},
				listMessageErr: fmt.Errorf("boom"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeps := 0
			o := newTestOrchestrator(tt.api, &sleeps)
			assert.Nil(t, o.Summarize(context.Background(), "email body"))
		})
	}
}

func TestSummarize_NoAssistantReply(t *testing.T) {
	api := &noReplyAPI{fakeThreadsAPI{
		statuses: []openai.RunStatus{openai.RunStatusCompleted},
	}}
	sleeps := 0
	o := newTestOrchestrator(api, &sleeps)

	assert.Nil(t, o.Summarize(context.Background(), "email body"))
}

// noReplyAPI lists only the user's own message back.
type noReplyAPI struct {
	fakeThreadsAPI
}

func (f *noReplyAPI) ListMessage(_ context.Context, _ string, _ *int, _ *string, _ *string, _ *string, _ *string) (openai.MessagesList, error) {
	return openai.MessagesList{Messages: []openai.Message{
		{
			Role: openai.ChatMessageRoleUser,
			Content: []openai.MessageContent{
				{Type: "text", Text: &openai.MessageText{Value: "original email"}},
			},
		},
	}}, nil
}
