package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockChatClient mocks the ChatClient interface
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func newTestExtractor(client ChatClient) *Extractor {
	e := NewExtractor(client, Config{
		Model:      "gemini-2.5-flash",
		RetryDelay: time.Millisecond,
	}, zap.NewNop())
	e.render = func(data []byte, maxPages int, logger *zap.Logger) ([][]byte, error) {
		return [][]byte{{0xff, 0xd8, 0xff}}, nil
	}
	return e
}

func responseWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestExtractSuccess(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(responseWith(`{"VendorName":"Acme"}`), nil).Once()

	e := newTestExtractor(client)
	payload, err := e.Extract(context.Background(), []byte("%PDF-fake"))

	require.NoError(t, err)
	assert.Equal(t, `{"VendorName":"Acme"}`, payload)
	client.AssertExpectations(t)
}

func TestExtractRetriesOnRateLimit(t *testing.T) {
	rateLimited := &openai.APIError{HTTPStatusCode: 429, Message: "rate limit exceeded"}

	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, rateLimited).Twice()
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(responseWith(`{"VendorName":"Acme"}`), nil).Once()

	e := newTestExtractor(client)
	e.retryDelay = 20 * time.Millisecond

	start := time.Now()
	payload, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, `{"VendorName":"Acme"}`, payload)
	client.AssertNumberOfCalls(t, "CreateChatCompletion", 3)
	// Two rate limited attempts mean two full delay intervals before success.
	assert.GreaterOrEqual(t, elapsed, 2*e.retryDelay)
}

func TestExtractPropagatesOtherFailures(t *testing.T) {
	boom := &openai.APIError{HTTPStatusCode: 500, Message: "internal error"}

	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, boom).Once()

	e := newTestExtractor(client)
	_, err := e.Extract(context.Background(), []byte("%PDF-fake"))

	require.Error(t, err)
	var apiErr *openai.APIError
	assert.True(t, errors.As(err, &apiErr))
	client.AssertNumberOfCalls(t, "CreateChatCompletion", 1)
}

func TestExtractStopsWhenContextCancelled(t *testing.T) {
	rateLimited := &openai.APIError{HTTPStatusCode: 429, Message: "rate limit exceeded"}

	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, rateLimited)

	e := newTestExtractor(client)
	e.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("%PDF-fake"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractEmptyChoices(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil).Once()

	e := newTestExtractor(client)
	_, err := e.Extract(context.Background(), []byte("%PDF-fake"))

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(&openai.APIError{HTTPStatusCode: 429}))
	assert.True(t, isRateLimited(errors.New("status code 429: quota exceeded")))
	assert.False(t, isRateLimited(&openai.APIError{HTTPStatusCode: 503}))
	assert.False(t, isRateLimited(errors.New("connection refused")))
}
