package service

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/worldchef/backend/internal/llm"
	"github.com/pageza/worldchef/backend/internal/metrics"
	"github.com/pageza/worldchef/backend/internal/mocks"
	"github.com/pageza/worldchef/backend/internal/types"
)

const aglioReply = "Here's a classic you'll love:\n\n" +
	"```recipe\n" +
	`{"name":"Aglio e Olio","region":"european","cuisine":"Italian","difficulty":"Easy","servings":2,"ingredients":[{"name":"spaghetti","amount":"200","unit":"g"}],"instructions":["Boil pasta","Saute garlic","Combine"]}` +
	"\n```\n\nBuon appetito!"

func newTestRelay(provider llm.Provider) *ChatRelay {
	return NewChatRelay(provider, RelayConfig{MaxTokens: 2048, Timeout: time.Second}, nil, nil)
}

func TestChatRelay_EndToEnd(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(aglioReply, nil)

	relay := newTestRelay(provider)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{
		Message: "Give me an easy Italian pasta recipe",
		Region:  "european",
		History: []types.ConversationTurn{},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Recipe)

	assert.Equal(t, "Aglio e Olio", resp.Recipe.Name)
	assert.Equal(t, "Easy", resp.Recipe.Difficulty)
	assert.Equal(t, 2, resp.Recipe.Servings)
	assert.Equal(t, "Italian", resp.Recipe.Cuisine)
	assert.Len(t, resp.Recipe.Ingredients, 1)
	assert.Equal(t, []string{"Boil pasta", "Saute garlic", "Combine"}, resp.Recipe.Instructions)
	assert.Empty(t, resp.Recipe.Tags)
	assert.NotContains(t, resp.Response, "```")
	assert.NotContains(t, resp.Response, "recipe")
	assert.Equal(t, "Here's a classic you'll love:\n\n\n\nBuon appetito!", resp.Response)

	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestChatRelay_PromptComposition(t *testing.T) {
	provider := new(mocks.MockProvider)
	var captured llm.CompletionRequest
	provider.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.CompletionRequest)
		}).
		Return("Sure!", nil)

	relay := newTestRelay(provider)
	_, err := relay.Handle(context.Background(), types.ChatRequest{
		Message: "Something with lentils?",
		Region:  "middle-eastern",
		History: []types.ConversationTurn{
			{Role: types.RoleUser, Content: "Hi"},
			{Role: types.RoleAssistant, Content: "Hello! What are you craving?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2048, captured.MaxTokens)
	assert.Contains(t, captured.System, "```recipe")
	assert.Contains(t, captured.System, "middle-eastern")
	assert.Equal(t, []llm.Message{
		{Role: types.RoleUser, Content: "Hi"},
		{Role: types.RoleAssistant, Content: "Hello! What are you craving?"},
		{Role: types.RoleUser, Content: "Something with lentils?"},
	}, captured.Messages)
}

func TestChatRelay_EmptyRegionMeansAll(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return req.System == BuildSystemPrompt(types.RegionAll)
	})).Return("Anything you like.", nil)

	relay := newTestRelay(provider)
	_, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Surprise me"})
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestChatRelay_NoRecipeBlock(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return("  Saffron is the dried stigma of a crocus.\n", nil)

	relay := newTestRelay(provider)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{Message: "What is saffron?", Region: "all"})
	require.NoError(t, err)

	assert.Nil(t, resp.Recipe)
	assert.Equal(t, "Saffron is the dried stigma of a crocus.", resp.Response)
}

func TestChatRelay_FreshRecipeID(t *testing.T) {
	reply := "```recipe\n{\"id\": \"abc-123\", \"name\": \"Jollof Rice\"}\n```"
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	relay := newTestRelay(provider)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Jollof please", Region: "african"})
	require.NoError(t, err)
	require.NotNil(t, resp.Recipe)

	assert.NotEmpty(t, resp.Recipe.ID)
	assert.NotEqual(t, "abc-123", resp.Recipe.ID)
	assert.Equal(t, DefaultServings, resp.Recipe.Servings)
	assert.Equal(t, DefaultDifficulty, resp.Recipe.Difficulty)
	assert.Equal(t, []string{}, resp.Recipe.Tags)
	assert.Empty(t, resp.Response)
}

func TestChatRelay_InvalidRecipeJSON(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	collector := metrics.New()

	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Return("Try this!\n```recipe\n{\"name\": \"Pho\", \"servings\": \n```\nEnjoy.", nil)

	relay := NewChatRelay(provider, RelayConfig{MaxTokens: 512}, zap.New(core), collector)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Pho?", Region: "asian"})
	require.NoError(t, err)

	assert.Nil(t, resp.Recipe)
	assert.Equal(t, "Try this!\n\nEnjoy.", resp.Response)
	assert.Equal(t, 1, logs.FilterMessage("recipe extraction failed").Len())
	assert.Contains(t, scrape(t, collector), `chat_recipe_extractions_total{outcome="failed"} 1`)
}

func TestChatRelay_MultipleBlocks(t *testing.T) {
	reply := "Option one:\n```recipe\n{\"name\": \"Tacos al Pastor\"}\n```\nOption two:\n```recipe\n{\"name\": \"Mole\"}\n```"
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	relay := newTestRelay(provider)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Mexican?", Region: "latin-american"})
	require.NoError(t, err)
	require.NotNil(t, resp.Recipe)

	assert.Equal(t, "Tacos al Pastor", resp.Recipe.Name)
	assert.NotContains(t, resp.Response, "```")
	assert.Contains(t, resp.Response, "Option one:")
	assert.Contains(t, resp.Response, "Option two:")
}

func TestChatRelay_ProviderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	collector := metrics.New()

	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Return("", &llm.ProviderError{Provider: "mock", StatusCode: 529, Err: errors.New("overloaded")})

	relay := NewChatRelay(provider, RelayConfig{MaxTokens: 2048}, zap.New(core), collector)
	resp, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Hello"})

	assert.Nil(t, resp)
	require.Error(t, err)
	var perr *llm.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 529, perr.StatusCode)

	provider.AssertNumberOfCalls(t, "Complete", 1)
	assert.Equal(t, 1, logs.FilterMessage("provider call failed").Len())
	assert.Contains(t, scrape(t, collector), `chat_provider_requests_total{provider="mock",status="error"} 1`)
}

func TestChatRelay_PlainErrorBecomesProviderError(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection reset"))

	relay := newTestRelay(provider)
	_, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Hello"})

	require.Error(t, err)
	assert.True(t, llm.IsProviderError(err))
	assert.Contains(t, err.Error(), "connection reset")
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestChatRelay_Timeout(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return("", context.DeadlineExceeded)

	relay := NewChatRelay(provider, RelayConfig{MaxTokens: 2048, Timeout: 20 * time.Millisecond}, nil, nil)
	_, err := relay.Handle(context.Background(), types.ChatRequest{Message: "Hello"})

	require.Error(t, err)
	assert.True(t, llm.IsProviderError(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestChatRelay_Idempotent(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(aglioReply, nil)

	relay := newTestRelay(provider)
	req := types.ChatRequest{Message: "Give me an easy Italian pasta recipe", Region: "european"}

	first, err := relay.Handle(context.Background(), req)
	require.NoError(t, err)
	second, err := relay.Handle(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Recipe.ID, second.Recipe.ID)
	first.Recipe.ID, second.Recipe.ID = "", ""
	assert.Equal(t, first, second)
}

func scrape(t *testing.T, collector *metrics.Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(body))
}
