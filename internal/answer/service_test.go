package answer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lex-research/internal/relevance"
	"github.com/sells-group/lex-research/pkg/deepseek"
)

// spyClient records every request and answers via fn.
type spyClient struct {
	calls atomic.Int32
	last  deepseek.ChatCompletionRequest
	fn    func(n int32) (*deepseek.ChatCompletionResponse, error)
}

func (s *spyClient) ChatCompletion(ctx context.Context, req deepseek.ChatCompletionRequest) (*deepseek.ChatCompletionResponse, error) {
	n := s.calls.Add(1)
	s.last = req
	return s.fn(n)
}

func okResponse(content string) *deepseek.ChatCompletionResponse {
	return &deepseek.ChatCompletionResponse{
		ID:      "cmpl-1",
		Choices: []deepseek.Choice{{Message: deepseek.Message{Role: "assistant", Content: content}}},
	}
}

// timeoutError satisfies net.Error.
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newTestService(client deepseek.Client, key string, maxRetries int) *Service {
	return NewService(Config{
		APIKey:         key,
		Client:         client,
		Extractor:      relevance.NewExtractor(relevance.DefaultTable()),
		GroundingChars: 6000,
		Temperature:    0.1,
		MaxTokens:      2000,
		MaxRetries:     maxRetries,
		BackoffStep:    time.Millisecond,
	})
}

func TestAskNoCredentialSkipsNetwork(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		t.Fatal("no request should be issued without a credential")
		return nil, nil
	}}

	svc := newTestService(spy, "", 2)
	assert.False(t, svc.Configured())

	out := svc.Ask(context.Background(), "问题", "语料", "法国")
	assert.Contains(t, out, "未配置")
	assert.Equal(t, int32(0), spy.calls.Load())
}

func TestAskSuccessGroundsPrompt(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		return okResponse("有准入要求。法律依据：第3条。"), nil
	}}

	svc := newTestService(spy, "key", 2)
	assert.True(t, svc.Configured())

	corpus := "第三条 数据控制者应当注册登记。"
	out := svc.Ask(context.Background(), "针对法国，是否有注册登记准入要求？", corpus, "法国")
	assert.Equal(t, "有准入要求。法律依据：第3条。", out)

	require.Len(t, spy.last.Messages, 2)
	system := spy.last.Messages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "法国法律法规知识库内容")
	assert.Contains(t, system.Content, "注册登记")
	assert.Contains(t, system.Content, "法律依据：")

	user := spy.last.Messages[1]
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "针对法国，是否有注册登记准入要求？", user.Content)

	require.NotNil(t, spy.last.Temperature)
	assert.InDelta(t, 0.1, *spy.last.Temperature, 0.001)
	require.NotNil(t, spy.last.MaxTokens)
	assert.Equal(t, 2000, *spy.last.MaxTokens)
}

func TestAskRetriesTimeoutExactly(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		return nil, timeoutError{}
	}}

	svc := newTestService(spy, "key", 2)
	out := svc.Ask(context.Background(), "问题", "语料", "德国")

	// Total calls = max retries + 1, and the failure string is the
	// timeout-specific one.
	assert.Equal(t, int32(3), spy.calls.Load())
	assert.True(t, strings.HasPrefix(out, "API调用超时"), "got %q", out)
}

func TestAskRecoversOnRetry(t *testing.T) {
	spy := &spyClient{fn: func(n int32) (*deepseek.ChatCompletionResponse, error) {
		if n == 1 {
			return nil, &deepseek.StatusError{StatusCode: http.StatusServiceUnavailable, Body: "overloaded"}
		}
		return okResponse("恢复成功"), nil
	}}

	svc := newTestService(spy, "key", 2)
	out := svc.Ask(context.Background(), "问题", "语料", "荷兰")

	assert.Equal(t, "恢复成功", out)
	assert.Equal(t, int32(2), spy.calls.Load())
}

func TestAskNoRetryOnAuthFailure(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		return nil, &deepseek.StatusError{StatusCode: http.StatusUnauthorized, Body: "invalid key"}
	}}

	svc := newTestService(spy, "key", 5)
	out := svc.Ask(context.Background(), "问题", "语料", "英国")

	assert.Equal(t, int32(1), spy.calls.Load())
	assert.True(t, strings.HasPrefix(out, "API调用失败"), "got %q", out)
}

func TestAskOversizedResponseMessage(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		return nil, deepseek.ErrResponseTooLarge
	}}

	svc := newTestService(spy, "key", 1)
	out := svc.Ask(context.Background(), "问题", "语料", "英国")

	// Oversized responses are transient: retried, then reported with the
	// size-specific message.
	assert.Equal(t, int32(2), spy.calls.Load())
	assert.True(t, strings.HasPrefix(out, "API响应超出大小限制"), "got %q", out)
}

func TestAskRetriesMalformedResponse(t *testing.T) {
	spy := &spyClient{fn: func(n int32) (*deepseek.ChatCompletionResponse, error) {
		if n < 3 {
			return nil, deepseek.ErrMalformedResponse
		}
		return okResponse("修复"), nil
	}}

	svc := newTestService(spy, "key", 2)
	out := svc.Ask(context.Background(), "问题", "语料", "西班牙")

	assert.Equal(t, "修复", out)
	assert.Equal(t, int32(3), spy.calls.Load())
}

func TestAskNeverReturnsEmpty(t *testing.T) {
	spy := &spyClient{fn: func(int32) (*deepseek.ChatCompletionResponse, error) {
		return nil, errors.New("boom")
	}}

	svc := newTestService(spy, "key", 0)
	out := svc.Ask(context.Background(), "问题", "语料", "土耳其")
	assert.NotEmpty(t, out)
}
