package answer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/relevance"
	"github.com/sells-group/lex-research/internal/resilience"
	"github.com/sells-group/lex-research/pkg/deepseek"
)

// Failure strings embedded in a report when a single answer cannot be
// produced. Failures are data, not errors: one bad answer must never
// abort the rest of the report.
const (
	msgNoCredential = "错误：未配置 RESEARCH_DEEPSEEK_KEY 环境变量，无法调用AI服务。请联系管理员配置API密钥。"
)

const systemPromptTemplate = `你是一个专业的法律法规检索助手。请严格根据以下%s的法律法规知识库内容回答问题，不要添加知识库中没有的信息。

%s法律法规知识库内容：
%s

请严格围绕当前用户问题作答，忽略知识库中与问题无关的内容，仅使用直接相关的知识。回答后使用'法律依据：'标签单独列出法条原文，需从知识库中提取。应注明具体法律法规及条款，条款过长可使用省略号结尾，禁止翻译。
作答时请勿使用Markdown语法（如 **、#、[]() 等符号）。
`

// Config assembles an answer Service.
type Config struct {
	// APIKey is the DeepSeek credential. When empty the service fast-fails
	// every Ask with a configuration-error string and never touches the
	// network.
	APIKey string

	// Client performs the chat completion. Required when APIKey is set.
	Client deepseek.Client

	// Extractor narrows the corpus before grounding. Required.
	Extractor *relevance.Extractor

	// GroundingChars bounds the extracted context embedded in the system
	// prompt. Tighter than the loader's corpus since it rides inside the
	// model's input budget.
	GroundingChars int

	Temperature float64
	MaxTokens   int

	// MaxRetries is the number of additional attempts after the first
	// failed call.
	MaxRetries int

	// BackoffStep overrides the linear backoff step (tests only).
	BackoffStep time.Duration
}

// Service answers one grounded question per call against the external
// model. It keeps no state between calls.
type Service struct {
	cfg Config
}

// NewService creates an answer Service.
func NewService(cfg Config) *Service {
	if cfg.GroundingChars <= 0 {
		cfg.GroundingChars = 6000
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Service{cfg: cfg}
}

// Configured reports whether an API credential is present.
func (s *Service) Configured() bool {
	return s.cfg.APIKey != ""
}

// Ask sends one grounded question to the model and returns the answer
// text. All failure modes are rendered as human-readable strings so the
// caller can embed them in the report; Ask never returns an error.
func (s *Service) Ask(ctx context.Context, prompt, corpus, jurisdiction string) string {
	if !s.Configured() {
		return msgNoCredential
	}

	grounding := s.cfg.Extractor.Extract(corpus, prompt, s.cfg.GroundingChars)
	system := fmt.Sprintf(systemPromptTemplate, jurisdiction, jurisdiction, grounding)

	temp := s.cfg.Temperature
	maxTokens := s.cfg.MaxTokens
	req := deepseek.ChatCompletionRequest{
		Messages: []deepseek.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	retryCfg := resilience.RetryConfig{
		MaxRetries:  s.cfg.MaxRetries,
		BackoffStep: s.cfg.BackoffStep,
		ShouldRetry: shouldRetry,
		OnRetry:     resilience.RetryLogger("deepseek", "chat_completion"),
	}

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*deepseek.ChatCompletionResponse, error) {
		return s.cfg.Client.ChatCompletion(ctx, req)
	})
	if err != nil {
		zap.L().Warn("model call failed after retries",
			zap.String("jurisdiction", jurisdiction),
			zap.Error(err),
		)
		return failureMessage(err)
	}

	return resp.Choices[0].Message.Content
}

// shouldRetry classifies upstream failures: network timeouts, transient
// HTTP statuses, malformed response shapes and oversized responses are all
// retried; anything else (auth failures, bad requests) fails immediately.
func shouldRetry(err error) bool {
	var se *deepseek.StatusError
	if errors.As(err, &se) {
		return resilience.IsTransientHTTPStatus(se.StatusCode)
	}
	if errors.Is(err, deepseek.ErrMalformedResponse) || errors.Is(err, deepseek.ErrResponseTooLarge) {
		return true
	}
	return resilience.IsTransient(err)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, deepseek.ErrResponseTooLarge):
		return fmt.Sprintf("API响应超出大小限制: %v", err)
	case isTimeout(err):
		return fmt.Sprintf("API调用超时: %v", err)
	default:
		return fmt.Sprintf("API调用失败: %v", err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
