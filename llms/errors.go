package llms

import (
	"context"
	"errors"
	"strings"
)

// ErrorHint groups request failures into the categories an operator can act on.
type ErrorHint string

const (
	HintNone           ErrorHint = ""
	HintTimeout        ErrorHint = "timeout"
	HintRateLimit      ErrorHint = "rate_limit"
	HintAuthentication ErrorHint = "authentication"
)

var hintMarkers = []struct {
	hint    ErrorHint
	markers []string
}{
	{HintTimeout, []string{"timeout", "deadline exceeded"}},
	{HintRateLimit, []string{"rate_limit", "rate limit", "status 429"}},
	{HintAuthentication, []string{"authentication", "unauthorized", "status 401", "invalid api key"}},
}

// ClassifyError matches the error text against known failure markers. The
// result only drives operator messaging.
func ClassifyError(err error) ErrorHint {
	if err == nil {
		return HintNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HintTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, group := range hintMarkers {
		for _, marker := range group.markers {
			if strings.Contains(msg, marker) {
				return group.hint
			}
		}
	}
	return HintNone
}

// Message returns the operator guidance for the hint.
func (h ErrorHint) Message() string {
	switch h {
	case HintTimeout:
		return "网络超时，请检查网络连接或稍后重试"
	case HintRateLimit:
		return "API调用频率限制，请稍后重试"
	case HintAuthentication:
		return "API密钥无效，请检查.env文件中的OPENAI_API_KEY"
	default:
		return ""
	}
}
