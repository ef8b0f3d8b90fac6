package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// FailureKind 是 Uploader 失败分类的字符串标签，调用方据此决定状态迁移。
type FailureKind string

const (
	// FailureQuotaExceeded 表示托管方每日配额耗尽，应延后到下一次调度重试。
	FailureQuotaExceeded FailureKind = "QUOTA_EXCEEDED"
	// FailureAuthentication 表示凭据失效，需要运维介入。
	FailureAuthentication FailureKind = "AUTHENTICATION_ERROR"
	// FailureRateLimit 表示短时间请求过多。当前调用方不对其做特殊重试，
	// 与通用失败一样落到 failed。
	FailureRateLimit FailureKind = "RATE_LIMIT"
	// FailureGeneric 表示未归类的失败，保留底层错误信息用于诊断。
	FailureGeneric FailureKind = "UPLOAD_ERROR"
)

// UploadFailure 携带分类标签的上传失败。Uploader 的所有错误都以此类型返回，
// 不让底层异常逃逸到调用方。
type UploadFailure struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *UploadFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 暴露底层错误，支持 errors.Is/As。
func (e *UploadFailure) Unwrap() error {
	return e.cause
}

// IsQuotaExceeded 判断错误是否为配额耗尽分类。
func IsQuotaExceeded(err error) bool {
	var failure *UploadFailure
	return errors.As(err, &failure) && failure.Kind == FailureQuotaExceeded
}

// FailureKindOf 提取错误的分类标签，非 UploadFailure 时归为通用失败。
func FailureKindOf(err error) FailureKind {
	var failure *UploadFailure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return FailureGeneric
}

func genericFailure(format string, args ...any) *UploadFailure {
	var cause error
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			cause = err
		}
	}
	return &UploadFailure{
		Kind:    FailureGeneric,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// classifyProviderError 依据托管方的结构化错误码分类：
// 403 且消息/原因提到 quota → 配额耗尽；401 → 凭据问题；429 → 限流；
// 其余包装为通用失败。非 googleapi 错误（网络中断等）一律通用失败，
// 绝不误判为配额耗尽。
func classifyProviderError(err error) *UploadFailure {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &UploadFailure{
			Kind:    FailureGeneric,
			Message: fmt.Sprintf("submit video: %v", err),
			cause:   err,
		}
	}

	switch apiErr.Code {
	case http.StatusForbidden:
		if mentionsQuota(apiErr) {
			return &UploadFailure{
				Kind:    FailureQuotaExceeded,
				Message: "daily upload quota exceeded",
				cause:   err,
			}
		}
		return &UploadFailure{
			Kind:    FailureAuthentication,
			Message: fmt.Sprintf("provider denied request: %s", apiErr.Message),
			cause:   err,
		}
	case http.StatusUnauthorized:
		return &UploadFailure{
			Kind:    FailureAuthentication,
			Message: "provider credentials invalid or expired",
			cause:   err,
		}
	case http.StatusTooManyRequests:
		return &UploadFailure{
			Kind:    FailureRateLimit,
			Message: "provider rate limit hit",
			cause:   err,
		}
	default:
		return &UploadFailure{
			Kind:    FailureGeneric,
			Message: fmt.Sprintf("provider error %d: %s", apiErr.Code, apiErr.Message),
			cause:   err,
		}
	}
}

func mentionsQuota(apiErr *googleapi.Error) bool {
	if strings.Contains(strings.ToLower(apiErr.Message), "quota") {
		return true
	}
	for _, item := range apiErr.Errors {
		if strings.Contains(strings.ToLower(item.Reason), "quota") {
			return true
		}
	}
	return false
}
