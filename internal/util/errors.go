package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	// 会话状态冲突：调用方需要重新同步当前步骤后重试，而非当作致命错误
	ErrSessionAlreadyActive = errors.New("SESSION_ALREADY_ACTIVE")
	ErrSessionNotFound      = errors.New("session not found")
	ErrStepMismatch         = errors.New("STEP_MISMATCH")
	ErrSessionClosed        = errors.New("SESSION_CLOSED")
	ErrCannotGoBack         = errors.New("CANNOT_GO_BACK")

	// 外部评分协作方不可用或返回结果不可解析：判 0 分并显式上报，绝不默默给分
	ErrGradingUnavailable = errors.New("GRADING_UNAVAILABLE")

	// 静态目录先修关系成环：目录制作错误，属于部署问题而非请求问题
	ErrCycleDetected = errors.New("CYCLE_DETECTED")

	ErrRoadmapNotFound = errors.New("roadmap not found")
	ErrUnknownStepKind = errors.New("unknown step kind")
)
