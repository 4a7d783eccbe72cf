package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrAccountNotApproved = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotVisible         = errors.New("artifact not visible to user")
	ErrAlreadyCompleted   = errors.New("assessment already completed")
	ErrNotPublished       = errors.New("assessment not published or not accessible")
	ErrReportNotReady     = errors.New("report not generated yet")
)
