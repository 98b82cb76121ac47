package errors

import (
	"errors"
	"fmt"

	"builderboard/pkg/errors/ecode"
)

// 带业务错误码的 error，handler 层通过 DecodeErr 还原 code + message

type codedError struct {
	code    int
	message string
	cause   error
}

func (e *codedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *codedError) Unwrap() error {
	return e.cause
}

// WithCode 创建一个带错误码的error
func WithCode(code int, format string, args ...interface{}) error {
	if len(args) > 0 {
		return &codedError{code: code, message: fmt.Sprintf(format, args...)}
	}
	return &codedError{code: code, message: format}
}

// Is / As 直接转发标准库，调用方不必同时 import 两个 errors 包
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap 包装err并附加错误码和提示信息
func Wrap(err error, code int, message string) error {
	return &codedError{code: code, message: message, cause: err}
}

func Wrapf(err error, code int, format string, args ...interface{}) error {
	return &codedError{code: code, message: fmt.Sprintf(format, args...), cause: err}
}

// DecodeErr 解析出错误码和提示信息，nil 表示成功
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, "OK"
	}
	var ce *codedError
	if errors.As(err, &ce) {
		if ce.code == ecode.Success {
			return ecode.Success, ce.message
		}
		return ce.code, ce.message
	}
	return ecode.Unknown, err.Error()
}

// Code 返回err携带的错误码，非 codedError 一律按 Unknown 处理
func Code(err error) int {
	code, _ := DecodeErr(err)
	return code
}

// IsCode 判断err是否携带指定错误码
func IsCode(err error, code int) bool {
	return Code(err) == code
}
