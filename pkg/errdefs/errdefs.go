// Package errdefs 定义过滤链路共用的错误分类。
//
// 调用方使用 [errors.Is] 判断错误类别，具体信息由包装层补充。
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration 配置类错误：非法分隔符、非法参数、插值失败等，均在引入处同步返回。
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidArgument 非法参数（如负数 skip），同时属于配置类错误。
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrConfiguration)

	// ErrInterpolation 插值服务无法解析表达式。
	ErrInterpolation = errors.New("interpolation error")

	// ErrRecursion 表达式解析出现循环引用，同时属于插值错误。
	ErrRecursion = fmt.Errorf("%w: recursive expression", ErrInterpolation)
)
