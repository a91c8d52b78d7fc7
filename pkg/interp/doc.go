// Package interp 提供过滤器使用的插值服务与循环引用拦截器。
//
// 服务按顺序查询 [ValueSource]，先命中者生效；命中值中若包含 ${...}，
// 会经由同一服务递归展开，循环引用由 [RecursionInterceptor] 检测。
//
// # 表达式语义
//
//  1. 表达式为纯名称时仅做查找，未找到返回 found=false（调用方保留原文）
//  2. 支持 Shell 参数展开的冒号形式：${NAME:-def} ${NAME:+alt} ${NAME:?msg} ${NAME:=def}
//  3. ":=" 赋值仅作用于当前会话（见 [Service.Clone]）
//  4. 名称带有配置前缀（如 "project."）时，去掉前缀后再次查找
//  5. word 中的 ${...} 会展开；直接调用时支持 ${A:-${B}}，经过过滤器时
//     token 在第一个 "}" 处截断，word 不完整，结果为 found=false，token 原样输出
//
// # 设计参考
//
//   - Bash 参数展开: https://www.gnu.org/software/bash/manual/bash.html#Shell-Parameter-Expansion
//
// # 快速开始
//
//	svc := interp.New(
//	    interp.WithSources(interp.MapSource{"name": "World"}, interp.EnvSource("env.")),
//	    interp.WithPrefixes("project."),
//	)
//	v, found, err := svc.Interpolate("project.name", nil)
package interp
