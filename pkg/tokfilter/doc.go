// Package tokfilter 提供基于分隔符的流式变量替换过滤器。
//
// [Filter] 包装一个 [io.RuneReader]，逐字符识别已注册的分隔符对（如 ${ } 与 @ @）
// 以及可选的转义前缀，通过 [interp.Interpolator] 解析 token 并输出替换值。
//
// # 语义说明
//
//  1. 只有注册分隔符的首字符会触发扫描，其余字符原样输出
//  2. 解析到空字符串时 token 消失，扫描无缝继续
//  3. 无值可用时 token 原样输出，结束符会重新参与扫描（相邻 token 可共享字符）
//  4. 转义 token（如 \${x}）不会交给插值服务
//  5. 未启用多行时，换行符总会中断正在匹配的 token
//
// # 快速开始
//
//	cfg, err := tokfilter.NewConfig(true, tokfilter.WithDelimiters("${*}", "@"))
//	f := tokfilter.NewReader(file, svc, cfg)
//	out, err := io.ReadAll(f)
//
// 过滤器不关闭底层数据源，也不可并发读取。
package tokfilter
