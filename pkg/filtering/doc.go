// Package filtering 提供带变量替换的文件复制。
//
// 一次复制由 [Request] 描述：源文件按 Encoding 解码，依次经过 Wrappers
// （通常是 [InterpolationWrapper]）过滤，再按同一编码写入目标文件。
// 未开启过滤时按字节原样复制。
//
// # 默认过滤链
//
// [DefaultWrappers] 按以下优先级 (从高到低) 组装值源：
//  1. 显式属性 - WrapperRequest.Properties
//  2. 过滤文件 - WrapperRequest.Filters，后出现的文件覆盖先出现的
//  3. 环境变量 - 以 "env." 为前缀，需开启 WrapperRequest.Env
//
// 并同时识别 ${ } 与 @ @ 两种分隔符（见 [DefaultDelimiters]）。
//
// # 过滤文件格式
//
// 按扩展名识别：.properties / .yaml / .yml / .toml / .json，
// 其他扩展名按 properties 解析。嵌套结构展开为以 "." 连接的 key。
package filtering
