// Package delim 提供分隔符对 (begin/end token) 的解析与有序注册表。
//
// # 分隔符格式
//
// 字符串形式为 "<begin>*<end>"，以第一个 "*" 分隔：
//
//	"${*}"  → begin="${" end="}"
//	"@"     → begin="@"  end="@"  (不含 "*" 时首尾相同)
//
// begin 或 end 为空时返回 [errdefs.ErrConfiguration]。
//
// # 选择规则
//
// [Registry.Select] 按注册顺序返回第一个首字符匹配的分隔符，不做最长匹配。
package delim
