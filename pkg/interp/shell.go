package interp

import (
	"errors"
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Shell Parameter Expansion
// ═══════════════════════════════════════════════════════════════════════════

// parseParameter 拆分 "NAME:op word" 形式的表达式。
//
// 仅识别冒号形式；名称允许包含 "." 与 "-"（如 project.build-dir），
// 因此不支持无冒号的 "${NAME-word}"。
func parseParameter(expr string) (string, string, string) {
	for i := 1; i+1 < len(expr); i++ {
		if expr[i] != ':' {
			continue
		}
		switch expr[i+1] {
		case '-', '+', '?', '=':
			return expr[:i], expr[i : i+2], expr[i+2:]
		}
	}

	return expr, "", ""
}

func requiredError(name, word string) error {
	if word == "" {
		return fmt.Errorf("%s: parameter null or not set", name)
	}

	return errors.New(name + ": " + word)
}

// evaluate 对单个表达式求值，found=false 表示无值可用。
func (s *Service) evaluate(expr, prefix string, guard RecursionInterceptor) (string, bool, error) {
	name, op, word := parseParameter(expr)
	// 过滤器在第一个 "}" 处截断 token，${A:-${B}} 到达这里时只剩 "A:-${B"，
	// word 不完整时不求值，由调用方保留 token 原文
	if op != "" && unbalanced(word) {
		return "", false, nil
	}

	val, isSet, err := s.lookup(name, prefix, guard)
	if err != nil {
		return "", false, err
	}

	switch op {
	case ":-":
		if !isSet || val == "" {
			return s.expandWord(word, guard)
		}
	case ":+":
		if isSet && val != "" {
			return s.expandWord(word, guard)
		}
		return "", true, nil
	case ":?":
		if !isSet || val == "" {
			return "", false, requiredError(name, word)
		}
	case ":=":
		if !isSet || val == "" {
			expanded, _, err := s.expandWord(word, guard)
			if err != nil {
				return "", false, err
			}
			s.assigned[name] = expanded
			// 赋值之前缓存的结果 (包括未找到) 已失效
			s.ClearAnswers()
			return expanded, true, nil
		}
	default:
		if !isSet {
			return "", false, nil
		}
	}

	return val, true, nil
}

func (s *Service) expandWord(word string, guard RecursionInterceptor) (string, bool, error) {
	expanded, err := s.expandNested(word, guard)
	if err != nil {
		return "", false, err
	}

	return expanded, true, nil
}

// expandNested 展开文本中的 ${...}，无法解析的表达式保持原样。
func (s *Service) expandNested(text string, guard RecursionInterceptor) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	var buf strings.Builder
	buf.Grow(len(text))

	for i := 0; i < len(text); {
		if !strings.HasPrefix(text[i:], "${") {
			buf.WriteByte(text[i])
			i++
			continue
		}

		end := findMatchingBrace(text, i+2)
		if end == -1 {
			buf.WriteString(text[i:])
			break
		}

		expr := text[i+2 : end]
		expanded, found, err := s.interpolate(expr, "", guard)
		if err != nil {
			return "", err
		}
		if found {
			buf.WriteString(expanded)
		} else {
			buf.WriteString(text[i : end+1])
		}

		i = end + 1
	}

	return buf.String(), nil
}

// unbalanced 报告 text 中是否存在没有匹配 "}" 的 ${。
func unbalanced(text string) bool {
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], "${")
		if j < 0 {
			return false
		}
		end := findMatchingBrace(text, i+j+2)
		if end < 0 {
			return true
		}
		i = end + 1
	}

	return false
}

func findMatchingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			depth++
			i++
			continue
		}
		if text[i] == '}' {
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
