package book

import "strings"

// NormalizeISBN 去掉连字符和空格,末位x统一为大写X
// 978-0-13-235088-4 → 9780132350884
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	b.Grow(len(isbn))
	for _, r := range isbn {
		switch {
		case r == '-' || r == ' ':
			continue
		case r == 'x':
			b.WriteRune('X')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidISBN 校验规范化后的ISBN格式
// 规则:
// - ISBN-13: 13位数字
// - ISBN-10: 前9位数字,末位数字或X
//
// 只校验格式,不校验校验位(历史数据里有校验位错误的书号)
func IsValidISBN(isbn string) bool {
	switch len(isbn) {
	case 13:
		return allDigits(isbn)
	case 10:
		last := isbn[9]
		return allDigits(isbn[:9]) && (isDigit(last) || last == 'X')
	default:
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
