package book

import (
	"strings"
	"time"
)

// Book 图书实体
// DDD设计说明:
// 1. ISBN就是图书的身份标识,其它表都用ISBN引用图书
// 2. 价格不在图书上,由price聚合按有效期管理
// 3. 库存不在图书上,由inventory聚合管理
type Book struct {
	ISBN            string // 10位或13位,已规范化(去掉连字符和空格)
	Title           string
	PublicationYear int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn会被规范化并校验格式
func NewBook(isbn, title string, publicationYear int, now time.Time) (*Book, error) {
	normalized := NormalizeISBN(isbn)
	if !IsValidISBN(normalized) {
		return nil, ErrInvalidISBN
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	if publicationYear < 0 || publicationYear > now.Year()+1 {
		return nil, ErrInvalidPublicationYear
	}

	return &Book{
		ISBN:            normalized,
		Title:           title,
		PublicationYear: publicationYear,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
