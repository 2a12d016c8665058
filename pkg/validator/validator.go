// Package validator 扩展gin默认的参数校验器(go-playground/validator)
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterStringRule 注册基于字符串的自定义tag
// 例如注册"isbn"之后,DTO里可以写 `binding:"required,isbn"`
func RegisterStringRule(tag string, rule func(string) bool) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin校验引擎不是go-playground/validator")
	}
	return RegisterOn(v, tag, rule)
}

// RegisterOn 在指定的Validate实例上注册(测试用)
func RegisterOn(v *validator.Validate, tag string, rule func(string) bool) error {
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return rule(fl.Field().String())
	})
}

// Describe 把校验错误转换为可读的提示
// 只暴露字段名和规则,不回显用户输入
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
