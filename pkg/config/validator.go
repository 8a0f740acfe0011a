package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 基于 validate 标签的配置校验
// 错误信息中的字段名优先使用 mapstructure 标签，与配置文件中的键一致
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldKey)
	return &Validator{validate: v}
}

func fieldKey(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// Validate 校验结构体，失败时返回 ErrValidationFailed
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	return v.wrap(v.validate.Struct(cfg))
}

// ValidateField 按标签校验单个值
func (v *Validator) ValidateField(field any, tag string) error {
	return v.wrap(v.validate.Var(field, tag))
}

// ValidateWithCustom 注册自定义标签后再校验
func (v *Validator) ValidateWithCustom(cfg any, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			return errors.Wrapf(err, "failed to register validation %q", tag)
		}
	}
	return v.Validate(cfg)
}

func (v *Validator) wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(ErrValidationFailed, describe(err))
}

var tagMessages = map[string]string{
	"required":    "is required",
	"required_if": "is required",
	"min":         "must be at least %s",
	"max":         "must be at most %s",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"lt":          "must be less than %s",
	"lte":         "must be less than or equal to %s",
	"oneof":       "must be one of [%s]",
	"startswith":  "must start with %q",
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			parts = append(parts, fmt.Sprintf("field '%s' failed validation '%s'", fe.Field(), fe.Tag()))
			continue
		}
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(msg, fe.Param())
		}
		parts = append(parts, fmt.Sprintf("field '%s' %s", fe.Field(), msg))
	}
	return strings.Join(parts, "; ")
}
