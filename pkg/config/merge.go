package config

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// MergeConfig 把 src 中的非零值覆盖到 dst 上并返回 dst
// 结构体与指针逐字段递归，map 按键合并，切片整体替换
// 任一方为 nil 时直接返回另一方，两者都为 nil 返回 ErrNilConfig
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, errors.Wrap(ErrNilConfig, "nothing to merge")
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := merge(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem(), ""); err != nil {
		return nil, errors.Mark(err, ErrMergeFailed)
	}
	return dst, nil
}

func merge(dst, src reflect.Value, path string) error {
	if empty(src) {
		return nil
	}
	if dst.Kind() != src.Kind() {
		return errors.Newf("%s: cannot merge %s into %s", path, src.Kind(), dst.Kind())
	}

	switch src.Kind() {
	case reflect.Struct:
		t := src.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := merge(dst.Field(i), src.Field(i), join(path, f.Name)); err != nil {
				return err
			}
		}
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return merge(dst.Elem(), src.Elem(), path)
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
		}
		it := src.MapRange()
		for it.Next() {
			next := reflect.New(dst.Type().Elem()).Elem()
			if cur := dst.MapIndex(it.Key()); cur.IsValid() {
				next.Set(cur)
			}
			if err := merge(next, it.Value(), join(path, it.Key().String())); err != nil {
				return err
			}
			dst.SetMapIndex(it.Key(), next)
		}
	default:
		if dst.CanSet() {
			dst.Set(src)
		}
	}
	return nil
}

// empty 判断 src 是否应被跳过，空切片与空 map 视为未设置
func empty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
