package bt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// WalkFunc 遍历回调，返回 false 时不再深入该节点的子节点
type WalkFunc func(n Node, depth int) bool

// Walk 按声明顺序深度优先遍历
// 已访问过的父节点不会重复展开，因此在有环的树上也会终止
func Walk(root Node, fn WalkFunc) {
	if isNilNode(root) {
		return
	}
	seen := make(map[any]struct{})
	walk(root, 0, fn, seen)
}

func walk(n Node, depth int, fn WalkFunc, seen map[any]struct{}) {
	if isNilNode(n) {
		return
	}
	if !fn(n, depth) {
		return
	}
	p, ok := n.(Parent)
	if !ok {
		return
	}
	if isComparable(n) {
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
	}
	for _, child := range p.Children() {
		walk(child, depth+1, fn, seen)
	}
}

// Validate 检查树的结构，返回第一个发现的配置错误
// 空的 Selector 与 Sequence 是合法的
func Validate(root Node) error {
	if isNilNode(root) {
		return ErrNilRoot
	}

	var (
		err  error
		seen = make(map[any]string)
		path []string
	)
	var visit func(n Node, parent string)
	visit = func(n Node, parent string) {
		if err != nil {
			return
		}
		if isNilNode(n) {
			err = errors.Wrapf(ErrNilChild, "child of %q", parent)
			return
		}
		if isComparable(n) {
			if prev, dup := seen[n]; dup {
				err = errors.Wrapf(ErrSharedNode, "node %q under %q was already placed under %q", n.Name(), parent, prev)
				return
			}
			seen[n] = parent
		}

		switch v := n.(type) {
		case *Action:
			if v.fn == nil {
				err = errors.Wrapf(ErrNilFunc, "action %q", v.name)
				return
			}
		case *Decorator:
			if v.guard == nil {
				err = errors.Wrapf(ErrNilFunc, "decorator %q has no guard", v.name)
				return
			}
			if isNilNode(v.child) {
				err = errors.Wrapf(ErrNilChild, "decorator %q has no child", v.name)
				return
			}
		case *Inverter:
			if isNilNode(v.child) {
				err = errors.Wrapf(ErrNilChild, "inverter %q has no child", v.name)
				return
			}
		}

		p, ok := n.(Parent)
		if !ok {
			return
		}
		path = append(path, n.Name())
		for _, child := range p.Children() {
			visit(child, strings.Join(path, "/"))
		}
		path = path[:len(path)-1]
	}
	visit(root, "")
	return err
}

// Dump 以缩进文本输出整棵树，用于诊断
func Dump(root Node) string {
	var b strings.Builder
	Walk(root, func(n Node, depth int) bool {
		fmt.Fprintf(&b, "%s%s %q\n", strings.Repeat("  ", depth), kindOf(n), n.Name())
		return true
	})
	return b.String()
}

func kindOf(n Node) string {
	switch n.(type) {
	case *Action:
		return "Action"
	case *Sequence:
		return "Sequence"
	case *Selector:
		return "Selector"
	case *Decorator:
		return "Decorator"
	case *Inverter:
		return "Inverter"
	default:
		return reflect.TypeOf(n).String()
	}
}

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func isComparable(n Node) bool {
	return reflect.TypeOf(n).Comparable()
}
