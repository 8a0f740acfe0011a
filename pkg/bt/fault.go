package bt

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNodePanic 节点函数 panic
	ErrNodePanic = errors.New("bt: node panicked")

	// ErrInvalidStatus 节点返回了非法状态
	ErrInvalidStatus = errors.New("bt: invalid status")

	// ErrNilRoot 根节点为空
	ErrNilRoot = errors.New("bt: nil root")

	// ErrNilChild 子节点为空
	ErrNilChild = errors.New("bt: nil child")

	// ErrNilFunc 动作或守卫函数为空
	ErrNilFunc = errors.New("bt: nil function")

	// ErrSharedNode 同一节点在树中出现多次（共享子树或环）
	ErrSharedNode = errors.New("bt: node reachable more than once")
)

// FaultHandler 节点故障回调
// node 为出错节点的名称，err 带有堆栈，可用 errors.Is 判断类别
type FaultHandler func(node string, err error)

// faultSink 可以安装故障回调的节点
type faultSink interface {
	setFaultHandler(h FaultHandler)
}

// boundary 故障边界，嵌入到 Action 与 Decorator 中
type boundary struct {
	onFault FaultHandler
}

func (b *boundary) setFaultHandler(h FaultHandler) {
	b.onFault = h
}

func (b *boundary) report(node string, err error) {
	if b.onFault != nil {
		b.onFault(node, err)
	}
}

// runDecision 在故障边界内执行 Decision
// panic 或非法返回值都会被上报并视为 Failure
func (b *boundary) runDecision(node string, fn Decision) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			b.report(node, panicError(node, r))
			status = StatusFailure
		}
	}()

	status = fn()
	if !status.Valid() {
		b.report(node, errors.Wrapf(ErrInvalidStatus, "node %q returned %d", node, int(status)))
		return StatusFailure
	}
	return status
}

// runCondition 在故障边界内执行 Condition，panic 视为 false
func (b *boundary) runCondition(node string, fn Condition) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.report(node, panicError(node, r))
			ok = false
		}
	}()
	return fn()
}

func panicError(node string, r any) error {
	var err error
	if e, ok := r.(error); ok {
		err = errors.Wrapf(e, "node %q panicked", node)
	} else {
		err = errors.Newf("node %q panicked: %s", node, fmt.Sprint(r))
	}
	return errors.Mark(err, ErrNodePanic)
}

// AttachFaultHandler 为树中所有 Action 与 Decorator 安装故障回调，h 为 nil 时清除
func AttachFaultHandler(root Node, h FaultHandler) {
	Walk(root, func(n Node, _ int) bool {
		if s, ok := n.(faultSink); ok {
			s.setFaultHandler(h)
		}
		return true
	})
}
