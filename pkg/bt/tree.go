package bt

import "github.com/cockroachdb/errors"

// Tree 一棵已校验的行为树
// Tick 只做一次根节点求值，调度与节奏由宿主决定
type Tree struct {
	name    string
	root    Node
	onFault FaultHandler
}

// TreeOption 行为树选项
type TreeOption func(*Tree)

// WithName 设置树名称
func WithName(name string) TreeOption {
	return func(t *Tree) {
		t.name = name
	}
}

// WithFaultHandler 设置故障回调，安装到树中所有 Action 与 Decorator
func WithFaultHandler(h FaultHandler) TreeOption {
	return func(t *Tree) {
		t.onFault = h
	}
}

// NewTree 校验并创建行为树
func NewTree(root Node, opts ...TreeOption) (*Tree, error) {
	if err := Validate(root); err != nil {
		return nil, errors.Wrap(err, "invalid behavior tree")
	}

	t := &Tree{
		name: root.Name(),
		root: root,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.onFault != nil {
		AttachFaultHandler(root, t.onFault)
	}
	return t, nil
}

// Tick 对根节点求值一次
func (t *Tree) Tick() Status {
	return t.root.Tick()
}

// Root 根节点
func (t *Tree) Root() Node {
	return t.root
}

// Name 树名称
func (t *Tree) Name() string {
	return t.name
}

// String 诊断输出
func (t *Tree) String() string {
	return Dump(t.root)
}
