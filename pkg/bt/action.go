package bt

// Action 叶子节点：执行一个 Decision 并原样返回其状态
type Action struct {
	BaseNode
	boundary
	fn Decision
}

// NewAction 创建动作节点
func NewAction(name string, fn Decision) *Action {
	return &Action{
		BaseNode: BaseNode{name: name},
		fn:       fn,
	}
}

func (a *Action) Tick() Status {
	if a.fn == nil {
		return StatusFailure
	}
	return a.runDecision(a.name, a.fn)
}

// Succeed 总是成功的动作
func Succeed(name string) *Action {
	return NewAction(name, func() Status { return StatusSuccess })
}

// Fail 总是失败的动作
func Fail(name string) *Action {
	return NewAction(name, func() Status { return StatusFailure })
}
