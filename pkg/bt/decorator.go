package bt

// Decorator 条件装饰器
// 守卫为 false 时直接返回 Failure 且不执行子节点，否则原样返回子节点结果
type Decorator struct {
	BaseNode
	boundary
	guard Condition
	child Node
}

// NewDecorator 创建条件装饰器
func NewDecorator(name string, guard Condition, child Node) *Decorator {
	return &Decorator{
		BaseNode: BaseNode{name: name},
		guard:    guard,
		child:    child,
	}
}

func (d *Decorator) Tick() Status {
	if d.guard == nil || d.child == nil {
		return StatusFailure
	}
	if !d.runCondition(d.name, d.guard) {
		return StatusFailure
	}
	return d.child.Tick()
}

// Children 子节点
func (d *Decorator) Children() []Node {
	return []Node{d.child}
}

// Inverter 反转装饰器：Success 与 Failure 互换，Running 保持不变
type Inverter struct {
	BaseNode
	child Node
}

// NewInverter 创建反转装饰器
func NewInverter(name string, child Node) *Inverter {
	return &Inverter{
		BaseNode: BaseNode{name: name},
		child:    child,
	}
}

func (i *Inverter) Tick() Status {
	if i.child == nil {
		return StatusFailure
	}
	switch i.child.Tick() {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	case StatusRunning:
		return StatusRunning
	default:
		return StatusFailure
	}
}

// Children 子节点
func (i *Inverter) Children() []Node {
	return []Node{i.child}
}
