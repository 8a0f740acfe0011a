package bt

// Sequence 顺序节点：按声明顺序执行子节点
// 遇到第一个非 Success 的结果立即返回它，全部成功则成功，没有子节点时成功
type Sequence struct {
	BaseNode
	children []Node
}

// NewSequence 创建顺序节点
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{
		BaseNode: BaseNode{name: name},
		children: children,
	}
}

func (s *Sequence) Tick() Status {
	for _, child := range s.children {
		switch child.Tick() {
		case StatusSuccess:
			continue
		case StatusRunning:
			return StatusRunning
		default:
			return StatusFailure
		}
	}
	return StatusSuccess
}

// Children 子节点
func (s *Sequence) Children() []Node {
	return s.children
}

// Selector 选择节点：按声明顺序执行子节点
// 遇到第一个非 Failure 的结果立即返回它，全部失败则失败，没有子节点时失败
type Selector struct {
	BaseNode
	children []Node
}

// NewSelector 创建选择节点
func NewSelector(name string, children ...Node) *Selector {
	return &Selector{
		BaseNode: BaseNode{name: name},
		children: children,
	}
}

func (s *Selector) Tick() Status {
	for _, child := range s.children {
		switch child.Tick() {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		default:
			continue
		}
	}
	return StatusFailure
}

// Children 子节点
func (s *Selector) Children() []Node {
	return s.children
}
