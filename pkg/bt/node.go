package bt

// Status 节点执行状态
type Status int

const (
	// StatusInvalid 零值，不是合法的叶子返回值
	StatusInvalid Status = iota
	StatusSuccess
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// Valid 是否为三种合法状态之一
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusRunning
}

// Node 行为树节点
// 节点本身不保存跨帧状态，同样的外部状态下连续两次 Tick 结果一致
type Node interface {
	Tick() Status
	Name() string
}

// Parent 拥有子节点的节点
type Parent interface {
	Node
	Children() []Node
}

// Decision 动作节点的执行函数
type Decision func() Status

// Condition 装饰器的守卫条件
type Condition func() bool

// BaseNode 基础节点，只负责名称
type BaseNode struct {
	name string
}

// Name 节点名称，仅用于诊断
func (n *BaseNode) Name() string {
	return n.name
}
