package room

// Event 房间操作产生的出站事件。
// 所有状态变更都以事件列表的形式返回给调用方（会话协调器），
// 由协调器负责序列化和广播，保证同一房间的事件按命令接受顺序发出。
type Event struct {
	Type    uint16 // network 消息ID
	To      string // 非空时只发给该会话，否则广播给整个房间
	Payload any
}
