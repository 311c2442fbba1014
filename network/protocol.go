package network

// 消息ID定义: 1xx 客户端命令, 2xx 服务器事件
const (
	MsgTypeHeartbeat = 1
	MsgTypeError     = 2

	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeLeaveRoom  = 103
	MsgTypeStartGame  = 104
	MsgTypeMovePlayer = 105

	MsgTypeRoomCreated  = 201
	MsgTypeRoomJoined   = 202
	MsgTypePlayerJoined = 203
	MsgTypeGameStarted  = 204
	MsgTypePlayerMoved  = 205
	MsgTypeKeyCollected = 206
	MsgTypeGameWon      = 207
	MsgTypePlayerLeft   = 208
)
