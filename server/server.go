package server

import (
	"encoding/json"
	"net/http"
	nrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/mazeserver/broadcast"
	"github.com/wfunc/mazeserver/config"
	"github.com/wfunc/mazeserver/logger"
	"github.com/wfunc/mazeserver/maze"
	"github.com/wfunc/mazeserver/models"
	"github.com/wfunc/mazeserver/monitor"
	"github.com/wfunc/mazeserver/network"
	"github.com/wfunc/mazeserver/persistence"
	"github.com/wfunc/mazeserver/player"
	"github.com/wfunc/mazeserver/room"
	adminrpc "github.com/wfunc/mazeserver/rpc"
	"github.com/wfunc/mazeserver/scheduler"
	"github.com/wfunc/mazeserver/services"
	"github.com/wfunc/mazeserver/session"
)

// GameServer 会话协调器：把连接绑定到玩家条目，把命令分发给
// 对应的房间，再把产生的事件广播给该房间的成员。
// 所有注册表都由 server 实例持有，不使用进程级全局状态。
type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	playerRegistry *player.Registry
	broadcaster    broadcast.Broadcaster
	recordService  *services.RecordService
	mon            *monitor.Monitor
	sched          *scheduler.Scheduler
	rpcServer      *adminrpc.Server
	mux            *http.ServeMux
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store, mon *monitor.Monitor) *GameServer {
	players := player.NewRegistry()

	defaults := room.Settings{
		MaxPlayers: cfg.Game.MaxPlayers,
		MazeWidth:  cfg.Game.MazeWidth,
		MazeHeight: cfg.Game.MazeHeight,
		Levels:     cfg.Game.Levels,
	}
	timeLimit := time.Duration(cfg.Game.TimeLimitMinutes) * time.Minute

	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewManager(players, defaults, timeLimit),
		sessionManager: session.NewManager(),
		playerRegistry: players,
		recordService:  services.NewRecordService(store),
		mon:            mon,
		sched:          scheduler.New(),
		mux:            http.NewServeMux(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/rooms", s.handleRoomList)
	if s.mon != nil {
		s.mux.Handle("/metrics", s.mon.Handler())
	}

	return s
}

// Start 启动RPC管理接口、空闲会话回收和HTTP服务，阻塞直到监听失败
func (s *GameServer) Start() error {
	rpcServer, err := adminrpc.NewServer(s.cfg.Server.RPCAddress)
	if err != nil {
		return err
	}
	s.rpcServer = rpcServer

	admin := adminrpc.NewAdminService(s.roomManager, s.sessionManager, s.recordService)
	if err := nrpc.Register(admin); err != nil {
		return err
	}
	go s.rpcServer.Start()

	if interval := time.Duration(s.cfg.Session.ReapIntervalSeconds) * time.Second; interval > 0 {
		s.sched.Schedule(interval, interval, s.reapIdleSessions)
	}

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, s.mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.sched.Stop()
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.bindSession(sess)

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed, session ID: %s", sess.GetID())
		s.dropSession(sess)
	}()

	// 读超时是空闲回收之外的兜底：半死的TCP链接不会触发回收器
	// （它只看会话活跃时间），但会在这里超时出错并走断开流程。
	readTimeout := 2 * time.Duration(s.cfg.Session.IdleTimeoutSeconds) * time.Second

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			if readTimeout > 0 {
				conn.SetReadTimeout(readTimeout)
			}
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// bindSession 将连接注册为会话并创建对应的玩家条目
func (s *GameServer) bindSession(sess *session.Session) {
	s.sessionManager.Add(sess)
	s.playerRegistry.Add(sess.GetID())
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}
}

// dropSession 断开处理：退出所在房间、删除注册表条目、关闭连接
func (s *GameServer) dropSession(sess *session.Session) {
	s.handleDisconnect(sess)
	s.sessionManager.Remove(sess.GetID())
	s.playerRegistry.Remove(sess.GetID())
	if s.mon != nil {
		s.mon.DecOnlinePlayers()
	}
	_ = sess.Close()
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	if s.mon != nil {
		s.mon.IncMessagesReceived()
		defer func() {
			s.mon.ObserveMessageLatency(time.Since(start))
		}()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeMovePlayer:
		s.handleMovePlayer(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req models.CreateRoomRequest
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
	}

	settings := room.Settings{
		MaxPlayers: req.PlayerCount,
		MazeWidth:  req.MazeWidth,
		MazeHeight: req.MazeHeight,
		Levels:     req.Levels,
	}

	r, events, err := s.roomManager.CreateRoom(sess.GetID(), settings)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.ID)
	r.Guard(func() {
		s.dispatch(r.ID, events)
	})
	s.refreshRoomGauge()
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.Get(req.RoomID)
	if !exists {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}

	r.Guard(func() {
		// 房间可能在查找后、进入临界区前被删除，JoinRoom 内部会再查一次
		_, events, err := s.roomManager.JoinRoom(sess.GetID(), req.RoomID)
		if err != nil {
			s.sendError(sess, err)
			return
		}

		logger.Log.Infof("Session %s joined room %s", sess.GetID(), req.RoomID)
		s.dispatch(r.ID, events)
	})
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req models.StartGameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	// 房间不存在与非建房者同样按无权限处理
	r, exists := s.roomManager.Get(req.RoomID)
	if !exists {
		s.sendError(sess, room.ErrPermissionDenied)
		return
	}

	r.Guard(func() {
		events, err := r.Start(sess.GetID())
		if err != nil {
			s.sendError(sess, err)
			return
		}

		logger.Log.Infof("Game started in room %s", r.ID)
		s.dispatch(r.ID, events)
	})
}

func (s *GameServer) handleMovePlayer(sess *session.Session, packet *network.Packet) {
	var req models.MoveRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	// 无效移动静默吸收: 没有房间、状态不对、撞墙都不回包
	p, exists := s.playerRegistry.Get(sess.GetID())
	if !exists || p.RoomID == "" {
		return
	}
	r, exists := s.roomManager.Get(p.RoomID)
	if !exists {
		return
	}

	r.Guard(func() {
		events := r.Move(sess.GetID(), maze.Direction(req.Direction))
		s.dispatch(r.ID, events)

		for _, ev := range events {
			if won, ok := ev.Payload.(models.GameWonPayload); ok {
				logger.Log.Infof("Room %s won by %s in %dms", r.ID, won.WinnerID, won.TimeElapsed)
				if s.mon != nil {
					s.mon.IncGamesWon()
				}
				width, height, levels := r.MazeSize()
				go s.recordService.SaveResult(r.ID, won, r.Members(), width, height, levels)
			}
		}
	})
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	p, exists := s.playerRegistry.Get(sess.GetID())
	if !exists || p.RoomID == "" {
		return
	}

	roomID := p.RoomID
	r, exists := s.roomManager.Get(roomID)
	if !exists {
		return
	}

	r.Guard(func() {
		events := s.roomManager.RemoveMember(sess.GetID(), roomID)
		s.dispatch(roomID, events)
	})
	s.refreshRoomGauge()
}

// handleDisconnect 复用离房逻辑；空房间在注册表里被立即删除
func (s *GameServer) handleDisconnect(sess *session.Session) {
	s.handleLeaveRoom(sess)
}

// dispatch 把房间操作返回的事件发出去。带收件人的定向发送，
// 其余按房间广播。调用方持有房间出站锁（Room.Guard），
// 因此顺序与命令接受顺序一致。
func (s *GameServer) dispatch(roomID string, events []room.Event) {
	for _, ev := range events {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Log.Errorf("Failed to marshal event %d for room %s: %v", ev.Type, roomID, err)
			continue
		}

		if ev.To != "" {
			if err := s.broadcaster.SendToSession(ev.To, ev.Type, data); err != nil {
				logger.Log.Warnf("Failed to send event %d to session %s: %v", ev.Type, ev.To, err)
			}
			continue
		}

		if err := s.broadcaster.BroadcastToRoom(roomID, ev.Type, data); err != nil {
			logger.Log.Warnf("Failed to broadcast event %d to room %s: %v", ev.Type, roomID, err)
		}
	}
}

// sendError 错误只发给发起命令的连接，绝不广播
func (s *GameServer) sendError(sess *session.Session, err error) {
	data, merr := json.Marshal(models.ErrorPayload{Message: err.Error()})
	if merr != nil {
		return
	}
	if serr := sess.Send(network.MsgTypeError, data); serr != nil {
		logger.Log.Warnf("Failed to send error to session %s: %v", sess.GetID(), serr)
	}
}

func (s *GameServer) refreshRoomGauge() {
	if s.mon != nil {
		s.mon.SetActiveRooms(s.roomManager.Count())
	}
}

// reapIdleSessions 关闭空闲超时的连接，读循环随即走正常断开流程
func (s *GameServer) reapIdleSessions() {
	timeout := time.Duration(s.cfg.Session.IdleTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return
	}

	for _, sess := range s.sessionManager.Idle(timeout) {
		logger.Log.Infof("Closing idle session %s (idle %v)", sess.GetID(), sess.IdleFor())
		_ = sess.Close()
	}
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ActiveRooms:   s.roomManager.Count(),
		ActivePlayers: s.playerRegistry.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.Warnf("Failed to write health response: %v", err)
	}
}

func (s *GameServer) handleRoomList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.roomManager.List()); err != nil {
		logger.Log.Warnf("Failed to write room list: %v", err)
	}
}
