package rpc

import (
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/mazeserver/logger"
	"github.com/wfunc/mazeserver/models"
	"github.com/wfunc/mazeserver/room"
	"github.com/wfunc/mazeserver/services"
	"github.com/wfunc/mazeserver/session"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server listening on addr.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc. All methods follow
// the net/rpc signature: exported method, exported argument types, pointer
// reply, error return.
type AdminService struct {
	rooms    *room.Manager
	sessions *session.Manager
	records  *services.RecordService
}

func NewAdminService(rooms *room.Manager, sessions *session.Manager, records *services.RecordService) *AdminService {
	return &AdminService{
		rooms:    rooms,
		sessions: sessions,
		records:  records,
	}
}

type ListRoomsArgs struct{}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *[]models.RoomListItem) error {
	*reply = a.rooms.List()
	return nil
}

type HealthArgs struct{}

func (a *AdminService) Health(args *HealthArgs, reply *models.HealthResponse) error {
	*reply = models.HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ActiveRooms:   a.rooms.Count(),
		ActivePlayers: a.sessions.Count(),
	}
	return nil
}

type RecentRecordsArgs struct {
	Limit int
}

func (a *AdminService) RecentRecords(args *RecentRecordsArgs, reply *[]models.GameRecord) error {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	records, err := a.records.RecentRecords(limit)
	if err != nil {
		return err
	}
	*reply = records
	return nil
}
