package server

import (
	"encoding/json"
	"time"

	"github.com/olahol/melody"

	"github.com/theirongolddev/archifinance/internal/logging"
)

func newHub() *melody.Melody {
	m := melody.New()
	m.Config.MaxMessageSize = 512
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second
	return m
}

// wireHub sends each new socket the current snapshot and logs socket
// lifecycle. Clients only listen; inbound messages are ignored.
func (s *Service) wireHub() {
	s.hub.HandleConnect(func(sess *melody.Session) {
		s.log.Debug("socket connected", logging.FieldClientIP, sess.Request.RemoteAddr)
		ev := Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: s.snapshotStatus().Summary}
		if data, err := json.Marshal(ev); err == nil {
			_ = sess.Write(data)
		}
	})
	s.hub.HandleDisconnect(func(sess *melody.Session) {
		s.log.Debug("socket disconnected", logging.FieldClientIP, sess.Request.RemoteAddr)
	})
	s.hub.HandleError(func(sess *melody.Session, err error) {
		s.log.Warn("socket error", logging.FieldClientIP, sess.Request.RemoteAddr, logging.FieldError, err)
	})
}

func (s *Service) broadcast(ev Event) {
	if s.hub.Len() == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.hub.Broadcast(data); err != nil {
		s.log.Debug("broadcast skipped", logging.FieldError, err)
	}
}
