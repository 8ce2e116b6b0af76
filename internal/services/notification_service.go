package services

import (
	"log"
	"sync"
	"time"

	"athani_mart/internal/ordersync"
)

type Notification struct {
	Kind    ordersync.NotificationKind `json:"kind"`
	Message string                     `json:"message"`
	At      time.Time                  `json:"at"`
}

// NotificationService is the sink the sync controller reports through. It
// logs every message and keeps a bounded recent list the front-end toast
// layer drains over HTTP.
type NotificationService interface {
	Notify(kind ordersync.NotificationKind, message string)
	Recent() []Notification
}

type notificationService struct {
	mu     sync.Mutex
	recent []Notification
	limit  int
}

func NewNotificationService(limit int) NotificationService {
	if limit <= 0 {
		limit = 50
	}
	return &notificationService{limit: limit}
}

func (s *notificationService) Notify(kind ordersync.NotificationKind, message string) {
	log.Printf("[%s] %s", kind, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, Notification{Kind: kind, Message: message, At: time.Now()})
	if len(s.recent) > s.limit {
		s.recent = s.recent[len(s.recent)-s.limit:]
	}
}

func (s *notificationService) Recent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := make([]Notification, len(s.recent))
	copy(recent, s.recent)
	return recent
}
