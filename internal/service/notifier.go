package service

import (
	"github.com/pawmatch/pawmatch-backend/internal/ws"
)

// Notifier pushes a real-time event to every connection of a member.
// *ws.Hub implements it.
type Notifier interface {
	SendToMember(memberID string, event *ws.Event)
}

type noopNotifier struct{}

func (noopNotifier) SendToMember(string, *ws.Event) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
