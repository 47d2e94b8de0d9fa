package game

import "time"

// DefaultNotificationTTL is how long a notification lives before it expires.
const DefaultNotificationTTL = 3 * time.Second

// Notify appends a notification stamped with now. IDs are creation times in
// milliseconds, bumped forward when two land in the same millisecond.
func Notify(s State, text string, now time.Time) (State, Notification) {
	next := s.Clone()
	n := next.notify(text, now)
	return next, n
}

func (s *State) notify(text string, now time.Time) Notification {
	id := now.UnixMilli()
	if k := len(s.Notifications); k > 0 && s.Notifications[k-1].ID >= id {
		id = s.Notifications[k-1].ID + 1
	}
	n := Notification{ID: id, Text: text, CreatedAt: now}
	s.Notifications = append(s.Notifications, n)
	return n
}

// Dismiss removes the notification with the given id. Unknown ids are ignored.
func Dismiss(s State, id int64) (State, bool) {
	for i, n := range s.Notifications {
		if n.ID == id {
			next := s.Clone()
			next.Notifications = append(next.Notifications[:i], next.Notifications[i+1:]...)
			return next, true
		}
	}
	return s, false
}

// ExpireNotifications drops every notification created more than ttl before now.
func ExpireNotifications(s State, now time.Time, ttl time.Duration) (State, int) {
	cutoff := now.Add(-ttl)
	kept := make([]Notification, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	removed := len(s.Notifications) - len(kept)
	if removed == 0 {
		return s, 0
	}
	next := s.Clone()
	next.Notifications = kept
	return next, removed
}
