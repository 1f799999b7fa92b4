package settings

import "strings"

// Session state lives only in memory and is cleared by a process restart,
// never by Reset.

// MarkAsMinimized records that a process has been acted upon this session.
func (s *Store) MarkAsMinimized(processName string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.minimized[strings.ToLower(processName)] = struct{}{}
}

// WasMinimizedThisSession reports whether a process was already acted upon.
func (s *Store) WasMinimizedThisSession(processName string) bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	_, ok := s.minimized[strings.ToLower(processName)]
	return ok
}

// RecordMinimizeTime stores the current time (ms since epoch) as the last
// action time for an item.
func (s *Store) RecordMinimizeTime(itemID string) {
	now := s.clock.Now().UnixMilli()
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.execTimes[itemID] = now
}

// AllMinimizeTimes returns a copy of the action times keyed by item id.
func (s *Store) AllMinimizeTimes() map[string]int64 {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	out := make(map[string]int64, len(s.execTimes))
	for k, v := range s.execTimes {
		out[k] = v
	}
	return out
}
