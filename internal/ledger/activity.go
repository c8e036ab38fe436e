package ledger

import "smartpark/ledger-service/internal/models"

// appendLog records an activity event and drops that branch's oldest
// entries beyond the read limit. Callers hold l.mu.
func (l *Ledger) appendLog(branchID, kind, message, plate string) {
	l.logs = append(l.logs, models.ActivityLog{
		LogID:        l.newID(),
		BranchID:     branchID,
		Kind:         kind,
		Message:      message,
		Timestamp:    l.now(),
		VehiclePlate: plate,
	})

	count := 0
	for _, entry := range l.logs {
		if entry.BranchID == branchID {
			count++
		}
	}
	excess := count - l.logLimit
	if excess <= 0 {
		return
	}
	kept := l.logs[:0:0]
	for _, entry := range l.logs {
		if excess > 0 && entry.BranchID == branchID {
			excess--
			continue
		}
		kept = append(kept, entry)
	}
	l.logs = kept
}

// ActivityLogs returns the most recent entries in scope, newest first.
func (l *Ledger) ActivityLogs(scope Scope) []models.ActivityLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ActivityLog, 0, l.logLimit)
	for i := len(l.logs) - 1; i >= 0 && len(out) < l.logLimit; i-- {
		if scope.includes(l.logs[i].BranchID) {
			out = append(out, l.logs[i])
		}
	}
	return out
}
