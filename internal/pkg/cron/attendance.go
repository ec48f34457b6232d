package cron

import (
	"context"
	"log/slog"

	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
)

// AttendanceJobs hosts scheduled attendance maintenance work.
type AttendanceJobs struct {
	attendanceService attendance.Service
}

func NewAttendanceJobs(attendanceService attendance.Service) *AttendanceJobs {
	return &AttendanceJobs{attendanceService: attendanceService}
}

// SweepMissedCheckouts closes open sessions left over from previous days.
// The same auto-close rule runs inline on the next check-in; the sweep
// keeps reports clean for users who simply never come back.
func (j *AttendanceJobs) SweepMissedCheckouts(ctx context.Context) error {
	closed, err := j.attendanceService.SweepMissedCheckouts(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("missed-checkout sweep closed stale sessions", "count", closed)
	}
	return nil
}
