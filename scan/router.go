package scan

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnrecognizedKind guards the router against payload kinds the session's
// decode guard should have rejected already.
var ErrUnrecognizedKind = errors.New("scan: unrecognized payload kind")

// AttendanceRecorder is the external collaborator that books attendance
// events. The router guarantees exactly one call per successful scan.
type AttendanceRecorder interface {
	RecordAttendance(ctx context.Context, userID uint, result ScanResult) error
}

// Action tells the UI layer where a dispatched payload leads.
type Action struct {
	Kind   Kind   `json:"kind"`
	Route  string `json:"route"`
	Notice string `json:"notice,omitempty"`
}

// Router maps a decoded payload's kind to its navigation or processing action.
type Router struct {
	attendance AttendanceRecorder
}

func NewRouter(attendance AttendanceRecorder) *Router {
	return &Router{attendance: attendance}
}

// Dispatch resolves the action for a decoded payload. Attendance payloads
// invoke the collaborator; its failure surfaces without crashing the session.
func (r *Router) Dispatch(ctx context.Context, userID uint, result ScanResult) (*Action, error) {
	switch result.Kind {
	case KindLecture:
		return &Action{
			Kind:   result.Kind,
			Route:  "/lecture/" + result.ID,
			Notice: "Lecture found, opening player",
		}, nil

	case KindCourse:
		return &Action{
			Kind:  result.Kind,
			Route: "/course/" + result.ID,
		}, nil

	case KindCertificate:
		return &Action{
			Kind:  result.Kind,
			Route: "/certificate/" + result.ID,
		}, nil

	case KindAttendance:
		if r.attendance == nil {
			return nil, fmt.Errorf("scan: no attendance recorder configured")
		}
		if err := r.attendance.RecordAttendance(ctx, userID, result); err != nil {
			return nil, fmt.Errorf("scan: record attendance: %w", err)
		}
		return &Action{
			Kind:   result.Kind,
			Route:  "/attendance",
			Notice: "Attendance recorded",
		}, nil

	default:
		return nil, ErrUnrecognizedKind
	}
}
