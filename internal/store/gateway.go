package store

import "context"

// Gateway is the typed access layer over the Members and Attendance tables.
type Gateway interface {
	// GetMember returns ErrNotFound when no member has the id.
	GetMember(ctx context.Context, userID string) (*Member, error)
	// PutMember writes the whole record, replacing any existing one.
	PutMember(ctx context.Context, m *Member) error
	// UpdateMember changes only the non-nil fields of upd and always refreshes updatedAt.
	UpdateMember(ctx context.Context, userID string, upd MemberUpdate) (*Member, error)
	PutAttendance(ctx context.Context, rec *AttendanceRecord) error
	// QueryAttendance returns at most limit records for the member, newest first.
	QueryAttendance(ctx context.Context, userID string, limit int) ([]AttendanceRecord, error)
	ScanActiveMembers(ctx context.Context) ([]Member, error)
}

var (
	_ Gateway = (*DynamoGateway)(nil)
	_ Gateway = (*PostgresGateway)(nil)
)
