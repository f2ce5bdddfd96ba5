package purchase

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/grid"
)

// auditTimeLayout matches the RFC 7231 date used by HTTP headers.
const auditTimeLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	User      string
	Book      string
	Success   bool
	IP        string
	UserAgent string
	Message   string
}

func (e AuditEntry) row(at string) []string {
	outcome := "失敗"
	if e.Success {
		outcome = "成功"
	}
	return []string{at, e.User, e.Book, outcome, e.IP, e.UserAgent, e.Message}
}

// AppendAuditLog appends e with the current UTC time to the logs spreadsheet.
// Without an audit client it only logs.
func (r *Repository) AppendAuditLog(ctx context.Context, e AuditEntry) error {
	if r.audit == nil {
		r.log.Debug("audit log disabled", sheetcache.Fields{"user": e.User, "message": e.Message})
		return nil
	}
	at := r.now().UTC().Format(auditTimeLayout)
	if err := r.audit.AppendRows(ctx, r.place.auditRange(), grid.Grid{e.row(at)}); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// LogRegistration records the outcome of a student-facing mutation.
func (r *Repository) LogRegistration(ctx context.Context, res Result, ip, userAgent string) error {
	e := AuditEntry{Success: res.Success, IP: ip, UserAgent: userAgent, Message: res.Message}
	if res.Student != nil {
		e.User = res.Student.Number + ":" + res.Student.Name
	}
	if res.Book != nil {
		e.Book = res.Book.ISBN + ":" + res.Book.Name
	}
	return r.AppendAuditLog(ctx, e)
}

// AdminAudit describes an administrator's status change.
type AdminAudit struct {
	AdminEmail string
	Input      StatusFieldInput
	Success    bool
	IP         string
	UserAgent  string
	Message    string
}

func (r *Repository) LogAdminAudit(ctx context.Context, a AdminAudit) error {
	return r.AppendAuditLog(ctx, AuditEntry{
		User:      "admin:" + a.AdminEmail,
		Book:      fmt.Sprintf("%s / %s / %s -> %t", a.Input.StudentNumber, a.Input.BookISBN, a.Input.Field, a.Input.Checked),
		Success:   a.Success,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Message:   a.Message,
	})
}
