package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/campuslabs/equiptrack-backend/pkg/db/models"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/equiptrack-backend/pkg/errors"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	pkgpagination "github.com/campuslabs/equiptrack-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Entry is one auditable action.
type Entry struct {
	UserID      *uuid.UUID
	Action      string
	Module      string
	Description string
	IPAddress   string
	UserAgent   string
}

// Recorder appends audit entries. Implementations must never fail the
// calling request: persistence errors are logged and swallowed.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type logsRepository interface {
	Create(ctx context.Context, row *models.SystemLog) error
	List(ctx context.Context, opts listQuery) ([]models.SystemLog, int64, error)
}

// Service records audit entries and serves the admin log listing.
type Service interface {
	Recorder
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo logsRepository
	logg *logger.Logger
}

// NewService builds the audit service.
func NewService(repo logsRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("log repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := &models.SystemLog{
		UserID:      entry.UserID,
		Action:      entry.Action,
		Module:      entry.Module,
		Description: entry.Description,
	}
	if entry.IPAddress != "" {
		ip := entry.IPAddress
		row.IPAddress = &ip
	}
	if entry.UserAgent != "" {
		ua := entry.UserAgent
		row.UserAgent = &ua
	}

	if err := s.repo.Create(ctx, row); err != nil && s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"audit_action": entry.Action,
			"audit_module": entry.Module,
			"error":        err.Error(),
		})
		s.logg.Warn(ctx, "audit.write_failed")
	}
}

// ListParams filters the admin log listing.
type ListParams struct {
	Action     string
	Module     string
	UserID     string
	Pagination pkgpagination.Params
}

// LogRow is one serialized audit entry.
type LogRow struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	Action      string     `json:"action"`
	Module      string     `json:"module"`
	Description string     `json:"description"`
	IPAddress   string     `json:"ip_address,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	CreatedAt   string     `json:"created_at"`
}

// ListResult is one page of log rows.
type ListResult struct {
	Logs       []LogRow           `json:"logs"`
	Pagination pkgpagination.Meta `json:"pagination"`
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pkgpagination.Normalize(params.Pagination)

	rows, total, err := s.repo.List(ctx, listQuery{
		action: strings.TrimSpace(params.Action),
		module: strings.TrimSpace(params.Module),
		userID: strings.TrimSpace(params.UserID),
		limit:  page.Limit,
		offset: page.Offset(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list system logs")
	}

	out := make([]LogRow, 0, len(rows))
	for _, row := range rows {
		item := LogRow{
			ID:          row.ID,
			UserID:      row.UserID,
			Action:      row.Action,
			Module:      row.Module,
			Description: row.Description,
			CreatedAt:   row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if row.User != nil {
			item.UserName = row.User.Name
		}
		if row.IPAddress != nil {
			item.IPAddress = *row.IPAddress
		}
		if row.UserAgent != nil {
			item.UserAgent = *row.UserAgent
		}
		out = append(out, item)
	}

	return &ListResult{
		Logs:       out,
		Pagination: pkgpagination.MetaFor(page, total),
	}, nil
}

// Actor identifies who performed an action, plus the client metadata that
// accompanies their audit entries.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
	Meta RequestMeta
}

// Entry builds an audit entry attributed to the actor.
func (a Actor) Entry(action, module, description string) Entry {
	id := a.ID
	entry := Entry{
		Action:      action,
		Module:      module,
		Description: description,
		IPAddress:   a.Meta.IPAddress,
		UserAgent:   a.Meta.UserAgent,
	}
	if id != uuid.Nil {
		entry.UserID = &id
	}
	return entry
}

// RequestMeta captures client metadata for audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// MetaFromRequest extracts the client IP (honoring X-Forwarded-For) and agent.
func MetaFromRequest(r *http.Request) RequestMeta {
	meta := RequestMeta{UserAgent: r.UserAgent()}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		meta.IPAddress = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		return meta
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		meta.IPAddress = host
		return meta
	}
	meta.IPAddress = r.RemoteAddr
	return meta
}
