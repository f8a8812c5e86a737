package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/workpilot/internal/middleware"
	"github.com/mmynk/workpilot/internal/models"
)

// AdminServiceName is the fully-qualified name of the admin service.
const AdminServiceName = "workpilot.v1.AdminService"

// Procedure paths of the admin service.
const (
	AdminServiceLoginProcedure        = "/" + AdminServiceName + "/Login"
	AdminServiceListGroupsProcedure   = "/" + AdminServiceName + "/ListGroups"
	AdminServiceListMembersProcedure  = "/" + AdminServiceName + "/ListMembers"
	AdminServiceAddMemberProcedure    = "/" + AdminServiceName + "/AddMember"
	AdminServiceRemoveMemberProcedure = "/" + AdminServiceName + "/RemoveMember"
	AdminServiceStatusProcedure       = "/" + AdminServiceName + "/Status"
	AdminServicePendingProcedure      = "/" + AdminServiceName + "/Pending"
	AdminServiceRemindProcedure       = "/" + AdminServiceName + "/Remind"
	AdminServiceRemindAllProcedure    = "/" + AdminServiceName + "/RemindAll"
	AdminServiceExportProcedure       = "/" + AdminServiceName + "/Export"
)

// AdminService implements the operator-facing RPCs.
type AdminService struct {
	reports *ReportService
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(reports *ReportService, logger *slog.Logger) *AdminService {
	return &AdminService{reports: reports, logger: logger, now: time.Now}
}

// ListGroups returns every registered group.
func (s *AdminService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	groups, err := s.reports.Roster.ListGroups(ctx)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListGroupsResponse{Groups: groups}), nil
}

// ListMembers returns a group's roster and exclusion list.
func (s *AdminService) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	if _, err := s.reports.Roster.Group(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}
	members, err := s.reports.Roster.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	excluded, err := s.reports.Roster.ListExcluded(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListMembersResponse{Members: members, Excluded: excluded}), nil
}

// AddMember upserts a member into a group's roster.
func (s *AdminService) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	s.logger.Info("AddMember request received",
		"group_id", req.Msg.GroupID,
		"member_id", req.Msg.MemberID,
		"operator", middleware.GetOperator(ctx),
	)
	if req.Msg.MemberID == 0 || req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMemberRequired)
	}

	m := models.Member{ID: req.Msg.MemberID, Name: req.Msg.Name}
	if err := s.reports.Roster.AddMember(ctx, req.Msg.GroupID, m); err != nil {
		s.logger.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	members, err := s.reports.Roster.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddMemberResponse{Members: members}), nil
}

// RemoveMember deletes a member from a group's roster.
func (s *AdminService) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	s.logger.Info("RemoveMember request received",
		"group_id", req.Msg.GroupID,
		"member_id", req.Msg.MemberID,
		"operator", middleware.GetOperator(ctx),
	)
	if err := s.reports.Roster.RemoveMember(ctx, req.Msg.GroupID, req.Msg.MemberID); err != nil {
		s.logger.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	members, err := s.reports.Roster.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RemoveMemberResponse{Members: members}), nil
}

// Status returns the submission progress of a period.
func (s *AdminService) Status(ctx context.Context, req *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error) {
	l, p, err := s.reports.Progress(ctx, req.Msg.GroupID, req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&StatusResponse{
		Period:    l.Period,
		Total:     p.Total,
		Reports:   l.Reports,
		Submitted: p.Submitted,
		Pending:   p.Pending,
	}), nil
}

// Pending returns the members who have not submitted for a period.
func (s *AdminService) Pending(ctx context.Context, req *connect.Request[PendingRequest]) (*connect.Response[PendingResponse], error) {
	periodID, pending, err := s.reports.Pending(ctx, req.Msg.GroupID, req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PendingResponse{Period: periodID, Pending: pending}), nil
}

// Remind sends a manual reminder to one group.
func (s *AdminService) Remind(ctx context.Context, req *connect.Request[RemindRequest]) (*connect.Response[RemindResponse], error) {
	s.logger.Info("Remind request received", "group_id", req.Msg.GroupID, "operator", middleware.GetOperator(ctx))

	res, err := s.reports.Remind(ctx, req.Msg.GroupID, req.Msg.Period)
	if err != nil {
		s.logger.Error("Remind failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RemindResponse{
		Period:       res.Period,
		Pending:      res.Pending,
		Sent:         res.Sent,
		AllSubmitted: res.AllSubmitted,
	}), nil
}

// RemindAll runs the batch dispatcher immediately.
func (s *AdminService) RemindAll(ctx context.Context, req *connect.Request[RemindAllRequest]) (*connect.Response[RemindAllResponse], error) {
	s.logger.Info("RemindAll request received", "operator", middleware.GetOperator(ctx))

	batch, err := s.reports.Dispatcher.DispatchToAllGroups(ctx, s.now())
	if err != nil {
		s.logger.Error("RemindAll failed", "run_id", batch.RunID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RemindAllResponse{
		RunID:   batch.RunID,
		Period:  batch.Period,
		Groups:  batch.Groups,
		Sent:    batch.Sent,
		Skipped: batch.Skipped,
		Failed:  batch.Failed,
	}), nil
}

// Export renders and stores a period's export document.
func (s *AdminService) Export(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	s.logger.Info("Export request received", "group_id", req.Msg.GroupID, "period", req.Msg.Period)

	doc, err := s.reports.Exporter.Export(ctx, req.Msg.GroupID, req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExportResponse{
		ID:       doc.ID,
		Period:   doc.Period,
		Name:     doc.Name,
		Location: doc.Location,
		Content:  string(doc.Body),
	}), nil
}

// NewAdminServiceHandler builds an HTTP handler serving every admin RPC. It
// returns the path to mount the handler on.
func NewAdminServiceHandler(authSvc *AuthService, admin *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AdminServiceLoginProcedure, connect.NewUnaryHandler(AdminServiceLoginProcedure, authSvc.Login, opts...))
	mux.Handle(AdminServiceListGroupsProcedure, connect.NewUnaryHandler(AdminServiceListGroupsProcedure, admin.ListGroups, opts...))
	mux.Handle(AdminServiceListMembersProcedure, connect.NewUnaryHandler(AdminServiceListMembersProcedure, admin.ListMembers, opts...))
	mux.Handle(AdminServiceAddMemberProcedure, connect.NewUnaryHandler(AdminServiceAddMemberProcedure, admin.AddMember, opts...))
	mux.Handle(AdminServiceRemoveMemberProcedure, connect.NewUnaryHandler(AdminServiceRemoveMemberProcedure, admin.RemoveMember, opts...))
	mux.Handle(AdminServiceStatusProcedure, connect.NewUnaryHandler(AdminServiceStatusProcedure, admin.Status, opts...))
	mux.Handle(AdminServicePendingProcedure, connect.NewUnaryHandler(AdminServicePendingProcedure, admin.Pending, opts...))
	mux.Handle(AdminServiceRemindProcedure, connect.NewUnaryHandler(AdminServiceRemindProcedure, admin.Remind, opts...))
	mux.Handle(AdminServiceRemindAllProcedure, connect.NewUnaryHandler(AdminServiceRemindAllProcedure, admin.RemindAll, opts...))
	mux.Handle(AdminServiceExportProcedure, connect.NewUnaryHandler(AdminServiceExportProcedure, admin.Export, opts...))
	return "/" + AdminServiceName + "/", mux
}

// PublicProcedures lists the RPCs callable without a token.
func PublicProcedures() []string {
	return []string{AdminServiceLoginProcedure}
}
