package service

import (
	"context"

	"connectrpc.com/connect"
)

// AdminServiceClient calls the admin service.
type AdminServiceClient struct {
	login        *connect.Client[LoginRequest, LoginResponse]
	listGroups   *connect.Client[ListGroupsRequest, ListGroupsResponse]
	listMembers  *connect.Client[ListMembersRequest, ListMembersResponse]
	addMember    *connect.Client[AddMemberRequest, AddMemberResponse]
	removeMember *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	status       *connect.Client[StatusRequest, StatusResponse]
	pending      *connect.Client[PendingRequest, PendingResponse]
	remind       *connect.Client[RemindRequest, RemindResponse]
	remindAll    *connect.Client[RemindAllRequest, RemindAllResponse]
	export       *connect.Client[ExportRequest, ExportResponse]
}

// NewAdminServiceClient creates a client for the admin service at baseURL.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &AdminServiceClient{
		login:        connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AdminServiceLoginProcedure, opts...),
		listGroups:   connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+AdminServiceListGroupsProcedure, opts...),
		listMembers:  connect.NewClient[ListMembersRequest, ListMembersResponse](httpClient, baseURL+AdminServiceListMembersProcedure, opts...),
		addMember:    connect.NewClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL+AdminServiceAddMemberProcedure, opts...),
		removeMember: connect.NewClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL+AdminServiceRemoveMemberProcedure, opts...),
		status:       connect.NewClient[StatusRequest, StatusResponse](httpClient, baseURL+AdminServiceStatusProcedure, opts...),
		pending:      connect.NewClient[PendingRequest, PendingResponse](httpClient, baseURL+AdminServicePendingProcedure, opts...),
		remind:       connect.NewClient[RemindRequest, RemindResponse](httpClient, baseURL+AdminServiceRemindProcedure, opts...),
		remindAll:    connect.NewClient[RemindAllRequest, RemindAllResponse](httpClient, baseURL+AdminServiceRemindAllProcedure, opts...),
		export:       connect.NewClient[ExportRequest, ExportResponse](httpClient, baseURL+AdminServiceExportProcedure, opts...),
	}
}

func (c *AdminServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *AdminServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *AdminServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *AdminServiceClient) Status(ctx context.Context, req *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error) {
	return c.status.CallUnary(ctx, req)
}

func (c *AdminServiceClient) Pending(ctx context.Context, req *connect.Request[PendingRequest]) (*connect.Response[PendingResponse], error) {
	return c.pending.CallUnary(ctx, req)
}

func (c *AdminServiceClient) Remind(ctx context.Context, req *connect.Request[RemindRequest]) (*connect.Response[RemindResponse], error) {
	return c.remind.CallUnary(ctx, req)
}

func (c *AdminServiceClient) RemindAll(ctx context.Context, req *connect.Request[RemindAllRequest]) (*connect.Response[RemindAllResponse], error) {
	return c.remindAll.CallUnary(ctx, req)
}

func (c *AdminServiceClient) Export(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	return c.export.CallUnary(ctx, req)
}
