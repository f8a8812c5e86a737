package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/workpilot/internal/auth"
	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/internal/export"
	"github.com/mmynk/workpilot/internal/ledger"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/middleware"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/reminder"
	"github.com/mmynk/workpilot/internal/render"
	"github.com/mmynk/workpilot/internal/roster"
	"github.com/mmynk/workpilot/internal/storage/memory"
	"github.com/mmynk/workpilot/internal/transport/transporttest"
)

const testGroup int64 = -1001

type testEnv struct {
	client   *AdminServiceClient
	reports  *ReportService
	recorder *transporttest.Recorder
	token    string
}

func newReportService(t *testing.T, recorder *transporttest.Recorder) *ReportService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	resolver := period.NewResolver(time.UTC)

	rs := roster.New(store, logger, nil)
	l := ledger.New(store, resolver, logger)
	dispatcher := reminder.NewDispatcher(rs, l, recorder, resolver, logger)
	exporter := export.NewExporter(rs, l, render.New(time.UTC), export.NewFileSink(t.TempDir()), logger)
	return NewReportService(rs, l, resolver, dispatcher, exporter, metrics.New(nil), logger)
}

// setupAdminTestServer starts the admin API over httptest and logs in.
func setupAdminTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator([]config.Operator{{Name: "ops", PasswordHash: string(hash)}})

	recorder := transporttest.New()
	reports := newReportService(t, recorder)

	path, handler := NewAdminServiceHandler(
		NewAuthService(authenticator, jwtManager, logger),
		NewAdminService(reports, logger),
		connect.WithInterceptors(
			middleware.RequireAuth(jwtManager, PublicProcedures()...),
			middleware.LoggingInterceptor(logger),
		),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env := &testEnv{
		client:   NewAdminServiceClient(http.DefaultClient, server.URL),
		reports:  reports,
		recorder: recorder,
	}

	resp, err := env.client.Login(context.Background(), connect.NewRequest(&LoginRequest{Name: "ops", Password: "correct-horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	env.token = resp.Msg.Token
	return env
}

func authed[T any](env *testEnv, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+env.token)
	return req
}

func registerTestGroup(t *testing.T, env *testEnv, members ...models.Member) {
	t.Helper()
	ctx := context.Background()
	if _, err := env.reports.Roster.RegisterGroup(ctx, testGroup, "Team"); err != nil {
		t.Fatalf("RegisterGroup failed: %v", err)
	}
	for _, m := range members {
		if err := env.reports.Roster.AddMember(ctx, testGroup, m); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
}

func TestAdminRequiresToken(t *testing.T) {
	env := setupAdminTestServer(t)

	_, err := env.client.ListGroups(context.Background(), connect.NewRequest(&ListGroupsRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected CodeUnauthenticated, got %v", err)
	}

	req := connect.NewRequest(&ListGroupsRequest{})
	req.Header().Set("Authorization", "Bearer not-a-token")
	_, err = env.client.ListGroups(context.Background(), req)
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected CodeUnauthenticated for bad token, got %v", err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := setupAdminTestServer(t)

	_, err := env.client.Login(context.Background(), connect.NewRequest(&LoginRequest{Name: "ops", Password: "wrong"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected CodeUnauthenticated, got %v", err)
	}

	_, err = env.client.Login(context.Background(), connect.NewRequest(&LoginRequest{}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected CodeInvalidArgument, got %v", err)
	}
}

func TestAdminMembers(t *testing.T) {
	env := setupAdminTestServer(t)
	ctx := context.Background()
	registerTestGroup(t, env)

	groups, err := env.client.ListGroups(ctx, authed(env, &ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups.Msg.Groups) != 1 || groups.Msg.Groups[0].ID != testGroup {
		t.Fatalf("expected group %d, got %+v", testGroup, groups.Msg.Groups)
	}

	for _, m := range []models.Member{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}} {
		if _, err := env.client.AddMember(ctx, authed(env, &AddMemberRequest{GroupID: testGroup, MemberID: m.ID, Name: m.Name})); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}

	removed, err := env.client.RemoveMember(ctx, authed(env, &RemoveMemberRequest{GroupID: testGroup, MemberID: 1}))
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if len(removed.Msg.Members) != 1 || removed.Msg.Members[0].ID != 2 {
		t.Errorf("expected only member 2 left, got %+v", removed.Msg.Members)
	}

	list, err := env.client.ListMembers(ctx, authed(env, &ListMembersRequest{GroupID: testGroup}))
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(list.Msg.Members) != 1 || list.Msg.Members[0].Name != "B" {
		t.Errorf("unexpected members: %+v", list.Msg.Members)
	}

	_, err = env.client.AddMember(ctx, authed(env, &AddMemberRequest{GroupID: testGroup}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected CodeInvalidArgument for empty member, got %v", err)
	}
}

func TestAdminUnknownGroup(t *testing.T) {
	env := setupAdminTestServer(t)
	ctx := context.Background()

	_, err := env.client.AddMember(ctx, authed(env, &AddMemberRequest{GroupID: 42, MemberID: 1, Name: "A"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("AddMember: expected CodeNotFound, got %v", err)
	}
	_, err = env.client.Status(ctx, authed(env, &StatusRequest{GroupID: 42}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("Status: expected CodeNotFound, got %v", err)
	}

	pending, err := env.client.Pending(ctx, authed(env, &PendingRequest{GroupID: 42, Period: "2024-W10"}))
	if err != nil {
		t.Fatalf("Pending: expected no error, got %v", err)
	}
	if pending.Msg.Period != "2024-W10" || len(pending.Msg.Pending) != 0 {
		t.Errorf("Pending: expected nobody pending, got %+v", pending.Msg)
	}

	remind, err := env.client.Remind(ctx, authed(env, &RemindRequest{GroupID: 42}))
	if err != nil {
		t.Fatalf("Remind: expected no error, got %v", err)
	}
	if !remind.Msg.AllSubmitted || remind.Msg.Sent {
		t.Errorf("Remind: expected all submitted and nothing sent, got %+v", remind.Msg)
	}
	if msgs := env.recorder.Messages(); len(msgs) != 0 {
		t.Errorf("Remind: expected no messages, got %d", len(msgs))
	}
}

func TestAdminStatusAndPending(t *testing.T) {
	env := setupAdminTestServer(t)
	ctx := context.Background()
	registerTestGroup(t, env, models.Member{ID: 1, Name: "A"}, models.Member{ID: 2, Name: "B"}, models.Member{ID: 3, Name: "C"})

	wednesday := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	if _, err := env.reports.Submit(ctx, testGroup, models.Member{ID: 1, Name: "A"}, "done", wednesday, metrics.SourceCommand); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	status, err := env.client.Status(ctx, authed(env, &StatusRequest{GroupID: testGroup, Period: "2024-W10"}))
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Msg.Total != 3 || len(status.Msg.Submitted) != 1 || len(status.Msg.Reports) != 1 {
		t.Errorf("unexpected status: %+v", status.Msg)
	}

	pending, err := env.client.Pending(ctx, authed(env, &PendingRequest{GroupID: testGroup, Period: "2024-W10"}))
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending.Msg.Pending) != 2 || pending.Msg.Pending[0].ID != 2 || pending.Msg.Pending[1].ID != 3 {
		t.Errorf("expected pending [2 3], got %+v", pending.Msg.Pending)
	}

	_, err = env.client.Pending(ctx, authed(env, &PendingRequest{GroupID: testGroup, Period: "last week"}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected CodeInvalidArgument for bad period, got %v", err)
	}
}

func TestAdminRemind(t *testing.T) {
	env := setupAdminTestServer(t)
	ctx := context.Background()
	registerTestGroup(t, env, models.Member{ID: 2, Name: "B"})

	resp, err := env.client.Remind(ctx, authed(env, &RemindRequest{GroupID: testGroup, Period: "2024-W10"}))
	if err != nil {
		t.Fatalf("Remind failed: %v", err)
	}
	if !resp.Msg.Sent || len(resp.Msg.Pending) != 1 {
		t.Errorf("unexpected remind response: %+v", resp.Msg)
	}
	if got := env.recorder.MessagesTo(testGroup); len(got) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(got))
	}

	all, err := env.client.RemindAll(ctx, authed(env, &RemindAllRequest{}))
	if err != nil {
		t.Fatalf("RemindAll failed: %v", err)
	}
	if all.Msg.RunID == "" || all.Msg.Groups != 1 || all.Msg.Sent != 1 {
		t.Errorf("unexpected batch: %+v", all.Msg)
	}

	env.recorder.FailChat(testGroup, errors.New("kicked"))
	_, err = env.client.Remind(ctx, authed(env, &RemindRequest{GroupID: testGroup}))
	if connect.CodeOf(err) != connect.CodeUnavailable {
		t.Errorf("expected CodeUnavailable on transport failure, got %v", err)
	}
}

func TestAdminExport(t *testing.T) {
	env := setupAdminTestServer(t)
	ctx := context.Background()
	registerTestGroup(t, env, models.Member{ID: 1, Name: "A"})

	wednesday := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	if _, err := env.reports.Submit(ctx, testGroup, models.Member{ID: 1, Name: "A"}, "shipped", wednesday, metrics.SourceCommand); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	resp, err := env.client.Export(ctx, authed(env, &ExportRequest{GroupID: testGroup, Period: "2024-W10"}))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if resp.Msg.Name != "2024-W10_summary.md" || resp.Msg.Location == "" || resp.Msg.ID == "" {
		t.Errorf("unexpected export: %+v", resp.Msg)
	}
	if want := "# Team - 2024-W10 周报汇总"; len(resp.Msg.Content) < len(want) || resp.Msg.Content[:len(want)] != want {
		t.Errorf("unexpected export content: %q", resp.Msg.Content)
	}
}
