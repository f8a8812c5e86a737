package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/transport/transporttest"
)

func TestSubmitAutoRegisters(t *testing.T) {
	s := newReportService(t, transporttest.New())
	ctx := context.Background()
	wednesday := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

	if _, err := s.Roster.RegisterGroup(ctx, testGroup, "Team"); err != nil {
		t.Fatalf("RegisterGroup failed: %v", err)
	}

	sub, err := s.Submit(ctx, testGroup, models.Member{ID: 1, Name: "A"}, "本周工作: 完成登录", wednesday, metrics.SourceMessage)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !sub.OnRoster || sub.Period != "2024-W10" {
		t.Errorf("unexpected submission: %+v", sub)
	}

	members, _ := s.Roster.ListMembers(ctx, testGroup)
	if len(members) != 1 || members[0].ID != 1 {
		t.Errorf("expected author on roster, got %+v", members)
	}
}

func TestSubmitByExcludedMember(t *testing.T) {
	s := newReportService(t, transporttest.New())
	ctx := context.Background()
	wednesday := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

	if _, err := s.Roster.RegisterGroup(ctx, testGroup, "Team"); err != nil {
		t.Fatalf("RegisterGroup failed: %v", err)
	}
	if err := s.Roster.Exclude(ctx, testGroup, models.Member{ID: 1, Name: "A"}); err != nil {
		t.Fatalf("Exclude failed: %v", err)
	}

	sub, err := s.Submit(ctx, testGroup, models.Member{ID: 1, Name: "A"}, "weekly report: bots", wednesday, metrics.SourceCommand)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.OnRoster {
		t.Error("excluded author must not be added to the roster")
	}

	reports, _ := s.Ledger.ListSubmitted(ctx, testGroup, "2024-W10")
	if len(reports) != 1 {
		t.Errorf("expected the report to be recorded, got %d reports", len(reports))
	}
}

func TestSubmitUnknownGroup(t *testing.T) {
	s := newReportService(t, transporttest.New())
	_, err := s.Submit(context.Background(), 42, models.Member{ID: 1, Name: "A"}, "x", time.Now(), metrics.SourceCommand)
	if !errors.Is(err, models.ErrUnknownGroup) {
		t.Errorf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestPendingWithoutRoster(t *testing.T) {
	recorder := transporttest.New()
	s := newReportService(t, recorder)
	ctx := context.Background()

	periodID, pending, err := s.Pending(ctx, 4242, "2024-W10")
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if periodID != "2024-W10" {
		t.Errorf("expected period 2024-W10, got %q", periodID)
	}
	if pending == nil || len(pending) != 0 {
		t.Errorf("expected an empty pending list, got %#v", pending)
	}

	res, err := s.Remind(ctx, 4242, "")
	if err != nil {
		t.Fatalf("Remind failed: %v", err)
	}
	if !res.AllSubmitted || res.Sent {
		t.Errorf("expected all submitted and nothing sent, got %+v", res)
	}
	if len(recorder.Messages()) != 0 {
		t.Errorf("expected no messages, got %v", recorder.Messages())
	}

	if _, _, err := s.Pending(ctx, 4242, "2024-10"); !errors.Is(err, models.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}
