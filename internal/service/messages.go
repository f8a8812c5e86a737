package service

import (
	"time"

	"github.com/mmynk/workpilot/internal/models"
)

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []models.Group `json:"groups"`
}

type ListMembersRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListMembersResponse struct {
	Members  []models.Member `json:"members"`
	Excluded []models.Member `json:"excluded"`
}

type AddMemberRequest struct {
	GroupID  int64  `json:"group_id"`
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
}

type AddMemberResponse struct {
	Members []models.Member `json:"members"`
}

type RemoveMemberRequest struct {
	GroupID  int64 `json:"group_id"`
	MemberID int64 `json:"member_id"`
}

type RemoveMemberResponse struct {
	Members []models.Member `json:"members"`
}

// StatusRequest selects a group and period. An empty period means the
// current one.
type StatusRequest struct {
	GroupID int64  `json:"group_id"`
	Period  string `json:"period,omitempty"`
}

type StatusResponse struct {
	Period    string                 `json:"period"`
	Total     int                    `json:"total"`
	Reports   []models.Report        `json:"reports"`
	Submitted []models.Member        `json:"submitted"`
	Pending   []models.PendingMember `json:"pending"`
}

type PendingRequest struct {
	GroupID int64  `json:"group_id"`
	Period  string `json:"period,omitempty"`
}

type PendingResponse struct {
	Period  string                 `json:"period"`
	Pending []models.PendingMember `json:"pending"`
}

type RemindRequest struct {
	GroupID int64  `json:"group_id"`
	Period  string `json:"period,omitempty"`
}

type RemindResponse struct {
	Period       string                 `json:"period"`
	Pending      []models.PendingMember `json:"pending"`
	Sent         bool                   `json:"sent"`
	AllSubmitted bool                   `json:"all_submitted"`
}

type RemindAllRequest struct{}

type RemindAllResponse struct {
	RunID   string `json:"run_id"`
	Period  string `json:"period"`
	Groups  int    `json:"groups"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type ExportRequest struct {
	GroupID int64  `json:"group_id"`
	Period  string `json:"period,omitempty"`
}

type ExportResponse struct {
	ID       string `json:"id"`
	Period   string `json:"period"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Content  string `json:"content"`
}
