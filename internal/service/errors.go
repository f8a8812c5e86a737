package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/workpilot/internal/models"
)

// toConnectError maps domain errors onto connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, models.ErrUnknownGroup):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrInvalidPeriod):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrTransport):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

var errMemberRequired = errors.New("member_id and name are required")
