package wsserver

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wedplan/internal/broadcast"
	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

// envelope is the routing header of an inbound message. The resource fields
// themselves are decoded from the same raw bytes in a second pass.
type envelope struct {
	Action   string `json:"action"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// dispatch executes one inbound envelope and returns the reply payload for
// the sender. Successful mutations also reach every registered listener via
// the service's own notifier; the sender gets both.
func (server *Server) dispatch(ctx context.Context, raw []byte) []byte {
	var request envelope
	if err := json.Unmarshal(raw, &request); err != nil {
		return failurePayload(fmt.Errorf("malformed message: %w", err))
	}
	if request.Resource == "" {
		request.Resource = string(broadcast.ResourceGuest)
	}

	var (
		record any
		err    error
	)
	switch broadcast.Resource(request.Resource) {
	case broadcast.ResourceGuest:
		record, err = server.dispatchGuest(ctx, request, raw)
	case broadcast.ResourceFinance:
		record, err = server.dispatchFinance(ctx, request, raw)
	default:
		err = fmt.Errorf("unknown resource %q", request.Resource)
	}
	if err != nil {
		server.logger.Warn("envelope rejected",
			zap.String("action", request.Action),
			zap.String("resource", request.Resource),
			zap.Error(err))
		return failurePayload(err)
	}

	reply, marshalErr := broadcast.Notification{
		Resource: broadcast.Resource(request.Resource),
		Action:   broadcast.Action(request.Action),
		Record:   record,
	}.MarshalPayload()
	if marshalErr != nil {
		return failurePayload(marshalErr)
	}
	return reply
}

func (server *Server) dispatchGuest(ctx context.Context, request envelope, raw []byte) (any, error) {
	switch broadcast.Action(request.Action) {
	case broadcast.ActionAdd:
		var input guest.Input
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("malformed guest payload: %w", err)
		}
		return server.guests.Create(ctx, input)
	case broadcast.ActionUpdate:
		var input guest.Input
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("malformed guest payload: %w", err)
		}
		return server.guests.Update(ctx, request.ID, input)
	case broadcast.ActionDelete:
		deleted, err := server.guests.Delete(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		return broadcast.Deleted{ID: deleted.ID}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", request.Action)
	}
}

func (server *Server) dispatchFinance(ctx context.Context, request envelope, raw []byte) (any, error) {
	switch broadcast.Action(request.Action) {
	case broadcast.ActionAdd:
		var input finance.Input
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("malformed finance payload: %w", err)
		}
		return server.finances.Create(ctx, input)
	case broadcast.ActionUpdate:
		var input finance.Input
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("malformed finance payload: %w", err)
		}
		return server.finances.Update(ctx, request.ID, input)
	case broadcast.ActionDelete:
		deleted, err := server.finances.Delete(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		return broadcast.Deleted{ID: deleted.ID}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", request.Action)
	}
}

func failurePayload(err error) []byte {
	payload, marshalErr := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if marshalErr != nil {
		return []byte(`{"success":false,"error":"internal error"}`)
	}
	return payload
}
