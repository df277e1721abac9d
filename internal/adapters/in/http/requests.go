package http

import (
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"

	"github.com/shopspring/decimal"
)

// EditOrderRequest is the body of PATCH /api/v1/orders/:id. Every part is optional.
type EditOrderRequest struct {
	Status    *string           `json:"status,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	LineItems *LineItemsRequest `json:"lineItems,omitempty"`
	Note      string            `json:"note,omitempty" validate:"max=2000"`
}

// LineItemsRequest carries either replace or any of add, edit and remove.
// An empty replace array removes every line item.
type LineItemsRequest struct {
	Replace []LineItemRequest     `json:"replace,omitempty" validate:"omitempty,dive"`
	Add     []LineItemRequest     `json:"add,omitempty" validate:"omitempty,dive"`
	Edit    []LineItemEditRequest `json:"edit,omitempty" validate:"omitempty,dive"`
	Remove  []string              `json:"remove,omitempty" validate:"omitempty,dive,uuid"`
}

type LineItemRequest struct {
	Description   string          `json:"description" validate:"required,max=500"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitOfMeasure string          `json:"unitOfMeasure" validate:"max=20"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Note          string          `json:"note" validate:"max=2000"`
}

type LineItemEditRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	LineItemRequest
}

func (r LineItemRequest) draft() order.LineItemDraft {
	return order.LineItemDraft{
		Description:   r.Description,
		Quantity:      r.Quantity,
		UnitOfMeasure: r.UnitOfMeasure,
		UnitPrice:     r.UnitPrice,
		Note:          r.Note,
	}
}

func drafts(reqs []LineItemRequest) []order.LineItemDraft {
	if reqs == nil {
		return nil
	}
	out := make([]order.LineItemDraft, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.draft())
	}
	return out
}

// instructions converts the request. UUIDs were checked by the validator.
func (r *LineItemsRequest) instructions() (order.LineItemInstructions, error) {
	if r == nil {
		return order.LineItemInstructions{}, nil
	}

	edits := make([]order.LineItemEdit, 0, len(r.Edit))
	for _, e := range r.Edit {
		id, err := kernel.UUIDFromString(e.ID)
		if err != nil {
			return order.LineItemInstructions{}, err
		}
		edits = append(edits, order.LineItemEdit{ID: id, Draft: e.draft()})
	}
	removals := make([]kernel.UUID, 0, len(r.Remove))
	for _, raw := range r.Remove {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return order.LineItemInstructions{}, err
		}
		removals = append(removals, id)
	}

	return order.NewLineItemInstructions(drafts(r.Replace), drafts(r.Add), edits, removals)
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ParticipantRequest struct {
	UserID             string `json:"userId" validate:"required,uuid"`
	ApprovalIsRequired bool   `json:"approvalIsRequired"`
}

type EditParticipantsRequest struct {
	Participants []ParticipantRequest `json:"participants" validate:"required,min=1,dive"`
}

func (r EditParticipantsRequest) participants() ([]order.Participant, error) {
	out := make([]order.Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		userID, err := kernel.UUIDFromString(p.UserID)
		if err != nil {
			return nil, err
		}
		participant, err := order.NewParticipant(userID, p.ApprovalIsRequired)
		if err != nil {
			return nil, err
		}
		out = append(out, participant)
	}
	return out, nil
}

type ReviewRequest struct {
	Verdict string `json:"verdict" validate:"required,oneof=approve reject"`
}

type FieldRuleRequest struct {
	EditableBy               []string `json:"editableBy" validate:"dive,oneof=buyer supplier forwarder consignee agent broker trucker"`
	ExcludeFromChangeControl bool     `json:"excludeFromChangeControl"`
}

type PreferencesRequest struct {
	ChangeControlEnabled bool                        `json:"changeControlEnabled"`
	Fields               map[string]FieldRuleRequest `json:"fields" validate:"omitempty,dive"`
}

func (r PreferencesRequest) preferences() preferences.Preferences {
	fields := make(map[order.Field]preferences.FieldRule, len(r.Fields))
	for name, rule := range r.Fields {
		roles := make([]order.Role, 0, len(rule.EditableBy))
		for _, role := range rule.EditableBy {
			roles = append(roles, order.Role(role))
		}
		fields[order.Field(name)] = preferences.FieldRule{
			EditableBy:               roles,
			ExcludeFromChangeControl: rule.ExcludeFromChangeControl,
		}
	}
	return preferences.Preferences{ChangeControlEnabled: r.ChangeControlEnabled, Fields: fields}
}
