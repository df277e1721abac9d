package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "procurement/internal/adapters/in/http"
	"procurement/internal/core/application/usecases/commands"
	"procurement/internal/core/application/usecases/queries"
	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/saga"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type MockOrderEditor struct{ mock.Mock }

func (m *MockOrderEditor) Handle(ctx context.Context, command commands.EditOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, command)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockStatusChanger struct{ mock.Mock }

func (m *MockStatusChanger) Handle(ctx context.Context, command commands.ChangeOrderStatusCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockParticipantsEditor struct{ mock.Mock }

func (m *MockParticipantsEditor) Handle(ctx context.Context, command commands.EditParticipantsCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockReviewer struct{ mock.Mock }

func (m *MockReviewer) Handle(
	ctx context.Context,
	command commands.ReviewChangeRequestCommand,
) (*changerequest.ChangeRequest, error) {
	args := m.Called(ctx, command)
	cr, _ := args.Get(0).(*changerequest.ChangeRequest)
	return cr, args.Error(1)
}

type MockPreferencesSaver struct{ mock.Mock }

func (m *MockPreferencesSaver) Handle(ctx context.Context, command commands.SaveOrderPreferencesCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error) {
	args := m.Called(ctx, query)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockCancellationChecker struct{ mock.Mock }

func (m *MockCancellationChecker) Handle(
	ctx context.Context,
	query queries.CanOrderBeCancelledQuery,
) (queries.CanOrderBeCancelledQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.CanOrderBeCancelledQueryResponse), args.Error(1)
}

type MockChangeRequestLister struct{ mock.Mock }

func (m *MockChangeRequestLister) Handle(
	ctx context.Context,
	query queries.GetOrderChangeRequestsQuery,
) ([]queries.ChangeRequestSummary, error) {
	args := m.Called(ctx, query)
	s, _ := args.Get(0).([]queries.ChangeRequestSummary)
	return s, args.Error(1)
}

type fixture struct {
	e        *echo.Echo
	handlers httpadapter.Handlers

	editor     *MockOrderEditor
	status     *MockStatusChanger
	editors    *MockParticipantsEditor
	reviewer   *MockReviewer
	prefs      *MockPreferencesSaver
	reader     *MockOrderReader
	cancel     *MockCancellationChecker
	changeReqs *MockChangeRequestLister

	userID, orgID kernel.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		e:          echo.New(),
		editor:     new(MockOrderEditor),
		status:     new(MockStatusChanger),
		editors:    new(MockParticipantsEditor),
		reviewer:   new(MockReviewer),
		prefs:      new(MockPreferencesSaver),
		reader:     new(MockOrderReader),
		cancel:     new(MockCancellationChecker),
		changeReqs: new(MockChangeRequestLister),
		userID:     kernel.NewUUID(),
		orgID:      kernel.NewUUID(),
	}
	f.handlers = httpadapter.Handlers{
		EditOrder:              f.editor,
		ChangeOrderStatus:      f.status,
		EditParticipants:       f.editors,
		ReviewChangeRequest:    f.reviewer,
		SaveOrderPreferences:   f.prefs,
		GetOrder:               f.reader,
		GetOrderChangeRequests: f.changeReqs,
		CanOrderBeCancelled:    f.cancel,
	}
	server := httpadapter.NewServer(f.handlers, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, server.Register(f.e))
	return f
}

func (f *fixture) do(method, target, body string, kind string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(httpadapter.HeaderUserID, f.userID.String())
	req.Header.Set(httpadapter.HeaderOrgID, f.orgID.String())
	if kind != "" {
		req.Header.Set(httpadapter.HeaderActorKind, kind)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) newOrder(t *testing.T) *order.Order {
	t.Helper()
	buyer, err := order.NewParticipant(f.userID, true)
	require.NoError(t, err)
	li, err := order.NewLineItem(kernel.NewUUID(), 1, order.LineItemDraft{
		Description: "Enamel mugs", Quantity: mustDecimal("120"), UnitPrice: mustDecimal("2.40"),
	})
	require.NoError(t, err)
	o, err := order.RestoreOrder(
		kernel.NewUUID(), f.orgID,
		order.Details{PONumber: "PO-5520", Destination: "Felixstowe", SupplierOrgID: kernel.NewUUID()},
		order.Accepted, true, []order.LineItem{li}, []order.Participant{buyer}, now, now,
	)
	require.NoError(t, err)
	return o
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpadapter.Error {
	t.Helper()
	var body httpadapter.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	f.reader.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == o.ID() && q.Actor().UserID() == f.userID && q.Actor().Kind() == actor.User
	})).Return(o, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+o.ID().String(), "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body httpadapter.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, o.ID().String(), body.ID)
	assert.Equal(t, "Accepted", body.Status)
	assert.Equal(t, "PO-5520", body.Fields["poNumber"])
	require.Len(t, body.LineItems, 1)
	assert.Equal(t, "Enamel mugs", body.LineItems[0].Description)
}

func TestGetOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
		{"not authorized", errs.NewNotAuthorizedError("order", "user is not associated with the order"), http.StatusForbidden},
		{"invalid", errs.NewValueIsInvalidError("field"), http.StatusBadRequest},
		{"business rule", errs.NewBusinessRuleError("cancellation", "booking request br-1 is active"), http.StatusConflict},
		{"unexpected", fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.reader.On("Handle", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), "", "")

			assert.Equal(t, tt.code, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "connection refused")
			}
		})
	}
}

func TestIdentityHeaders(t *testing.T) {
	f := newFixture(t)
	orderPath := "/api/v1/orders/" + kernel.NewUUID().String()

	req := httptest.NewRequest(http.MethodGet, orderPath, nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "missing identity")

	rec = f.do(http.MethodGet, orderPath, "", "robot")
	assert.Equal(t, http.StatusForbidden, rec.Code, "unknown actor kind")

	rec = f.do(http.MethodGet, "/api/v1/orders/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.reader.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestEditOrder_BuildsCommand(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	removed := kernel.NewUUID()
	f.editor.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.EditOrderCommand) bool {
		status, hasStatus := c.Status()
		return c.OrderID() == o.ID() &&
			c.Actor().Kind() == actor.Integration &&
			hasStatus && status == order.Booked &&
			c.Fields()[order.FieldDestination] == "Rotterdam" &&
			len(c.LineItems().Add()) == 1 &&
			c.LineItems().Add()[0].Quantity.String() == "12.5" &&
			len(c.LineItems().Remove()) == 1 && c.LineItems().Remove()[0] == removed &&
			c.Note() == "port congestion"
	})).Return(o, nil).Once()

	body := fmt.Sprintf(`{
		"status": "Booked",
		"fields": {"destination": "Rotterdam"},
		"lineItems": {
			"add": [{"description": "Linen", "quantity": "12.5", "unitOfMeasure": "m", "unitPrice": 4.1}],
			"remove": [%q]
		},
		"note": "port congestion"
	}`, removed.String())
	rec := f.do(http.MethodPatch, "/api/v1/orders/"+o.ID().String(), body, "integration")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.editor.AssertExpectations(t)
}

func TestEditOrder_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"fields": {"colour": "red"}}`},
		{"unknown status", `{"status": "Lost"}`},
		{"replace with add", `{"lineItems": {"replace": [], "add": [{"description": "Cups", "quantity": 1, "unitPrice": 1}]}}`},
		{"missing description", `{"lineItems": {"add": [{"quantity": 1, "unitPrice": 1}]}}`},
		{"remove is not a uuid", `{"lineItems": {"remove": ["12"]}}`},
		{"malformed json", `{"fields":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String(), tt.body, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			f.editor.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestEditOrder_ReportsCommittedPhases(t *testing.T) {
	f := newFixture(t)
	f.editor.On("Handle", mock.Anything, mock.Anything).Return(nil, &saga.Error{
		Phase:     "line items",
		Completed: []string{"status", "direct fields"},
		Cause:     errs.NewPersistenceError("line item note", "delete", "li-1"),
	})

	rec := f.do(http.MethodPatch, "/api/v1/orders/"+kernel.NewUUID().String(),
		`{"fields": {"isHot": "true"}}`, "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"status", "direct fields"}, decodeError(t, rec).CommittedPhases)
}

func TestChangeOrderStatus(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	f.status.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.ChangeOrderStatusCommand) bool {
		return c.OrderID() == orderID && c.Target() == order.Cancelled
	})).Return(errs.NewBusinessRuleError("cancellation", "shipment sh-1 is active")).Once()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/status", `{"status": "Cancelled"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/status", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.status.AssertExpectations(t)
}

func TestEditParticipants(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	member := kernel.NewUUID()
	f.editors.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.EditParticipantsCommand) bool {
		ps := c.Participants()
		return len(ps) == 2 && ps[1].UserID() == member && !ps[1].ApprovalIsRequired()
	})).Return(nil).Once()

	body := fmt.Sprintf(`{"participants": [
		{"userId": %q, "approvalIsRequired": true},
		{"userId": %q}
	]}`, f.userID.String(), member.String())
	rec := f.do(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/participants", body, "")

	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/participants", `{"participants": []}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.editors.AssertExpectations(t)
}

func TestCanOrderBeCancelled(t *testing.T) {
	f := newFixture(t)
	f.cancel.On("Handle", mock.Anything, mock.Anything).Return(queries.CanOrderBeCancelledQueryResponse{
		Cancellable: false,
		Reason:      "booking request br-1 is active",
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/cancellable", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cancellable": false, "reason": "booking request br-1 is active"}`, rec.Body.String())
}

func TestGetOrderChangeRequests(t *testing.T) {
	f := newFixture(t)
	crID := kernel.NewUUID()
	f.changeReqs.On("Handle", mock.Anything, mock.Anything).Return([]queries.ChangeRequestSummary{{
		ID:             crID,
		Number:         3,
		Title:          "Change Request #3",
		Description:    "Destination: Felixstowe → Rotterdam",
		Status:         "Proposed",
		CreatedOn:      now,
		AuthorID:       f.userID,
		PendingReviews: 2,
	}}, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/change-requests", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []httpadapter.ChangeRequestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, crID.String(), body[0].ID)
	assert.Equal(t, "2026-10-14", body[0].CreatedOn)
	assert.Equal(t, 2, body[0].PendingReviews)
}

func TestReviewChangeRequest(t *testing.T) {
	f := newFixture(t)
	crID := kernel.NewUUID()
	f.reviewer.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.ReviewChangeRequestCommand) bool {
		return c.ChangeRequestID() == crID && c.Verdict() == changerequest.Rejected
	})).Return(nil, errs.NewNotAuthorizedError("change request", "user is not a required approver")).Once()

	rec := f.do(http.MethodPost, "/api/v1/change-requests/"+crID.String()+"/reviews", `{"verdict": "reject"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/change-requests/"+crID.String()+"/reviews", `{"verdict": "maybe"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.reviewer.AssertExpectations(t)
}

func TestSaveOrderPreferences(t *testing.T) {
	f := newFixture(t)
	f.prefs.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.SaveOrderPreferencesCommand) bool {
		p := c.Preferences()
		rule := p.Fields[order.FieldDestination]
		return c.BuyerOrgID() == f.orgID && p.ChangeControlEnabled &&
			assert.ObjectsAreEqual([]order.Role{order.RoleBuyer, order.RoleForwarder}, rule.EditableBy)
	})).Return(nil).Once()

	path := "/api/v1/organizations/" + f.orgID.String() + "/order-preferences"
	rec := f.do(http.MethodPut, path,
		`{"changeControlEnabled": true, "fields": {"destination": {"editableBy": ["buyer", "forwarder"]}}}`, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPut, path, `{"fields": {"destination": {"editableBy": ["captain"]}}}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.prefs.AssertExpectations(t)
}

func TestOpenAPIDocument_DescribesEveryRoute(t *testing.T) {
	f := newFixture(t)
	doc, err := httpadapter.LoadOpenAPI(t.Context())
	require.NoError(t, err)

	described := 0
	for _, route := range f.e.Routes() {
		if !strings.HasPrefix(route.Path, "/api/v1/") {
			continue
		}
		segments := strings.Split(route.Path, "/")
		for i, segment := range segments {
			if strings.HasPrefix(segment, ":") {
				segments[i] = "{" + segment[1:] + "}"
			}
		}
		item := doc.Paths.Find(strings.Join(segments, "/"))
		require.NotNil(t, item, route.Path)
		assert.NotNil(t, item.GetOperation(route.Method), "%s %s", route.Method, route.Path)
		described++
	}
	assert.Equal(t, 9, described)
}

func TestRequestContract_RejectsBeforeHandlers(t *testing.T) {
	orderPath := "/api/v1/orders/" + kernel.NewUUID().String()
	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   string
	}{
		{"verdict outside enum", http.MethodPost,
			"/api/v1/change-requests/" + kernel.NewUUID().String() + "/reviews", `{"verdict": "maybe"}`, "verdict"},
		{"participant id is a number", http.MethodPut, orderPath + "/participants",
			`{"participants": [{"userId": 12}]}`, "userId"},
		{"status is not a lifecycle state", http.MethodPost, orderPath + "/status", `{"status": "Unknown"}`, "status"},
		{"quantity is not a decimal", http.MethodPatch, orderPath,
			`{"lineItems": {"add": [{"description": "Cups", "quantity": "ten"}]}}`, "quantity"},
		{"field value is not a string", http.MethodPatch, orderPath, `{"fields": {"isHot": true}}`, "isHot"},
		{"role outside enum", http.MethodPut, "/api/v1/organizations/" + kernel.NewUUID().String() + "/order-preferences",
			`{"fields": {"terms": {"editableBy": ["captain"]}}}`, "editableBy"},
		{"line item id is not a uuid", http.MethodGet, orderPath + "/line-items/42", "", "lineItemId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(tt.method, tt.target, tt.body, "")

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decodeError(t, rec).Message, tt.want)
			f.reviewer.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			f.editors.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			f.status.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			f.editor.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			f.prefs.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestRequestContract_SkipsOperationalRoutes(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
