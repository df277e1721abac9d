// Package http exposes order edits, status changes, participant edits,
// change request reviews and the order read models over REST.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"procurement/internal/core/application/usecases/commands"
	"procurement/internal/core/application/usecases/queries"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"

	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	OrderEditor interface {
		Handle(ctx context.Context, command commands.EditOrderCommand) (*order.Order, error)
	}
	OrderStatusChanger interface {
		Handle(ctx context.Context, command commands.ChangeOrderStatusCommand) error
	}
	ParticipantsEditor interface {
		Handle(ctx context.Context, command commands.EditParticipantsCommand) error
	}
	ChangeRequestReviewer interface {
		Handle(ctx context.Context, command commands.ReviewChangeRequestCommand) (*changerequest.ChangeRequest, error)
	}
	PreferencesSaver interface {
		Handle(ctx context.Context, command commands.SaveOrderPreferencesCommand) error
	}
	OrderReader interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
	}
	LineItemReader interface {
		Handle(ctx context.Context, query queries.GetLineItemQuery) (order.LineItem, error)
	}
	ChangeRequestLister interface {
		Handle(ctx context.Context, query queries.GetOrderChangeRequestsQuery) ([]queries.ChangeRequestSummary, error)
	}
	CancellationChecker interface {
		Handle(ctx context.Context, query queries.CanOrderBeCancelledQuery) (queries.CanOrderBeCancelledQueryResponse, error)
	}
)

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	EditOrder            OrderEditor
	ChangeOrderStatus    OrderStatusChanger
	EditParticipants     ParticipantsEditor
	ReviewChangeRequest  ChangeRequestReviewer
	SaveOrderPreferences PreferencesSaver

	GetOrder               OrderReader
	GetLineItem            LineItemReader
	GetOrderChangeRequests ChangeRequestLister
	CanOrderBeCancelled    CancellationChecker
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http.Server")}
}

// Register installs the validators and every route on e. Requests under
// /api/v1 are checked against the embedded API document first.
func (s *Server) Register(e *echo.Echo) error {
	doc, err := LoadOpenAPI(context.Background())
	if err != nil {
		return err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return fmt.Errorf("build openapi router: %w", err)
	}
	e.Validator = NewRequestValidator()

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1", s.requestContract(router))
	v1.GET("/orders/:id", s.GetOrder)
	v1.PATCH("/orders/:id", s.EditOrder)
	v1.POST("/orders/:id/status", s.ChangeOrderStatus)
	v1.PUT("/orders/:id/participants", s.EditParticipants)
	v1.GET("/orders/:id/cancellable", s.CanOrderBeCancelled)
	v1.GET("/orders/:id/change-requests", s.GetOrderChangeRequests)
	v1.GET("/orders/:id/line-items/:lineItemId", s.GetLineItem)
	v1.POST("/change-requests/:id/reviews", s.ReviewChangeRequest)
	v1.PUT("/organizations/:orgId/order-preferences", s.SaveOrderPreferences)
	return nil
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, a)
	if err != nil {
		return s.respondError(c, err)
	}
	o, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// EditOrder handles PATCH /api/v1/orders/:id and returns the order as stored
// after every direct change. A change request raised by the edit is listed
// under /change-requests.
func (s *Server) EditOrder(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req EditOrderRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	var status *order.Status
	if req.Status != nil {
		parsed, err := order.ParseStatus(*req.Status)
		if err != nil {
			return s.respondError(c, err)
		}
		status = &parsed
	}
	fields := make(order.FieldValues, len(req.Fields))
	for name, value := range req.Fields {
		fields[order.Field(name)] = value
	}
	lineItems, err := req.LineItems.instructions()
	if err != nil {
		return s.respondError(c, errs.NewValueIsInvalidErrorWithCause("lineItems", err))
	}

	command, err := commands.NewEditOrderCommand(orderID, a, status, fields, lineItems, req.Note)
	if err != nil {
		return s.respondError(c, err)
	}
	o, err := s.h.EditOrder.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req ChangeStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.respondError(c, err)
	}

	command, err := commands.NewChangeOrderStatusCommand(orderID, a, target)
	if err != nil {
		return s.respondError(c, err)
	}
	if err = s.h.ChangeOrderStatus.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EditParticipants handles PUT /api/v1/orders/:id/participants.
func (s *Server) EditParticipants(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req EditParticipantsRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	participants, err := req.participants()
	if err != nil {
		return s.respondError(c, errs.NewValueIsInvalidErrorWithCause("participants", err))
	}

	command, err := commands.NewEditParticipantsCommand(orderID, a, participants)
	if err != nil {
		return s.respondError(c, err)
	}
	if err = s.h.EditParticipants.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CanOrderBeCancelled handles GET /api/v1/orders/:id/cancellable.
func (s *Server) CanOrderBeCancelled(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewCanOrderBeCancelledQuery(orderID, a)
	if err != nil {
		return s.respondError(c, err)
	}
	res, err := s.h.CanOrderBeCancelled.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, CancellableResponse{Cancellable: res.Cancellable, Reason: res.Reason})
}

// GetOrderChangeRequests handles GET /api/v1/orders/:id/change-requests.
func (s *Server) GetOrderChangeRequests(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewGetOrderChangeRequestsQuery(orderID, a)
	if err != nil {
		return s.respondError(c, err)
	}
	summaries, err := s.h.GetOrderChangeRequests.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}

	response := make([]ChangeRequestResponse, len(summaries))
	for i, summary := range summaries {
		response[i] = summaryToResponse(summary)
	}
	return c.JSON(http.StatusOK, response)
}

// GetLineItem handles GET /api/v1/orders/:id/line-items/:lineItemId.
func (s *Server) GetLineItem(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	lineItemID, err := uuidParam(c, "lineItemId")
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := queries.NewGetLineItemQuery(orderID, lineItemID, a)
	if err != nil {
		return s.respondError(c, err)
	}
	li, err := s.h.GetLineItem.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toLineItemResponse(li))
}

// ReviewChangeRequest handles POST /api/v1/change-requests/:id/reviews.
func (s *Server) ReviewChangeRequest(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	changeRequestID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var req ReviewRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	verdict := changerequest.Approved
	if req.Verdict == "reject" {
		verdict = changerequest.Rejected
	}

	command, err := commands.NewReviewChangeRequestCommand(changeRequestID, a, verdict)
	if err != nil {
		return s.respondError(c, err)
	}
	cr, err := s.h.ReviewChangeRequest.Handle(c.Request().Context(), command)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toChangeRequestResponse(cr))
}

// SaveOrderPreferences handles PUT /api/v1/organizations/:orgId/order-preferences.
func (s *Server) SaveOrderPreferences(c echo.Context) error {
	a, err := actorFromRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}
	buyerOrgID, err := uuidParam(c, "orgId")
	if err != nil {
		return s.respondError(c, err)
	}

	var req PreferencesRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	command, err := commands.NewSaveOrderPreferencesCommand(buyerOrgID, a, req.preferences())
	if err != nil {
		return s.respondError(c, err)
	}
	if err = s.h.SaveOrderPreferences.Handle(c.Request().Context(), command); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
