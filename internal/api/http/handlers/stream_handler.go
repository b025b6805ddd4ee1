package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/internal/watch"
	"github.com/elotech/helpdesk/pkg/util"
)

const localsUserKey = "stream_user"

// StreamHandler pushes ticket snapshots over WebSocket. Browsers cannot
// set headers on WebSocket dials, so the bearer token travels in the
// "token" query parameter and is validated before the upgrade.
type StreamHandler struct {
	tokens  *auth.TokenManager
	users   repository.UserRepository
	tickets *service.TicketService
	hub     *watch.Hub
	logger  *zap.Logger
}

// NewStreamHandler constructs handler.
func NewStreamHandler(tokens *auth.TokenManager, users repository.UserRepository, tickets *service.TicketService, hub *watch.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{tokens: tokens, users: users, tickets: tickets, hub: hub, logger: logger}
}

// Upgrade authenticates the caller and gates the protocol upgrade.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := h.tokens.ParseToken(c.Query("token"))
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}
	user, err := h.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		return util.NewUnauthorized("unknown account")
	}
	c.Locals(localsUserKey, user)
	return c.Next()
}

// WatchTicket GET /ws/tickets/:id streams one ticket's snapshots.
func (h *StreamHandler) WatchTicket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals(localsUserKey).(*domain.User)
		if !ok {
			_ = conn.Close()
			return
		}
		ticketID := conn.Params("id")

		// Ownership check plus the initial snapshot in one read.
		snapshot, err := h.tickets.GetTicket(context.Background(), user, ticketID)
		if err != nil {
			h.closeWithError(conn, err)
			return
		}

		sub := h.hub.SubscribeTicket(ticketID)
		defer sub.Cancel()

		if err := conn.WriteJSON(dto.SnapshotResponseFrom(snapshot)); err != nil {
			return
		}
		h.pump(conn, sub, user)
	})
}

// WatchTickets GET /ws/tickets streams every ticket for admins and the
// caller's own tickets otherwise.
func (h *StreamHandler) WatchTickets() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals(localsUserKey).(*domain.User)
		if !ok {
			_ = conn.Close()
			return
		}

		var sub *watch.Subscription
		if user.IsAdmin() {
			sub = h.hub.SubscribeAll()
		} else {
			sub = h.hub.SubscribeRequester(user.ID)
		}
		defer sub.Cancel()

		h.pump(conn, sub, user)
	})
}

// pump forwards snapshots until the client goes away. A reader goroutine
// drains control frames so close is noticed promptly.
func (h *StreamHandler) pump(conn *websocket.Conn, sub *watch.Subscription, user *domain.User) {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			if !user.IsAdmin() {
				snapshot = snapshot.WithoutInternal()
			}
			if err := conn.WriteJSON(dto.SnapshotResponseFrom(&snapshot)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *StreamHandler) closeWithError(conn *websocket.Conn, err error) {
	domainErr := util.ToDomainError(err)
	_ = conn.WriteJSON(fiber.Map{"error": fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}})
	_ = conn.Close()
	if h.logger != nil && domainErr.HTTPStatus >= 500 {
		h.logger.Warn("stream rejected", zap.Error(err))
	}
}
