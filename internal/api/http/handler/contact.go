package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/service/contact"
	"github.com/willsigmon/boppa/pkg/reqctx"
)

const (
	MsgContactReceived   = "Contact message received successfully"
	MsgInvalidBody       = "Invalid request body"
	MsgInvalidID         = "Invalid ID format"
	MsgContactNotFound   = "Contact message not found"
	MsgListContactFailed = "An error occurred while retrieving contact messages"
	MsgGetContactFailed  = "An error occurred while retrieving the contact message"
)

type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type submitContactResponse struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	var req schema.InsertContactMessage
	if err := c.Bind().JSON(&req); err != nil {
		verr, ok := schema.TypeMismatch(err)
		if !ok {
			return badRequest(c, MsgInvalidBody)
		}
		// Report the remaining fields too, not just the mistyped one.
		if _, perr := schema.ParseInsertContactMessage(req); perr != nil {
			var rest *schema.ValidationError
			if errors.As(perr, &rest) {
				verr.Merge(rest)
			}
		}
		return validationFailed(c, verr)
	}

	msg, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return validationFailed(c, verr)
		}
		slog.ErrorContext(c.Context(), "contact: submit failed", "err", err)
		return internalError(c, MsgInternal)
	}

	return created(c, MsgContactReceived, submitContactResponse{ID: msg.ID, CreatedAt: msg.CreatedAt})
}

// List handles GET /api/contact.
func (h *ContactHandler) List(c fiber.Ctx) error {
	msgs, err := h.svc.List(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "contact: list failed", "err", err)
		return internalError(c, MsgListContactFailed)
	}
	logInboxRead(c, "count", len(msgs))
	return ok(c, msgs)
}

// Get handles GET /api/contact/:id.
func (h *ContactHandler) Get(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, MsgInvalidID)
	}

	msg, err := h.svc.Get(c.Context(), id)
	switch {
	case errors.Is(err, contact.ErrNotFound):
		return notFound(c, MsgContactNotFound)
	case err != nil:
		slog.ErrorContext(c.Context(), "contact: get failed", "id", id, "err", err)
		return internalError(c, MsgGetContactFailed)
	}
	logInboxRead(c, "id", id)
	return ok(c, msg)
}

// logInboxRead records which admin read visitor data. Nothing is logged
// when admin auth is disabled.
func logInboxRead(c fiber.Ctx, args ...any) {
	admin, ok := reqctx.AdminUserFromContext(c.Context())
	if !ok {
		return
	}
	slog.InfoContext(c.Context(), "contact: inbox read", append([]any{"admin", admin, "path", c.Path()}, args...)...)
}
