package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/invobase/invobase/internal/config"
	"github.com/invobase/invobase/internal/domain/invoice"
	"github.com/invobase/invobase/internal/email"
	"github.com/invobase/invobase/internal/logger"
	"github.com/invobase/invobase/internal/pubsub/router"
	"github.com/invobase/invobase/internal/service"
	"github.com/invobase/invobase/internal/types"
)

// Handler consumes invoice lifecycle events and sends client-facing
// email. Delivery is at-least-once: a returned error triggers the
// router's retry policy, so the handler only fails for transient causes.
// Events for tenants whose plan lacks the email feature are acked and
// skipped, not retried.
type Handler struct {
	sender       email.Sender
	entitlements service.EntitlementService
	logger       *logger.Logger
}

func NewHandler(
	sender email.Sender,
	entitlements service.EntitlementService,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		sender:       sender,
		entitlements: entitlements,
		logger:       logger,
	}
}

// Register attaches the handler to the notification topic.
func (h *Handler) Register(r *router.Router, cfg *config.Configuration, subscriber message.Subscriber) {
	r.AddNoPublishHandler(
		"invoice_email_notifications",
		cfg.Notification.Topic,
		subscriber,
		h.Handle,
	)
}

// Handle processes a single event message.
func (h *Handler) Handle(msg *message.Message) error {
	var event types.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// malformed payloads will never parse; drop instead of retrying
		h.logger.Errorw("dropping malformed event message",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	switch event.EventName {
	case types.EventInvoiceCreated, types.EventInvoicePaid:
		return h.handleInvoiceEvent(msg.Context(), &event)
	default:
		h.logger.Debugw("ignoring event",
			"event_name", event.EventName,
			"event_id", event.ID,
		)
		return nil
	}
}

func (h *Handler) handleInvoiceEvent(ctx context.Context, event *types.Event) error {
	var inv invoice.Invoice
	if err := json.Unmarshal(event.Payload, &inv); err != nil {
		h.logger.Errorw("dropping event with malformed invoice payload",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	if !h.sender.IsEnabled() {
		h.logger.Debugw("email sending disabled, skipping notification",
			"event_id", event.ID,
			"invoice_id", inv.ID,
		)
		return nil
	}

	if inv.ClientEmail == "" {
		h.logger.Debugw("invoice has no client email, skipping notification",
			"event_id", event.ID,
			"invoice_id", inv.ID,
		)
		return nil
	}

	scope := types.NewTenantScope(event.TenantID, types.RoleMember)
	enabled, err := h.entitlements.TenantHasFeature(ctx, scope, types.FeatureEmailInvoices)
	if err != nil {
		return err
	}
	if !enabled {
		h.logger.Debugw("tenant plan does not include email notifications",
			"event_id", event.ID,
			"tenant_id", event.TenantID,
		)
		return nil
	}

	subject, html, text := h.composeInvoiceEmail(event.EventName, &inv)

	id, err := h.sender.Send(ctx, inv.ClientEmail, subject, html, text)
	if err != nil {
		return err
	}

	h.logger.Infow("sent invoice notification",
		"event_id", event.ID,
		"event_name", event.EventName,
		"invoice_id", inv.ID,
		"tenant_id", event.TenantID,
		"email_id", id,
	)

	return nil
}

func (h *Handler) composeInvoiceEmail(eventName string, inv *invoice.Invoice) (subject, html, text string) {
	switch eventName {
	case types.EventInvoicePaid:
		subject = fmt.Sprintf("Payment received for invoice %s", inv.InvoiceNumber)
		text = fmt.Sprintf(
			"Hi %s,\n\nWe have received your payment of %s for invoice %s. Thank you.\n",
			inv.ClientName, inv.Amount.StringFixed(2), inv.InvoiceNumber,
		)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>We have received your payment of <strong>%s</strong> for invoice <strong>%s</strong>. Thank you.</p>",
			inv.ClientName, inv.Amount.StringFixed(2), inv.InvoiceNumber,
		)
	default:
		subject = fmt.Sprintf("Invoice %s", inv.InvoiceNumber)
		text = fmt.Sprintf(
			"Hi %s,\n\nInvoice %s for %s is due on %s.\n",
			inv.ClientName, inv.InvoiceNumber, inv.Amount.StringFixed(2), inv.DueDate.Format("January 2, 2006"),
		)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>Invoice <strong>%s</strong> for <strong>%s</strong> is due on %s.</p>",
			inv.ClientName, inv.InvoiceNumber, inv.Amount.StringFixed(2), inv.DueDate.Format("January 2, 2006"),
		)
	}
	return subject, html, text
}
