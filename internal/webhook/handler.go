package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wenlinc/line-todo-bot/internal/observability/metrics"
	"github.com/wenlinc/line-todo-bot/pkg/logging"
)

// Handler receives LINE webhook calls, fans the event batch out through the
// dispatcher, and acknowledges once every event has settled. Per-event
// failures are logged and never surface in the HTTP status: the platform
// retries the whole batch on non-200, which would duplicate the replies that
// did succeed.
type Handler struct {
	dispatcher      *Dispatcher
	logger          *logging.Logger
	metrics         *metrics.WebhookMetrics
	deliveryTimeout time.Duration
}

type HandlerConfig struct {
	Dispatcher      *Dispatcher
	Logger          *logging.Logger
	Metrics         *metrics.WebhookMetrics
	DeliveryTimeout time.Duration
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}
	return &Handler{
		dispatcher:      cfg.Dispatcher,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		deliveryTimeout: cfg.DeliveryTimeout,
	}
}

// Handle processes one webhook call.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	events, err := ParseEvents(body)
	if err != nil {
		h.logger.Error("unparsable webhook body", "error", err)
		http.Error(w, "invalid payload", http.StatusInternalServerError)
		return
	}

	// In-flight deliveries run on a context detached from the request: a
	// client abort must not tear down sends the platform cannot observe
	// any other way.
	base := context.WithoutCancel(r.Context())
	g := new(errgroup.Group)
	for _, evt := range events {
		evt := evt
		h.metrics.ObserveInbound(evt.Kind.String())
		g.Go(func() error {
			h.process(base, evt)
			return nil
		})
	}
	_ = g.Wait()

	h.metrics.ObserveLatency(time.Since(start).Seconds())
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) process(ctx context.Context, evt Event) {
	reply := h.dispatcher.Decide(ctx, evt)
	if reply == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.deliveryTimeout)
	defer cancel()
	if err := h.dispatcher.Deliver(ctx, reply); err != nil {
		h.logger.Warn("delivery failed",
			"error", err,
			"channel", string(reply.Channel),
			"kind", evt.Kind.String(),
		)
		h.metrics.ObserveOutbound(string(reply.Channel), "error")
		return
	}
	h.metrics.ObserveOutbound(string(reply.Channel), "ok")
}
