// Package events carries the gateway's outbound event surface: session
// transitions, order and trade reports, and query batches, published for
// downstream strategy processes. The NATS publisher is the production sink;
// the log sink serves paper runs and tests.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tradefront/ctpgate/internal/trader"
)

// Topics published under the subject prefix.
const (
	TopicConnected    = "session.connected"
	TopicDisconnected = "session.disconnected"
	TopicLogin        = "session.login"
	TopicLogout       = "session.logout"
	TopicError        = "session.error"
	TopicEntrust      = "entrust.result"
	TopicEntrustOpt   = "entrust.result_opt"
	TopicPushOrder    = "push.order"
	TopicPushOrderOpt = "push.order_opt"
	TopicPushTrade    = "push.trade"
	TopicOrders       = "batch.orders"
	TopicOrdersOpt    = "batch.orders_opt"
	TopicTrades       = "batch.trades"
	TopicPositions    = "batch.positions"
	TopicAccounts     = "batch.accounts"
)

// Envelope wraps every published payload with identity and timing.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	User      string          `json:"user"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NATSConfig configures the event publisher.
type NATSConfig struct {
	URL string
	// Prefix namespaces subjects (default "ctpgate.").
	Prefix string
	// User scopes subjects to one session.
	User string
}

// NATSSink publishes every sink callback as a JSON envelope on NATS.
// Publishing is fire-and-forget; a failed publish is logged, never propagated
// back into the session engine.
type NATSSink struct {
	nc     *nats.Conn
	prefix string
	user   string
	log    zerolog.Logger
}

// NewNATSSink connects to NATS with infinite reconnects.
func NewNATSSink(cfg NATSConfig) (*NATSSink, error) {
	nc, err := nats.Connect(
		cfg.URL,
		nats.Name("ctpgate-"+cfg.User),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "ctpgate."
	}

	log.Info().
		Str("nats_url", cfg.URL).
		Str("prefix", cfg.Prefix).
		Str("user", cfg.User).
		Msg("event sink initialized")

	return &NATSSink{
		nc:     nc,
		prefix: cfg.Prefix,
		user:   cfg.User,
		log:    log.With().Str("component", "events").Logger(),
	}, nil
}

// Close drains the connection.
func (s *NATSSink) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

func (s *NATSSink) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("failed to marshal event payload")
		return
	}

	env := Envelope{
		ID:        uuid.New(),
		User:      s.user,
		Topic:     topic,
		Timestamp: time.Now(),
		Payload:   data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("failed to marshal event envelope")
		return
	}

	// Subject pattern: ctpgate.{user}.{topic}
	subject := fmt.Sprintf("%s%s.%s", s.prefix, s.user, topic)
	if err := s.nc.Publish(subject, raw); err != nil {
		s.log.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

type loginResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	TradingDay uint32 `json:"trading_day,omitempty"`
}

type entrustResult struct {
	Entrust *trader.Entrust `json:"entrust"`
	Error   *trader.Error   `json:"error,omitempty"`
}

func (s *NATSSink) OnConnected() {
	s.publish(TopicConnected, struct{}{})
}

func (s *NATSSink) OnDisconnected(reason int) {
	s.publish(TopicDisconnected, map[string]int{"reason": reason})
}

func (s *NATSSink) OnLoggedOut() {
	s.publish(TopicLogout, struct{}{})
}

func (s *NATSSink) OnLoginResult(success bool, msg string, tradingDay uint32) {
	s.publish(TopicLogin, loginResult{Success: success, Message: msg, TradingDay: tradingDay})
}

func (s *NATSSink) OnEntrust(e *trader.Entrust, err *trader.Error) {
	s.publish(TopicEntrust, entrustResult{Entrust: e, Error: err})
}

func (s *NATSSink) OnEntrustOpt(e *trader.Entrust, err *trader.Error) {
	s.publish(TopicEntrustOpt, entrustResult{Entrust: e, Error: err})
}

func (s *NATSSink) OnTraderError(err *trader.Error) {
	s.publish(TopicError, err)
}

func (s *NATSSink) OnOrders(orders []*trader.OrderInfo) {
	s.publish(TopicOrders, orders)
}

func (s *NATSSink) OnTrades(trades []*trader.TradeInfo) {
	s.publish(TopicTrades, trades)
}

func (s *NATSSink) OnPositions(positions []*trader.PositionItem) {
	s.publish(TopicPositions, positions)
}

func (s *NATSSink) OnAccounts(accounts []*trader.AccountInfo) {
	s.publish(TopicAccounts, accounts)
}

func (s *NATSSink) OnOrdersOpt(orders []*trader.OrderInfo) {
	s.publish(TopicOrdersOpt, orders)
}

func (s *NATSSink) OnPushOrder(order *trader.OrderInfo) {
	s.publish(TopicPushOrder, order)
}

func (s *NATSSink) OnPushOrderOpt(order *trader.OrderInfo) {
	s.publish(TopicPushOrderOpt, order)
}

func (s *NATSSink) OnPushTrade(trade *trader.TradeInfo) {
	s.publish(TopicPushTrade, trade)
}
