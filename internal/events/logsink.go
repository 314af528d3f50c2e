package events

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tradefront/ctpgate/internal/trader"
)

// LogSink writes every sink callback to the structured log. Used for paper
// runs without a message bus.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: log.With().Str("component", "sink").Logger()}
}

func (s *LogSink) OnConnected() {
	s.log.Info().Msg("connected")
}

func (s *LogSink) OnDisconnected(reason int) {
	s.log.Warn().Int("reason", reason).Msg("disconnected")
}

func (s *LogSink) OnLoggedOut() {
	s.log.Info().Msg("logged out")
}

func (s *LogSink) OnLoginResult(success bool, msg string, tradingDay uint32) {
	if success {
		s.log.Info().Uint32("trading_day", tradingDay).Msg("login succeeded")
		return
	}
	s.log.Error().Str("msg", msg).Msg("login failed")
}

func (s *LogSink) OnEntrust(e *trader.Entrust, err *trader.Error) {
	s.log.Warn().
		Str("code", e.Code).
		Str("entrust_id", e.EntrustID).
		Int("error_code", err.Code).
		Str("error", err.Msg).
		Msg("entrust rejected")
}

func (s *LogSink) OnEntrustOpt(e *trader.Entrust, err *trader.Error) {
	s.log.Warn().
		Str("code", e.Code).
		Str("entrust_id", e.EntrustID).
		Int("error_code", err.Code).
		Str("error", err.Msg).
		Msg("exec entrust rejected")
}

func (s *LogSink) OnTraderError(err *trader.Error) {
	s.log.Error().Int("error_code", err.Code).Str("error", err.Msg).Msg("trader error")
}

func (s *LogSink) OnOrders(orders []*trader.OrderInfo) {
	s.log.Info().Int("count", len(orders)).Msg("orders batch")
}

func (s *LogSink) OnTrades(trades []*trader.TradeInfo) {
	s.log.Info().Int("count", len(trades)).Msg("trades batch")
}

func (s *LogSink) OnPositions(positions []*trader.PositionItem) {
	s.log.Info().Int("count", len(positions)).Msg("positions batch")
}

func (s *LogSink) OnAccounts(accounts []*trader.AccountInfo) {
	s.log.Info().Int("count", len(accounts)).Msg("accounts batch")
}

func (s *LogSink) OnOrdersOpt(orders []*trader.OrderInfo) {
	s.log.Info().Int("count", len(orders)).Msg("exec orders batch")
}

func (s *LogSink) OnPushOrder(order *trader.OrderInfo) {
	s.log.Info().
		Str("code", order.Code).
		Str("order_id", order.OrderID).
		Str("state", string(order.State)).
		Float64("traded", order.VolTraded).
		Float64("left", order.VolLeft).
		Msg("order push")
}

func (s *LogSink) OnPushOrderOpt(order *trader.OrderInfo) {
	s.log.Info().
		Str("code", order.Code).
		Str("order_id", order.OrderID).
		Str("state", string(order.State)).
		Msg("exec order push")
}

func (s *LogSink) OnPushTrade(trade *trader.TradeInfo) {
	s.log.Info().
		Str("code", trade.Code).
		Str("trade_id", trade.TradeID).
		Float64("volume", trade.Volume).
		Float64("price", trade.Price).
		Msg("trade push")
}
