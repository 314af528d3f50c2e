package trader

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/tradefront/ctpgate/internal/bdata"
	"github.com/tradefront/ctpgate/internal/ctp"
	"github.com/tradefront/ctpgate/internal/tagstore"
)

// Tag store namespaces. Pending entrusts are keyed by correlation token,
// acknowledged orders by exchange order id.
const (
	sectionEntrusts = "entrusts"
	sectionOrders   = "orders"
)

// Circuit breaker settings for requests to the trading front. The front
// rejects in bursts when its request queue saturates; backing off beats
// hammering it.
const (
	frontMinRequests     = 5
	frontFailureRatio    = 0.6
	frontOpenTimeout     = 10 * time.Second
	frontHalfOpenMaxReqs = 3
	frontCountInterval   = 10 * time.Second
)

// Config carries the session credentials and transport parameters.
type Config struct {
	Broker   string
	User     string
	Password string

	// AppID and AuthCode enable the terminal authentication handshake before
	// login. Leave both empty for brokers that skip it.
	AppID    string
	AuthCode string

	Front   string
	FlowDir string
	// DataDir is where the per-user tag store lives.
	DataDir string
	// Quick subscribes streams from the latest message instead of replaying
	// the day's backlog.
	Quick bool
}

// Trader drives one logical session against a trading front: the
// connect/authenticate/login/settlement handshake, the serialized query
// dispatcher, order and execution order entry, and translation of every
// inbound report into the domain model pushed at the Sink.
type Trader struct {
	cfg     Config
	driver  ctp.Driver
	sink    Sink
	bd      bdata.Provider
	store   *tagstore.Store
	log     zerolog.Logger
	breaker *gobreaker.CircuitBreaker
	queries *queryQueue

	mu         sync.Mutex
	state      State
	frontID    uint32
	sessionID  uint32
	tradingDay uint32
	orderRef   uint32

	reqMu     sync.Mutex
	requestID int

	wg sync.WaitGroup

	// Query batch accumulators. Touched only by the event worker goroutine.
	posAgg     *positionAggregator
	orderBatch []*OrderInfo
	tradeBatch []*TradeInfo
	acctBatch  []*AccountInfo
	execBatch  []*OrderInfo
}

// New assembles a Trader over the given driver and sink. The tag store is
// opened immediately; day rollover happens at login when the trading day is
// known.
func New(cfg Config, driver ctp.Driver, sink Sink, bd bdata.Provider) (*Trader, error) {
	store, err := tagstore.Open(cfg.DataDir, cfg.Broker, cfg.User)
	if err != nil {
		return nil, fmt.Errorf("failed to open tag store: %w", err)
	}

	t := &Trader{
		cfg:     cfg,
		driver:  driver,
		sink:    sink,
		bd:      bd,
		store:   store,
		log:     log.With().Str("component", "trader").Str("user", cfg.User).Logger(),
		queries: newQueryQueue(),
		posAgg:  newPositionAggregator(bd),
	}

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "trading-front",
		MaxRequests: frontHalfOpenMaxReqs,
		Interval:    frontCountInterval,
		Timeout:     frontOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= frontMinRequests && failureRatio >= frontFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return t, nil
}

// State reports the current session lifecycle state.
func (t *Trader) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TradingDay reports the exchange-assigned business date once logged in.
func (t *Trader) TradingDay() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tradingDay
}

// Connect establishes the transport and starts the event worker. Login is a
// separate step; callers usually chain it from the Sink's OnConnected.
func (t *Trader) Connect() error {
	if t.driver == nil {
		return ErrNoTransport
	}
	if err := t.driver.Connect(ctp.ConnectOptions{
		Front:   t.cfg.Front,
		FlowDir: t.cfg.FlowDir,
		Quick:   t.cfg.Quick,
	}); err != nil {
		return fmt.Errorf("failed to connect front %s: %w", t.cfg.Front, err)
	}

	t.wg.Add(1)
	go t.run()

	t.log.Info().Str("front", t.cfg.Front).Bool("quick", t.cfg.Quick).Msg("transport connecting")
	return nil
}

// Close releases the transport, waits for the event worker, and closes the
// tag store.
func (t *Trader) Close() error {
	t.queries.reset()
	if t.driver != nil {
		if err := t.driver.Release(); err != nil {
			t.log.Error().Err(err).Msg("driver release failed")
		}
		t.wg.Wait()
	}
	t.resetBatches()
	return t.store.Close()
}

// Login starts the authentication/login handshake. The outcome arrives at the
// Sink's OnLoginResult.
func (t *Trader) Login() error {
	if t.driver == nil {
		return ErrNoTransport
	}

	t.mu.Lock()
	if t.state != StateNotLoggedIn && t.state != StateLoginFailed {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("login not possible in state %s", state)
	}
	authed := t.cfg.AppID != "" && t.cfg.AuthCode != ""
	if authed {
		t.state = StateAuthenticating
	} else {
		t.state = StateLoggingIn
	}
	t.mu.Unlock()

	if authed {
		return t.authenticate()
	}
	return t.doLogin()
}

// Logout tears down the logical session; the transport stays up.
func (t *Trader) Logout() error {
	if t.driver == nil {
		return ErrNoTransport
	}
	req := &ctp.ReqUserLogout{BrokerID: t.cfg.Broker, UserID: t.cfg.User}
	return t.request(func() error {
		return t.driver.ReqUserLogout(req, t.nextRequestID())
	})
}

// GenEntrustID mints the next correlation token for this session. Requires a
// live session: the token embeds the front and session ids assigned at login.
func (t *Trader) GenEntrustID() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateReady {
		return "", ErrNotReady
	}
	t.orderRef++
	return EncodeEntrustID(t.frontID, t.sessionID, t.orderRef), nil
}

// OrderInsert submits a normal order. A tagged entrust must carry an id from
// GenEntrustID; the tag is persisted before the request leaves so a fill
// arriving on another goroutine can already resolve it.
func (t *Trader) OrderInsert(e *Entrust) error {
	if e.Business != BusinessNormal {
		return ErrBusinessType
	}
	if t.State() != StateReady {
		return ErrNotReady
	}

	ref, err := t.entrustRef(e.EntrustID, e.UserTag)
	if err != nil {
		return err
	}

	req := &ctp.InputOrder{
		BrokerID:            t.cfg.Broker,
		InvestorID:          t.cfg.User,
		InstrumentID:        e.Code,
		ExchangeID:          e.Exchange,
		OrderRef:            strconv.FormatUint(uint64(ref), 10),
		OrderPriceType:      wrapPriceType(e.PriceType, e.Exchange == "CFFEX"),
		Direction:           wrapDirection(e.Direction, e.Offset),
		CombOffsetFlag:      wrapOffset(e.Offset),
		CombHedgeFlag:       ctp.HedgeSpeculation,
		LimitPrice:          e.Price,
		VolumeTotalOriginal: int(e.Volume),
		TimeCondition:       wrapTimeCondition(e.TimeCond),
		VolumeCondition:     ctp.VolumeAny,
		MinVolume:           1,
		ContingentCondition: ctp.ContingentImmediate,
		ForceCloseReason:    ctp.ForceCloseNotForced,
	}

	t.log.Info().
		Str("code", e.Code).
		Str("exchange", e.Exchange).
		Str("direction", e.Direction.String()).
		Float64("volume", e.Volume).
		Float64("price", e.Price).
		Str("entrust_id", e.EntrustID).
		Msg("submitting order")

	return t.request(func() error {
		return t.driver.ReqOrderInsert(req, t.nextRequestID())
	})
}

// OrderAction cancels or modifies a live order identified by its entrust id.
func (t *Trader) OrderAction(a *EntrustAction) error {
	if a.Business != BusinessNormal {
		return ErrBusinessType
	}
	if t.State() != StateReady {
		return ErrNotReady
	}

	frontID, sessionID, ref, err := DecodeEntrustID(a.EntrustID)
	if err != nil {
		return err
	}

	req := &ctp.InputOrderAction{
		BrokerID:     t.cfg.Broker,
		InvestorID:   t.cfg.User,
		OrderRef:     strconv.FormatUint(uint64(ref), 10),
		FrontID:      frontID,
		SessionID:    sessionID,
		ActionFlag:   wrapActionFlag(a.Flag),
		InstrumentID: a.Code,
		ExchangeID:   a.Exchange,
		OrderSysID:   a.OrderID,
		LimitPrice:   a.Price,
		VolumeChange: int(a.Volume),
	}

	return t.request(func() error {
		return t.driver.ReqOrderAction(req, t.nextRequestID())
	})
}

// OrderInsertOpt submits an execution (exercise) order against an option
// position.
func (t *Trader) OrderInsertOpt(e *Entrust) error {
	if e.Business != BusinessExecute {
		return ErrBusinessType
	}
	if t.State() != StateReady {
		return ErrNotReady
	}

	ref, err := t.entrustRef(e.EntrustID, e.UserTag)
	if err != nil {
		return err
	}

	req := &ctp.InputExecOrder{
		BrokerID:      t.cfg.Broker,
		InvestorID:    t.cfg.User,
		InstrumentID:  e.Code,
		ExchangeID:    e.Exchange,
		ExecOrderRef:  strconv.FormatUint(uint64(ref), 10),
		PosiDirection: wrapPosDir(e.Direction),
		OffsetFlag:    wrapOffset(e.Offset),
		HedgeFlag:     ctp.HedgeSpeculation,
		ActionType:    ctp.ExecActionTypeExec,
		CloseFlag:     ctp.ExecCloseFlagAuto,
		Volume:        int(e.Volume),
	}

	return t.request(func() error {
		return t.driver.ReqExecOrderInsert(req, t.nextRequestID())
	})
}

// OrderActionOpt cancels a live execution order.
func (t *Trader) OrderActionOpt(a *EntrustAction) error {
	if a.Business != BusinessExecute {
		return ErrBusinessType
	}
	if t.State() != StateReady {
		return ErrNotReady
	}

	frontID, sessionID, ref, err := DecodeEntrustID(a.EntrustID)
	if err != nil {
		return err
	}

	req := &ctp.InputExecOrderAction{
		BrokerID:       t.cfg.Broker,
		InvestorID:     t.cfg.User,
		ExecOrderRef:   strconv.FormatUint(uint64(ref), 10),
		FrontID:        frontID,
		SessionID:      sessionID,
		ActionFlag:     wrapActionFlag(a.Flag),
		InstrumentID:   a.Code,
		ExchangeID:     a.Exchange,
		ExecOrderSysID: a.OrderID,
	}

	return t.request(func() error {
		return t.driver.ReqExecOrderAction(req, t.nextRequestID())
	})
}

// QueryAccount requests the account snapshot. The batch arrives at OnAccounts.
func (t *Trader) QueryAccount() error {
	if t.State() != StateReady {
		return ErrNotReady
	}
	t.enqueueQuery("account", t.driver.ReqQryTradingAccount)
	return nil
}

// QueryPositions requests the consolidated positions. The batch arrives at
// OnPositions.
func (t *Trader) QueryPositions() error {
	if t.State() != StateReady {
		return ErrNotReady
	}
	t.enqueueQuery("positions", t.driver.ReqQryInvestorPosition)
	return nil
}

// QueryOrders requests the day's orders. The batch arrives at OnOrders.
func (t *Trader) QueryOrders() error {
	if t.State() != StateReady {
		return ErrNotReady
	}
	t.enqueueQuery("orders", t.driver.ReqQryOrder)
	return nil
}

// QueryTrades requests the day's fills. The batch arrives at OnTrades.
func (t *Trader) QueryTrades() error {
	if t.State() != StateReady {
		return ErrNotReady
	}
	t.enqueueQuery("trades", t.driver.ReqQryTrade)
	return nil
}

// QueryOrdersOpt requests the day's execution orders. The batch arrives at
// OnOrdersOpt.
func (t *Trader) QueryOrdersOpt() error {
	if t.State() != StateReady {
		return ErrNotReady
	}
	t.enqueueQuery("exec_orders", t.driver.ReqQryExecOrder)
	return nil
}

// entrustRef resolves the order reference for an outbound insert. A tag-less
// entrust burns a fresh reference; a tagged one reuses the reference encoded
// in its id and persists the tag first.
func (t *Trader) entrustRef(entrustID, userTag string) (uint32, error) {
	if entrustID == "" {
		t.mu.Lock()
		t.orderRef++
		ref := t.orderRef
		t.mu.Unlock()
		return ref, nil
	}

	_, _, ref, err := DecodeEntrustID(entrustID)
	if err != nil {
		return 0, err
	}
	if userTag != "" {
		if err := t.store.Write(sectionEntrusts, entrustID, userTag); err != nil {
			t.log.Error().Err(err).Str("entrust_id", entrustID).Msg("failed to persist user tag")
		}
	}
	return ref, nil
}

func (t *Trader) authenticate() error {
	req := &ctp.ReqAuthenticate{
		BrokerID: t.cfg.Broker,
		UserID:   t.cfg.User,
		AppID:    t.cfg.AppID,
		AuthCode: t.cfg.AuthCode,
	}
	return t.request(func() error {
		return t.driver.ReqAuthenticate(req, t.nextRequestID())
	})
}

func (t *Trader) doLogin() error {
	req := &ctp.ReqUserLogin{
		BrokerID: t.cfg.Broker,
		UserID:   t.cfg.User,
		Password: t.cfg.Password,
	}
	return t.request(func() error {
		return t.driver.ReqUserLogin(req, t.nextRequestID())
	})
}

func (t *Trader) confirm() {
	req := &ctp.SettlementInfoConfirm{BrokerID: t.cfg.Broker, InvestorID: t.cfg.User}
	if err := t.request(func() error {
		return t.driver.ReqSettlementInfoConfirm(req, t.nextRequestID())
	}); err != nil {
		t.log.Error().Err(err).Msg("settlement confirm request failed")
		t.loginFailed(err.Error())
	}
}

// queryConfirm asks whether today's settlement was already confirmed. Runs
// through the query queue like every other counter query.
func (t *Trader) queryConfirm() {
	t.enqueueQuery("settlement_confirm", t.driver.ReqQrySettlementInfoConfirm)
}

func (t *Trader) enqueueQuery(name string, send func(*ctp.QryField, int) error) {
	t.queries.push(func() {
		req := &ctp.QryField{BrokerID: t.cfg.Broker, InvestorID: t.cfg.User}
		if err := t.request(func() error {
			return send(req, t.nextRequestID())
		}); err != nil {
			t.log.Error().Err(err).Str("query", name).Msg("query dispatch failed")
			t.queries.finish()
		}
	})
}

func (t *Trader) request(send func() error) error {
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, send()
	})
	return err
}

func (t *Trader) nextRequestID() int {
	t.reqMu.Lock()
	defer t.reqMu.Unlock()
	t.requestID++
	return t.requestID
}

func (t *Trader) setState(s State) {
	t.mu.Lock()
	prev := t.state
	t.state = s
	t.mu.Unlock()
	if prev != s {
		t.log.Debug().Str("from", prev.String()).Str("to", s.String()).Msg("session state change")
	}
}

// resetSession returns to NotLoggedIn and forgets the identity the front
// assigned, so a straggler response cannot carry a stale front id, session id
// or trading day into the next login. The order ref counter survives; the
// MaxOrderRef floor re-adopts it on the next login.
func (t *Trader) resetSession() {
	t.mu.Lock()
	prev := t.state
	t.state = StateNotLoggedIn
	t.frontID = 0
	t.sessionID = 0
	t.tradingDay = 0
	t.mu.Unlock()
	if prev != StateNotLoggedIn {
		t.log.Debug().Str("from", prev.String()).Str("to", StateNotLoggedIn.String()).Msg("session state change")
	}
	t.queries.reset()
}

// sessionUp reports whether a trading session exists to attribute responses
// to. Query rows straggling in after a disconnect or login failure are
// dropped rather than delivered against reset state.
func (t *Trader) sessionUp() bool {
	switch t.State() {
	case StateLoggedIn, StateConfirmQueried, StateConfirmed, StateReady:
		return true
	}
	return false
}

func (t *Trader) loginFailed(msg string) {
	t.setState(StateLoginFailed)
	t.queries.reset()
	t.sink.OnLoginResult(false, msg, 0)
}

// run is the event worker. Every inbound callback funnels through here, so
// handlers and translators never race each other.
func (t *Trader) run() {
	defer t.wg.Done()
	for ev := range t.driver.Events() {
		t.handle(ev)
	}
}

func (t *Trader) handle(ev ctp.Event) {
	switch ev := ev.(type) {
	case ctp.FrontConnected:
		t.log.Info().Msg("front connected")
		t.sink.OnConnected()

	case ctp.FrontDisconnected:
		t.log.Warn().Int("reason", ev.Reason).Msg("front disconnected")
		t.resetSession()
		t.resetBatches()
		t.sink.OnDisconnected(ev.Reason)

	case ctp.RspAuthenticate:
		t.handleAuthenticate(ev)

	case ctp.RspLogin:
		t.handleLogin(ev)

	case ctp.RspLogout:
		t.resetSession()
		t.sink.OnLoggedOut()

	case ctp.RspQrySettlementConfirm:
		t.handleQryConfirm(ev)

	case ctp.RspSettlementConfirm:
		t.handleConfirm(ev)

	case ctp.RspOrderInsert:
		if ev.Rsp.IsError() {
			if e := t.makeEntrust(ev.Input); e != nil {
				t.sink.OnEntrust(e, makeError(ev.Rsp))
			}
		}

	case ctp.RspOrderAction:
		if ev.Rsp.IsError() {
			t.sink.OnTraderError(makeError(ev.Rsp))
		}

	case ctp.RspExecOrderInsert:
		if ev.Rsp.IsError() {
			if e := t.makeExecEntrust(ev.Input); e != nil {
				t.sink.OnEntrustOpt(e, makeError(ev.Rsp))
			}
		}

	case ctp.RspExecOrderAction:
		if ev.Rsp.IsError() {
			t.sink.OnTraderError(makeError(ev.Rsp))
		}

	case ctp.RtnOrder:
		if info := t.makeOrderInfo(ev.Order); info != nil {
			t.sink.OnPushOrder(info)
		}

	case ctp.RtnTrade:
		if info := t.makeTradeInfo(ev.Trade); info != nil {
			t.sink.OnPushTrade(info)
		}

	case ctp.RtnExecOrder:
		if info := t.makeExecOrderInfo(ev.Order); info != nil {
			t.sink.OnPushOrderOpt(info)
		}

	case ctp.RspQryOrder:
		if !t.sessionUp() {
			return
		}
		if ev.Order != nil {
			if info := t.makeOrderInfo(ev.Order); info != nil {
				t.orderBatch = append(t.orderBatch, info)
			}
		}
		if ev.IsLast {
			t.sink.OnOrders(t.orderBatch)
			t.orderBatch = nil
			t.queries.finish()
		}

	case ctp.RspQryTrade:
		if !t.sessionUp() {
			return
		}
		if ev.Trade != nil {
			if info := t.makeTradeInfo(ev.Trade); info != nil {
				t.tradeBatch = append(t.tradeBatch, info)
			}
		}
		if ev.IsLast {
			t.sink.OnTrades(t.tradeBatch)
			t.tradeBatch = nil
			t.queries.finish()
		}

	case ctp.RspQryPosition:
		if !t.sessionUp() {
			return
		}
		if ev.Position != nil {
			t.posAgg.apply(ev.Position)
		}
		if ev.IsLast {
			t.sink.OnPositions(t.posAgg.emit())
			t.queries.finish()
		}

	case ctp.RspQryAccount:
		if !t.sessionUp() {
			return
		}
		if ev.Account != nil {
			t.acctBatch = append(t.acctBatch, t.makeAccountInfo(ev.Account))
		}
		if ev.IsLast {
			t.sink.OnAccounts(t.acctBatch)
			t.acctBatch = nil
			t.queries.finish()
		}

	case ctp.RspQryExecOrder:
		if !t.sessionUp() {
			return
		}
		if ev.Order != nil {
			if info := t.makeExecOrderInfo(ev.Order); info != nil {
				t.execBatch = append(t.execBatch, info)
			}
		}
		if ev.IsLast {
			t.sink.OnOrdersOpt(t.execBatch)
			t.execBatch = nil
			t.queries.finish()
		}
	}
}

func (t *Trader) handleAuthenticate(ev ctp.RspAuthenticate) {
	if t.State() != StateAuthenticating {
		return
	}
	if ev.Rsp.IsError() {
		t.log.Error().Int("code", ev.Rsp.ErrorID).Str("msg", ev.Rsp.ErrorMsg).Msg("authentication rejected")
		t.loginFailed(ev.Rsp.ErrorMsg)
		return
	}
	t.setState(StateLoggingIn)
	if err := t.doLogin(); err != nil {
		t.log.Error().Err(err).Msg("login request failed")
		t.loginFailed(err.Error())
	}
}

func (t *Trader) handleLogin(ev ctp.RspLogin) {
	if t.State() != StateLoggingIn {
		return
	}
	if ev.Rsp.IsError() || ev.Login == nil {
		msg := "login rejected"
		if ev.Rsp != nil {
			msg = ev.Rsp.ErrorMsg
		}
		t.log.Error().Str("msg", msg).Msg("login rejected")
		t.loginFailed(msg)
		return
	}

	day := parseDate(ev.Login.TradingDay)

	t.mu.Lock()
	t.frontID = ev.Login.FrontID
	t.sessionID = ev.Login.SessionID
	t.tradingDay = day
	// The front hands back the highest reference already burned by earlier
	// sessions today; never mint below it.
	if ref := parseRef(ev.Login.MaxOrderRef); ref > t.orderRef {
		t.orderRef = ref
	}
	t.state = StateLoggedIn
	t.mu.Unlock()

	t.log.Info().
		Uint32("front_id", ev.Login.FrontID).
		Uint32("session_id", ev.Login.SessionID).
		Uint32("trading_day", day).
		Str("max_order_ref", ev.Login.MaxOrderRef).
		Msg("logged in")

	reset, err := t.store.Rollover(day, sectionEntrusts, sectionOrders)
	if err != nil {
		t.log.Error().Err(err).Msg("tag store rollover failed")
	} else if reset {
		t.log.Info().Uint32("trading_day", day).Msg("tag store rolled over to new trading day")
	}

	t.queryConfirm()
}

func (t *Trader) handleQryConfirm(ev ctp.RspQrySettlementConfirm) {
	if !t.sessionUp() {
		return
	}
	if ev.IsLast {
		t.queries.finish()
	}

	day := t.TradingDay()
	confirmed := false
	if !ev.Rsp.IsError() && ev.Confirm != nil {
		confirmed = parseDate(ev.Confirm.ConfirmDate) >= day
	}

	if confirmed {
		t.setState(StateConfirmed)
		t.setState(StateReady)
		t.sink.OnLoginResult(true, "", day)
		return
	}

	t.setState(StateConfirmQueried)
	t.confirm()
}

func (t *Trader) handleConfirm(ev ctp.RspSettlementConfirm) {
	// Only an acknowledgement we are actually waiting on advances the
	// session. A straggler after a disconnect reset must not mint Ready.
	if t.State() != StateConfirmQueried {
		return
	}
	if ev.Rsp.IsError() {
		t.log.Error().Int("code", ev.Rsp.ErrorID).Str("msg", ev.Rsp.ErrorMsg).Msg("settlement confirm rejected")
		t.loginFailed(ev.Rsp.ErrorMsg)
		return
	}
	t.setState(StateConfirmed)
	t.setState(StateReady)
	t.sink.OnLoginResult(true, "", t.TradingDay())
}

func (t *Trader) resetBatches() {
	t.orderBatch = nil
	t.tradeBatch = nil
	t.acctBatch = nil
	t.execBatch = nil
	t.posAgg = newPositionAggregator(t.bd)
}
