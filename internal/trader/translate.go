package trader

import (
	"strconv"
	"strings"
	"time"

	"github.com/tradefront/ctpgate/internal/ctp"
)

// Enum mapping tables between the wire alphabet and the domain model. The
// long/short convention: buy+open and sell+close work toward a long book,
// sell+open and buy+close toward a short one.

func wrapDirection(d Direction, off OffsetType) byte {
	if d == DirectionLong {
		if off == OffsetOpen {
			return ctp.DirBuy
		}
		return ctp.DirSell
	}
	if off == OffsetOpen {
		return ctp.DirSell
	}
	return ctp.DirBuy
}

func unwrapDirection(dir, off byte) Direction {
	if dir == ctp.DirBuy {
		if off == ctp.OffsetOpen {
			return DirectionLong
		}
		return DirectionShort
	}
	if off == ctp.OffsetOpen {
		return DirectionShort
	}
	return DirectionLong
}

func wrapPosDir(d Direction) byte {
	switch d {
	case DirectionLong:
		return ctp.PosiLong
	case DirectionShort:
		return ctp.PosiShort
	default:
		return ctp.PosiNet
	}
}

func unwrapPosDir(b byte) Direction {
	switch b {
	case ctp.PosiLong:
		return DirectionLong
	case ctp.PosiShort:
		return DirectionShort
	default:
		return DirectionNet
	}
}

// unwrapPosDirection collapses the net direction to short; position rows are
// always reported long or short.
func unwrapPosDirection(b byte) Direction {
	if b == ctp.PosiLong {
		return DirectionLong
	}
	return DirectionShort
}

func wrapOffset(o OffsetType) byte {
	switch o {
	case OffsetOpen:
		return ctp.OffsetOpen
	case OffsetClose:
		return ctp.OffsetClose
	case OffsetCloseToday:
		return ctp.OffsetCloseToday
	case OffsetCloseYesterday:
		// The front has no close-yesterday flag; a plain close reaches the
		// prior-day lots.
		return ctp.OffsetClose
	default:
		return ctp.OffsetForceClose
	}
}

func unwrapOffset(b byte) OffsetType {
	switch b {
	case ctp.OffsetOpen:
		return OffsetOpen
	case ctp.OffsetClose:
		return OffsetClose
	case ctp.OffsetCloseToday:
		return OffsetCloseToday
	default:
		return OffsetForceClose
	}
}

func wrapPriceType(p PriceType, isCFFEX bool) byte {
	switch p {
	case PriceAny:
		// CFFEX rejects bare market orders; five-level is its equivalent.
		if isCFFEX {
			return ctp.PriceFiveLevel
		}
		return ctp.PriceAny
	case PriceLimit:
		return ctp.PriceLimit
	case PriceBest:
		return ctp.PriceBest
	default:
		return ctp.PriceLast
	}
}

func unwrapPriceType(b byte) PriceType {
	switch b {
	case ctp.PriceAny, ctp.PriceFiveLevel:
		return PriceAny
	case ctp.PriceLimit:
		return PriceLimit
	case ctp.PriceBest:
		return PriceBest
	default:
		return PriceLast
	}
}

func wrapTimeCondition(tc TimeCondition) byte {
	switch tc {
	case TimeIOC:
		return ctp.TimeIOC
	case TimeGFD:
		return ctp.TimeGFD
	default:
		return ctp.TimeGFS
	}
}

func unwrapTimeCondition(b byte) TimeCondition {
	switch b {
	case ctp.TimeIOC:
		return TimeIOC
	case ctp.TimeGFD:
		return TimeGFD
	default:
		return TimeGFS
	}
}

// wrapOrderState adopts the wire status byte directly; only the unknown
// marker is normalized to the most conservative state.
func wrapOrderState(status byte) OrderState {
	if status == ctp.StatusUnknown {
		return StateSubmitting
	}
	return OrderState(status)
}

func wrapActionFlag(f ActionFlag) byte {
	if f == ActionCancel {
		return ctp.ActionDelete
	}
	return ctp.ActionModify
}

func makeError(rsp *ctp.RspInfo) *Error {
	if rsp == nil {
		return &Error{}
	}
	return &Error{Code: rsp.ErrorID, Msg: rsp.ErrorMsg}
}

// parseClock turns "HH:MM:SS" (or already-bare digits) into HHMMSS.
func parseClock(s string) uint32 {
	s = strings.ReplaceAll(s, ":", "")
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}

func parseDate(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}

// makeTime combines a YYYYMMDD date and HHMMSS clock into a local time.
func makeTime(date, clock uint32) time.Time {
	if date == 0 {
		return time.Time{}
	}
	return time.Date(
		int(date/10000), time.Month(date/100%100), int(date%100),
		int(clock/10000), int(clock/100%100), int(clock%100),
		0, time.Local,
	)
}

// makeOrderInfo translates an order report. Returns nil when the instrument
// cannot be resolved; the caller skips such rows instead of failing the
// batch.
func (t *Trader) makeOrderInfo(o *ctp.Order) *OrderInfo {
	contract := t.bd.Contract(o.InstrumentID, o.ExchangeID)
	if contract == nil {
		return nil
	}

	ret := &OrderInfo{
		Code:      o.InstrumentID,
		Exchange:  contract.Exchange,
		Volume:    float64(o.VolumeTotalOriginal),
		Price:     o.LimitPrice,
		Direction: unwrapDirection(o.Direction, o.CombOffsetFlag),
		Offset:    unwrapOffset(o.CombOffsetFlag),
		PriceType: unwrapPriceType(o.OrderPriceType),
		TimeCond:  unwrapTimeCondition(o.TimeCondition),
		VolTraded: float64(o.VolumeTraded),
		VolLeft:   float64(o.VolumeTotal),
		State:     wrapOrderState(o.OrderStatus),
		StateMsg:  o.StatusMsg,
		OrderID:   o.OrderSysID,
	}

	ret.OrderDate = parseDate(o.InsertDate)
	ret.OrderTime = makeTime(ret.OrderDate, parseClock(o.InsertTime))

	if o.OrderSubmitStatus >= ctp.SubmitInsertRejected {
		ret.IsError = true
	}

	ret.EntrustID = EncodeEntrustID(o.FrontID, o.SessionID, parseRef(o.OrderRef))
	t.resolveUserTag(ret)
	return ret
}

// makeExecOrderInfo translates an execution order report.
func (t *Trader) makeExecOrderInfo(o *ctp.ExecOrder) *OrderInfo {
	contract := t.bd.Contract(o.InstrumentID, o.ExchangeID)
	if contract == nil {
		return nil
	}

	ret := &OrderInfo{
		Code:      o.InstrumentID,
		Exchange:  contract.Exchange,
		Business:  BusinessExecute,
		Volume:    float64(o.Volume),
		Direction: unwrapPosDir(o.PosiDirection),
		Offset:    unwrapOffset(o.OffsetFlag),
		State:     StateNotTouched,
		StateMsg:  o.StatusMsg,
		OrderID:   o.ExecOrderSysID,
	}

	ret.OrderDate = parseDate(o.InsertDate)
	ret.OrderTime = makeTime(ret.OrderDate, parseClock(o.InsertTime))

	if o.OrderSubmitStatus >= ctp.SubmitInsertRejected {
		ret.IsError = true
		ret.State = StateCanceled
	}

	ret.EntrustID = EncodeEntrustID(o.FrontID, o.SessionID, parseRef(o.ExecOrderRef))
	t.resolveUserTag(ret)
	return ret
}

// resolveUserTag looks up the persisted caller tag for an order's entrust id,
// falling back to the id itself, and writes the order-id mapping through for
// later fill resolution.
func (t *Trader) resolveUserTag(o *OrderInfo) {
	tag := t.store.Read(sectionEntrusts, o.EntrustID, "")
	if tag == "" {
		o.UserTag = o.EntrustID
		return
	}
	o.UserTag = tag
	if len(o.OrderID) > 0 {
		t.store.Write(sectionOrders, strings.TrimSpace(o.OrderID), tag)
	}
}

// makeEntrust rebuilds the domain entrust an insert rejection refers to.
func (t *Trader) makeEntrust(in *ctp.InputOrder) *Entrust {
	contract := t.bd.Contract(in.InstrumentID, in.ExchangeID)
	if contract == nil {
		return nil
	}

	e := &Entrust{
		Code:      in.InstrumentID,
		Exchange:  contract.Exchange,
		Volume:    float64(in.VolumeTotalOriginal),
		Price:     in.LimitPrice,
		Direction: unwrapDirection(in.Direction, in.CombOffsetFlag),
		Offset:    unwrapOffset(in.CombOffsetFlag),
		PriceType: unwrapPriceType(in.OrderPriceType),
		TimeCond:  unwrapTimeCondition(in.TimeCondition),
	}
	e.EntrustID = EncodeEntrustID(t.frontID, t.sessionID, parseRef(in.OrderRef))
	e.UserTag = t.store.Read(sectionEntrusts, e.EntrustID, "")
	return e
}

// makeExecEntrust rebuilds the domain entrust an execution order rejection
// refers to.
func (t *Trader) makeExecEntrust(in *ctp.InputExecOrder) *Entrust {
	contract := t.bd.Contract(in.InstrumentID, in.ExchangeID)
	if contract == nil {
		return nil
	}

	e := &Entrust{
		Code:      in.InstrumentID,
		Exchange:  contract.Exchange,
		Volume:    float64(in.Volume),
		Business:  BusinessExecute,
		Direction: unwrapPosDir(in.PosiDirection),
		Offset:    unwrapOffset(in.OffsetFlag),
	}
	e.EntrustID = EncodeEntrustID(t.frontID, t.sessionID, parseRef(in.ExecOrderRef))
	e.UserTag = t.store.Read(sectionEntrusts, e.EntrustID, "")
	return e
}

// makeTradeInfo translates a fill report. Returns nil when the instrument
// cannot be resolved.
func (t *Trader) makeTradeInfo(tr *ctp.Trade) *TradeInfo {
	contract := t.bd.Contract(tr.InstrumentID, tr.ExchangeID)
	if contract == nil {
		return nil
	}
	comm := t.bd.Commodity(contract)
	if comm == nil {
		return nil
	}

	ret := &TradeInfo{
		Code:      tr.InstrumentID,
		Exchange:  comm.Exchange,
		TradeID:   tr.TradeID,
		RefOrder:  tr.OrderSysID,
		Volume:    float64(tr.Volume),
		Price:     tr.Price,
		Direction: unwrapDirection(tr.Direction, tr.OffsetFlag),
		Offset:    unwrapOffset(tr.OffsetFlag),
		TradeType: tr.TradeType,
	}

	ret.TradeDate = parseDate(tr.TradeDate)
	ret.TradeTime = makeTime(ret.TradeDate, parseClock(tr.TradeTime))
	ret.Amount = float64(comm.VolScale) * ret.Volume * ret.Price

	ret.UserTag = t.store.Read(sectionOrders, strings.TrimSpace(ret.RefOrder), "")
	return ret
}

// makeAccountInfo translates the account snapshot.
func (t *Trader) makeAccountInfo(a *ctp.TradingAccount) *AccountInfo {
	acct := &AccountInfo{
		Description:      t.cfg.Broker + "-" + t.cfg.User,
		Currency:         "CNY",
		PreBalance:       a.PreBalance,
		CloseProfit:      a.CloseProfit,
		DynProfit:        a.PositionProfit,
		Margin:           a.CurrMargin,
		Available:        a.Available,
		Commission:       a.Commission,
		FrozenMargin:     a.FrozenMargin,
		FrozenCommission: a.FrozenCommission,
		Deposit:          a.Deposit,
		Withdraw:         a.Withdraw,
	}
	acct.Balance = acct.PreBalance + acct.CloseProfit - acct.Commission + acct.Deposit - acct.Withdraw
	return acct
}
