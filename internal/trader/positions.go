package trader

import (
	"fmt"
	"math"

	"github.com/tradefront/ctpgate/internal/bdata"
	"github.com/tradefront/ctpgate/internal/ctp"
)

const floatEps = 1e-8

func floatEq(a, b float64) bool { return math.Abs(a-b) < floatEps }
func floatLt(a, b float64) bool { return b-a > floatEps }

// positionAggregator merges the per-row position fragments of one query batch
// into consolidated per-(instrument, direction) records. The exchange splits
// a position across lot-age rows; margin, floating profit and cost accumulate
// across fragments while the today/prior quantities land according to the
// commodity's cover mode.
type positionAggregator struct {
	bd    bdata.Provider
	items map[string]*PositionItem
	order []string
}

func newPositionAggregator(bd bdata.Provider) *positionAggregator {
	return &positionAggregator{bd: bd, items: make(map[string]*PositionItem)}
}

func (a *positionAggregator) apply(p *ctp.InvestorPosition) {
	contract := a.bd.Contract(p.InstrumentID, p.ExchangeID)
	if contract == nil {
		return
	}
	comm := a.bd.Commodity(contract)
	if comm == nil {
		return
	}

	key := fmt.Sprintf("%s-%c", p.InstrumentID, p.PosiDirection)
	pos, ok := a.items[key]
	if !ok {
		pos = &PositionItem{
			Code:     p.InstrumentID,
			Exchange: comm.Exchange,
			Currency: comm.Currency,
		}
		a.items[key] = pos
		a.order = append(a.order, key)
	}
	pos.Direction = unwrapPosDirection(p.PosiDirection)

	if comm.CoverMode == bdata.CoverToday {
		if p.PositionDate == ctp.PositionDateToday {
			pos.NewPosition = float64(p.Position)
		} else {
			pos.PrePosition = float64(p.Position)
		}
	} else {
		pos.NewPosition = float64(p.TodayPosition)
		pos.PrePosition = float64(p.Position - p.TodayPosition)
	}

	pos.Margin += p.UseMargin
	pos.DynProfit += p.PositionProfit
	pos.PositionCost += p.PositionCost

	if pos.TotalPosition() != 0 {
		pos.AvgPrice = pos.PositionCost / pos.TotalPosition() / float64(comm.VolScale)
	} else {
		pos.AvgPrice = 0
	}

	if comm.Category != bdata.CategoryCombination {
		a.applyAvailable(pos, p, comm)
	}

	// A negative total with zero margin means the legs of a combination were
	// torn down elsewhere; any remaining availability is stale.
	if floatLt(pos.TotalPosition(), 0) && floatEq(pos.Margin, 0) {
		pos.AvailNewPos = 0
		pos.AvailPrePos = 0
	}
}

// applyAvailable computes the closable quantity per lot age by deducting the
// exchange-reported frozen counters, clamped at zero.
func (a *positionAggregator) applyAvailable(pos *PositionItem, p *ctp.InvestorPosition, comm *bdata.Commodity) {
	frozen := p.ShortFrozen
	if p.PosiDirection == ctp.PosiLong {
		frozen = p.LongFrozen
	}

	if comm.CoverMode == bdata.CoverToday {
		avail := p.Position - frozen
		if avail < 0 {
			avail = 0
		}
		if p.PositionDate == ctp.PositionDateToday {
			pos.AvailNewPos = float64(avail)
		} else {
			pos.AvailPrePos = float64(avail)
		}
		return
	}

	availNew := p.TodayPosition - frozen
	if availNew < 0 {
		availNew = 0
	}
	pos.AvailNewPos = float64(availNew)
	pos.AvailPrePos = pos.NewPosition + pos.PrePosition -
		float64(p.LongFrozen) - float64(p.ShortFrozen) -
		pos.AvailNewPos
}

// emit returns one consolidated record per key in first-seen order and
// discards the batch state.
func (a *positionAggregator) emit() []*PositionItem {
	out := make([]*PositionItem, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.items[key])
	}
	a.items = make(map[string]*PositionItem)
	a.order = nil
	return out
}
