package rpc

import "github.com/GauravKarakoti/ConwayBets/core"

// MarketView is the client-facing projection of a market. Amounts render
// as decimal strings and the state hash as lowercase hex so clients never
// parse internal encodings.
type MarketView struct {
	Key              string   `json:"key"`
	ChainID          string   `json:"chain_id"`
	ID               uint64   `json:"id"`
	Creator          string   `json:"creator"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	EndTime          uint64   `json:"end_time"`
	Outcomes         []string `json:"outcomes"`
	TotalLiquidity   string   `json:"total_liquidity"`
	OutcomeLiquidity []string `json:"outcome_liquidity"`
	IsResolved       bool     `json:"is_resolved"`
	WinningOutcome   *uint32  `json:"winning_outcome"`
	StateHash        string   `json:"state_hash"`
	SyncedHeight     uint64   `json:"synced_height"`
}

// PositionView is the client-facing projection of a user position.
type PositionView struct {
	MarketKey    string `json:"market_key"`
	OutcomeIndex uint32 `json:"outcome_index"`
	Amount       string `json:"amount"`
	StateHash    string `json:"state_hash"`
}

func marketView(m *core.Market) MarketView {
	outLiq := make([]string, len(m.OutcomeLiquidity))
	for i, a := range m.OutcomeLiquidity {
		outLiq[i] = a.String()
	}
	return MarketView{
		Key:              m.ID.Key(),
		ChainID:          m.ID.ChainID,
		ID:               m.ID.ID,
		Creator:          string(m.Creator),
		Title:            m.Title,
		Description:      m.Description,
		EndTime:          m.EndTime,
		Outcomes:         m.Outcomes,
		TotalLiquidity:   m.TotalLiquidity.String(),
		OutcomeLiquidity: outLiq,
		IsResolved:       m.IsResolved,
		WinningOutcome:   m.WinningOutcome,
		StateHash:        m.StateHash.Hex(),
		SyncedHeight:     m.SyncedHeight,
	}
}

func positionView(p core.UserPosition) PositionView {
	return PositionView{
		MarketKey:    p.MarketID.Key(),
		OutcomeIndex: p.OutcomeIndex,
		Amount:       p.Amount.String(),
		StateHash:    p.StateHash.Hex(),
	}
}
