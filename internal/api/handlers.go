package api

import (
	"net/http"

	"TaxLedger/internal/model"
)

type tokenResponse struct {
	Name             string          `json:"name"`
	Symbol           string          `json:"symbol"`
	Decimals         uint8           `json:"decimals"`
	TotalSupply      string          `json:"total_supply"`
	Owner            model.Address   `json:"owner"`
	Contract         model.Address   `json:"contract"`
	Launch           string          `json:"launch"`
	LiquiditySources []model.Address `json:"liquidity_sources"`
}

type feesResponse struct {
	Buy           model.FeeSchedule `json:"buy"`
	Sell          model.FeeSchedule `json:"sell"`
	TotalBuy      uint64            `json:"total_buy"`
	TotalSell     uint64            `json:"total_sell"`
	EffectiveBuy  uint64            `json:"effective_buy"`
	EffectiveSell uint64            `json:"effective_sell"`
}

type limitsResponse struct {
	MaxBalancePercentage uint64 `json:"max_balance_percentage"`
	MaxTxPercentage      uint64 `json:"max_tx_percentage"`
	MaxBalance           string `json:"max_balance"`
	MaxTx                string `json:"max_tx"`
}

type bucketsResponse struct {
	Buckets map[model.Component]string `json:"buckets"`
	Pending string                     `json:"pending"`
	Burned  string                     `json:"burned"`
}

type receiptResponse struct {
	From       model.Address              `json:"from"`
	To         model.Address              `json:"to"`
	Amount     string                     `json:"amount"`
	Net        string                     `json:"net"`
	Direction  model.Direction            `json:"direction"`
	Regime     model.Regime               `json:"regime"`
	Allocation map[model.Component]string `json:"allocation,omitempty"`
}

func allocationStrings(a model.Allocation) map[model.Component]string {
	out := make(map[model.Component]string, len(a))
	for c, v := range a {
		out[c] = v.Dec()
	}
	return out
}

func toReceipt(r *model.TransferReceipt) receiptResponse {
	return receiptResponse{
		From:       r.From,
		To:         r.To,
		Amount:     r.Amount.Dec(),
		Net:        r.Net.Dec(),
		Direction:  r.Direction,
		Regime:     r.Regime,
		Allocation: allocationStrings(r.Allocation),
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	st := s.cfg.Token.Status()
	writeJSON(w, http.StatusOK, tokenResponse{
		Name:             st.Metadata.Name,
		Symbol:           st.Metadata.Symbol,
		Decimals:         st.Metadata.Decimals,
		TotalSupply:      st.TotalSupply.Dec(),
		Owner:            st.Owner,
		Contract:         st.Contract,
		Launch:           string(st.Launch),
		LiquiditySources: st.LiquiditySources,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(r.PathValue("addr"))
	writeJSON(w, http.StatusOK, map[string]string{
		"address": string(addr),
		"balance": s.cfg.Token.BalanceOf(addr).Dec(),
	})
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	owner, spender := model.Address(r.PathValue("owner")), model.Address(r.PathValue("spender"))
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":     string(owner),
		"spender":   string(spender),
		"allowance": s.cfg.Token.Allowance(owner, spender).Dec(),
	})
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	tk := s.cfg.Token
	writeJSON(w, http.StatusOK, feesResponse{
		Buy:           tk.BuyFees(),
		Sell:          tk.SellFees(),
		TotalBuy:      tk.TotalBuyTax(),
		TotalSell:     tk.TotalSellTax(),
		EffectiveBuy:  tk.EffectiveBuyTax(),
		EffectiveSell: tk.EffectiveSellTax(),
	})
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	st := s.cfg.Token.Status()
	writeJSON(w, http.StatusOK, limitsResponse{
		MaxBalancePercentage: st.MaxBalancePercentage,
		MaxTxPercentage:      st.MaxTxPercentage,
		MaxBalance:           st.MaxBalance.Dec(),
		MaxTx:                st.MaxTx.Dec(),
	})
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	st := s.cfg.Token.Status()
	writeJSON(w, http.StatusOK, bucketsResponse{
		Buckets: allocationStrings(st.Buckets),
		Pending: st.PendingFees.Dec(),
		Burned:  st.Burned.Dec(),
	})
}

type transferRequest struct {
	From   model.Address `json:"from,omitempty"`
	To     model.Address `json:"to"`
	Amount string        `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transferRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt, err := s.cfg.Token.Transfer(from, req.To, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceipt(receipt))
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	spender, err := caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transferRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt, err := s.cfg.Token.TransferFrom(spender, req.From, req.To, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceipt(receipt))
}

type approveRequest struct {
	Spender model.Address `json:"spender"`
	Amount  string        `json:"amount"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req approveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.cfg.Token.Approve(owner, req.Spender, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":     string(owner),
		"spender":   string(req.Spender),
		"allowance": amount.Dec(),
	})
}

type swapBackRequest struct {
	Router model.Address `json:"router"`
}

func (s *Server) handleSwapBack(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req swapBackRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	drained, err := s.cfg.Token.SwapBack(c, req.Router)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketsResponse{
		Buckets: allocationStrings(drained),
		Pending: s.cfg.Token.PendingFees().Dec(),
		Burned:  s.cfg.Token.Burned().Dec(),
	})
}

// ownerCall decodes the body into req when non-nil, then runs apply for the caller.
func (s *Server) ownerCall(w http.ResponseWriter, r *http.Request, req any, apply func(caller model.Address) error) {
	c, err := caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if req != nil {
		if err := decode(w, r, req); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := apply(c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuyFees(w http.ResponseWriter, r *http.Request) {
	var f model.FeeSchedule
	s.ownerCall(w, r, &f, func(c model.Address) error {
		return s.cfg.Token.SetBuyFees(c, f)
	})
}

func (s *Server) handleSellFees(w http.ResponseWriter, r *http.Request) {
	var f model.FeeSchedule
	s.ownerCall(w, r, &f, func(c model.Address) error {
		return s.cfg.Token.SetSellFees(c, f)
	})
}

type percentageRequest struct {
	Percentage uint64 `json:"percentage"`
}

func (s *Server) handleMaxBalance(w http.ResponseWriter, r *http.Request) {
	var req percentageRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.SetMaxBalancePercentage(c, req.Percentage)
	})
}

func (s *Server) handleMaxTx(w http.ResponseWriter, r *http.Request) {
	var req percentageRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.SetMaxTxPercentage(c, req.Percentage)
	})
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	s.ownerCall(w, r, nil, func(c model.Address) error {
		if err := s.cfg.Token.TriggerLaunch(c); err != nil {
			return err
		}
		if s.cfg.OnLaunch != nil {
			go s.cfg.OnLaunch()
		}
		return nil
	})
}

type toggleRequest struct {
	Address model.Address `json:"address"`
	Enabled bool          `json:"enabled"`
}

func (s *Server) handleFeeExempt(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.SetFeeExempt(c, req.Address, req.Enabled)
	})
}

func (s *Server) handleLimitExempt(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.SetLimitExempt(c, req.Address, req.Enabled)
	})
}

func (s *Server) handleLiquiditySource(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.SetLiquiditySource(c, req.Address, req.Enabled)
	})
}

type ownershipRequest struct {
	NewOwner model.Address `json:"new_owner"`
}

func (s *Server) handleOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	s.ownerCall(w, r, &req, func(c model.Address) error {
		return s.cfg.Token.TransferOwnership(c, req.NewOwner)
	})
}
