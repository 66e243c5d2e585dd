// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package poolapi exposes the engine operations over HTTP.
package poolapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/api/restutil"
	"github.com/streampool/streampool/pool"
	"github.com/streampool/streampool/pool/reverts"
)

// PoolAPI REST interface of one pool instance.
type PoolAPI struct {
	engine *pool.Pool
	now    func() uint64
}

func New(engine *pool.Pool) *PoolAPI {
	return &PoolAPI{
		engine: engine,
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetNowFunc overrides the wall clock, for tests.
func (p *PoolAPI) SetNowFunc(now func() uint64) {
	p.now = now
}

// timeOrNow picks the explicit operation time, falling back to the clock.
func (p *PoolAPI) timeOrNow(t uint64) uint64 {
	if t == 0 {
		return p.now()
	}
	return t
}

// convertError maps engine reverts to bad requests; anything else is an
// internal error.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if reverts.IsRevertErr(err) {
		return restutil.BadRequest(err)
	}
	return err
}

func (p *PoolAPI) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status, err := p.engine.Status()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Status{
		Initialized: status.Initialized,
		StakedToken: status.StakedToken,
		ShareToken:  status.ShareToken,
		Treasury:    status.Treasury,
		TokenAdmin:  status.TokenAdmin,
		TotalStaked: toDecimal(status.TotalStaked),
	})
}

func (p *PoolAPI) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	tokens, err := p.engine.RewardTokens()
	if err != nil {
		return err
	}
	list := make([]*RewardToken, 0, len(tokens))
	for _, t := range tokens {
		list = append(list, &RewardToken{Address: t.Address, Whitelisted: t.Whitelisted})
	}
	return restutil.WriteJSON(w, list)
}

func (p *PoolAPI) handleGetTokenDetail(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return restutil.BadRequest(err)
	}
	whitelisted, err := p.engine.IsWhitelisted(addr)
	if err != nil {
		return err
	}
	stream, err := p.engine.StreamOf(addr)
	if err != nil {
		return err
	}
	available, escrowed, err := p.engine.OutstandingRewards(addr)
	if err != nil {
		return err
	}

	detail := &TokenDetail{
		Address:     addr,
		Whitelisted: whitelisted,
		Escrowed:    toDecimal(escrowed),
		Available:   toDecimal(available),
	}
	if stream.Exists() {
		detail.Stream = &StreamDetail{
			Total:         toDecimal(stream.Total),
			Vested:        toDecimal(stream.Vested),
			Start:         stream.Start,
			End:           stream.End,
			RatePerSecond: toDecimal(stream.RatePerSecond()),
		}
	}
	return restutil.WriteJSON(w, detail)
}

func (p *PoolAPI) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress(mux.Vars(req)["participant"])
	if err != nil {
		return restutil.BadRequest(err)
	}
	staked, err := p.engine.StakedBalance(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Participant{
		Address: addr,
		Staked:  toDecimal(staked),
	})
}

func (p *PoolAPI) handleGetClaimable(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	participant, err := restutil.ParseAddress(vars["participant"])
	if err != nil {
		return restutil.BadRequest(err)
	}
	rewardToken, err := restutil.ParseAddress(vars["token"])
	if err != nil {
		return restutil.BadRequest(err)
	}

	at := p.now()
	if raw := req.URL.Query().Get("time"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "time"))
		}
		at = parsed
	}

	amount, err := p.engine.ClaimableRewards(participant, rewardToken, at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Claimable{
		Token:  rewardToken,
		Amount: toDecimal(amount),
	})
}

func (p *PoolAPI) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.Stake(body.Caller, fromDecimal(body.Amount), p.timeOrNow(body.Time)); err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"staked": body.Amount})
}

func (p *PoolAPI) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body UnstakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.Unstake(body.Caller, fromDecimal(body.Amount), body.To, p.timeOrNow(body.Time)); err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"unstaked": body.Amount})
}

func (p *PoolAPI) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amounts, err := p.engine.ClaimRewards(body.Caller, body.Tokens, body.To, p.timeOrNow(body.Time))
	if err != nil {
		return convertError(err)
	}
	result := &ClaimResult{Amounts: make([]*math.HexOrDecimal256, 0, len(amounts))}
	for _, amount := range amounts {
		result.Amounts = append(result.Amounts, toDecimal(amount))
	}
	return restutil.WriteJSON(w, result)
}

func (p *PoolAPI) handleAccrue(w http.ResponseWriter, req *http.Request) error {
	var body AccrueRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.AccrueRewards(body.Token, p.timeOrNow(body.Time)); err != nil {
		return convertError(err)
	}
	stream, err := p.engine.StreamOf(body.Token)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &StreamDetail{
		Total:         toDecimal(stream.Total),
		Vested:        toDecimal(stream.Vested),
		Start:         stream.Start,
		End:           stream.End,
		RatePerSecond: toDecimal(stream.RatePerSecond()),
	})
}

func (p *PoolAPI) handleWhitelist(w http.ResponseWriter, req *http.Request) error {
	var body WhitelistRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.WhitelistToken(body.Caller, body.Token); err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"whitelisted": body.Token})
}

func (p *PoolAPI) handleDisable(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return restutil.BadRequest(err)
	}
	var body WhitelistRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.UnwhitelistToken(body.Caller, addr); err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"unwhitelisted": addr})
}

func (p *PoolAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetStatus))
	sub.Path("/tokens").
		Methods(http.MethodGet).
		Name("GET /pool/tokens").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetTokens))
	sub.Path("/tokens").
		Methods(http.MethodPost).
		Name("POST /pool/tokens").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleWhitelist))
	sub.Path("/tokens/{token}").
		Methods(http.MethodGet).
		Name("GET /pool/tokens/{token}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetTokenDetail))
	sub.Path("/tokens/{token}/disable").
		Methods(http.MethodPost).
		Name("POST /pool/tokens/{token}/disable").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleDisable))
	sub.Path("/participants/{participant}").
		Methods(http.MethodGet).
		Name("GET /pool/participants/{participant}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetParticipant))
	sub.Path("/participants/{participant}/rewards/{token}").
		Methods(http.MethodGet).
		Name("GET /pool/participants/{participant}/rewards/{token}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetClaimable))
	sub.Path("/stakes").
		Methods(http.MethodPost).
		Name("POST /pool/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleStake))
	sub.Path("/unstakes").
		Methods(http.MethodPost).
		Name("POST /pool/unstakes").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleUnstake))
	sub.Path("/claims").
		Methods(http.MethodPost).
		Name("POST /pool/claims").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleClaim))
	sub.Path("/accruals").
		Methods(http.MethodPost).
		Name("POST /pool/accruals").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleAccrue))
}
