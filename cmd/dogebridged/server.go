package main

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/managerset"
)

type server struct {
	host   *host.Host
	ids    common.ProgramIDs
	logger *slog.Logger
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/bridge/state", s.bridgeState)
		r.Get("/accounts/{pubkey}", s.account)
		r.Get("/manager-sets/{chain}/{index}", s.managerSet)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

type ringView struct {
	StartBlockHeight  uint32                             `json:"startBlockHeight"`
	CurrentIndex      uint32                             `json:"currentIndex"`
	TotalCount        uint32                             `json:"totalCount"`
	Pending           []bridge.FinalizedBlockMintTxoInfo `json:"pending"`
	ConsumingBuffer   *solana.PublicKey                  `json:"consumingBuffer,omitempty"`
	GroupsTotal       uint32                             `json:"groupsTotal"`
	GroupsRemaining   uint32                             `json:"groupsRemaining"`
	TotalPendingMints uint32                             `json:"totalPendingMints"`
}

type bridgeStateView struct {
	FinalizedHeight               uint32                       `json:"finalizedHeight"`
	FinalizedBlockHash            types.H256                   `json:"finalizedBlockHash"`
	TipHeight                     uint32                       `json:"tipHeight"`
	TipBlockHash                  types.H256                   `json:"tipBlockHash"`
	BlockMerkleTreeRoot           types.H256                   `json:"blockMerkleTreeRoot"`
	AutoClaimedTxoTreeRoot        types.H256                   `json:"autoClaimedTxoTreeRoot"`
	AutoClaimedDepositsTreeRoot   types.H256                   `json:"autoClaimedDepositsTreeRoot"`
	PausedUntilSecs               uint32                       `json:"pausedUntilSecs"`
	LastRollbackAtSecs            uint32                       `json:"lastRollbackAtSecs"`
	ReturnOutput                  bridge.ReturnTxOutput        `json:"returnOutput"`
	RequestedWithdrawalsTreeRoot  types.H256                   `json:"requestedWithdrawalsTreeRoot"`
	NextRequestedWithdrawalsIndex uint64                       `json:"nextRequestedWithdrawalsIndex"`
	NextProcessedWithdrawalsIndex uint64                       `json:"nextProcessedWithdrawalsIndex"`
	SpentDepositUtxoTreeRoot      types.H256                   `json:"spentDepositUtxoTreeRoot"`
	ManualClaimDepositsTreeRoot   types.H256                   `json:"manualClaimDepositsTreeRoot"`
	ManualClaimDepositsNextIndex  uint64                       `json:"manualClaimDepositsNextIndex"`
	WithdrawalSnapshot            bridge.WithdrawalSnapshot    `json:"withdrawalSnapshot"`
	Config                        bridge.FeeConfig             `json:"feeConfig"`
	CustodianWalletConfig         bridge.CustodianWalletConfig `json:"custodianWalletConfig"`
	FeesCollectedSats             uint64                       `json:"feesCollectedSats"`
	FeesWithdrawnSats             uint64                       `json:"feesWithdrawnSats"`
	DogeMint                      solana.PublicKey             `json:"dogeMint"`
	Operator                      solana.PublicKey             `json:"operator"`
	FeeSpender                    solana.PublicKey             `json:"feeSpender"`
	Backlog                       ringView                     `json:"backlog"`
}

func newBridgeStateView(st *bridge.BridgeState) bridgeStateView {
	ring := &st.PendingMintTxos
	view := bridgeStateView{
		FinalizedHeight:               st.Header.FinalizedState.BlockHeight,
		FinalizedBlockHash:            st.Header.FinalizedState.BlockHash,
		TipHeight:                     st.Header.TipState.BlockHeight,
		TipBlockHash:                  st.Header.TipState.BlockHash,
		BlockMerkleTreeRoot:           st.Header.FinalizedState.BlockMerkleTreeRoot,
		AutoClaimedTxoTreeRoot:        st.Header.FinalizedState.AutoClaimedTxoTreeRoot,
		AutoClaimedDepositsTreeRoot:   st.Header.FinalizedState.AutoClaimedDepositsTreeRoot,
		PausedUntilSecs:               st.Header.PausedUntilSecs,
		LastRollbackAtSecs:            st.Header.LastRollbackAtSecs,
		ReturnOutput:                  st.ReturnOutput,
		RequestedWithdrawalsTreeRoot:  st.RequestedWithdrawalsTreeRoot,
		NextRequestedWithdrawalsIndex: st.NextRequestedWithdrawalsIndex,
		NextProcessedWithdrawalsIndex: st.NextProcessedWithdrawalsIndex,
		SpentDepositUtxoTreeRoot:      st.SpentDepositUtxoTreeRoot,
		ManualClaimDepositsTreeRoot:   st.ManualClaimDepositsTreeRoot,
		ManualClaimDepositsNextIndex:  st.ManualClaimDepositsNextIndex,
		WithdrawalSnapshot:            st.WithdrawalSnapshot,
		Config:                        st.Config,
		CustodianWalletConfig:         st.CustodianWalletConfig,
		FeesCollectedSats:             st.Header.TotalFinalizedFeesCollectedChainHistory,
		FeesWithdrawnSats:             st.TotalFeesWithdrawnSats,
		DogeMint:                      st.DogeMint,
		Operator:                      st.Operator,
		FeeSpender:                    st.FeeSpender,
		Backlog: ringView{
			StartBlockHeight:  ring.StartBlockHeight,
			CurrentIndex:      ring.PendingFinalizedInfoCurrentIndex,
			TotalCount:        ring.PendingFinalizedInfoTotalCount,
			Pending:           append([]bridge.FinalizedBlockMintTxoInfo{}, ring.Pending()...),
			GroupsTotal:       ring.Tracker.PendingMintGroupsCount,
			GroupsRemaining:   ring.Tracker.PendingMintsGroupsRemaining,
			TotalPendingMints: ring.Tracker.TotalPendingMints,
		},
	}
	if !ring.Tracker.IsEmpty() {
		buffer := ring.Tracker.LastFinalizedAutoClaimMintsStorageAccount
		view.Backlog.ConsumingBuffer = &buffer
	}
	return view
}

func (s *server) bridgeState(w http.ResponseWriter, r *http.Request) {
	addr, _ := bridge.Address(s.ids.Bridge)
	acc, err := s.host.Account(addr)
	if err != nil {
		s.logger.Error("load bridge state", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if acc.IsEmpty() {
		s.writeError(w, http.StatusNotFound, "bridge not initialized")
		return
	}
	st, err := bridge.Read(s.ids.Bridge, host.NewAccountInfo(addr, acc))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, newBridgeStateView(st))
}

type accountView struct {
	Pubkey     solana.PublicKey `json:"pubkey"`
	Owner      solana.PublicKey `json:"owner"`
	Lamports   uint64           `json:"lamports"`
	Executable bool             `json:"executable"`
	Data       string           `json:"data"`
}

func (s *server) account(w http.ResponseWriter, r *http.Request) {
	key, err := solana.PublicKeyFromBase58(chi.URLParam(r, "pubkey"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	acc, err := s.host.Account(key)
	if err != nil {
		s.logger.Error("load account", "pubkey", key.String(), "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if acc.IsEmpty() {
		s.writeError(w, http.StatusNotFound, "account not found")
		return
	}
	s.writeJSON(w, http.StatusOK, accountView{
		Pubkey:     key,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Executable: acc.Executable,
		Data:       hex.EncodeToString(acc.Data),
	})
}

type managerSetView struct {
	ChainID           uint16     `json:"chainId"`
	Index             uint32     `json:"index"`
	CurrentIndex      uint32     `json:"currentIndex"`
	Keys              []string   `json:"keys"`
	WalletAddressHash types.H160 `json:"walletAddressHash"`
}

func (s *server) managerSet(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.ParseUint(chi.URLParam(r, "chain"), 10, 16)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid chain id")
		return
	}
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	setAddr, _ := managerset.SetAddress(s.ids.ManagerSet, uint16(chainID), uint32(index))
	acc, err := s.host.Account(setAddr)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if acc.IsEmpty() {
		s.writeError(w, http.StatusNotFound, "manager set not found")
		return
	}
	set, err := managerset.ReadSet(s.ids.ManagerSet, host.NewAccountInfo(setAddr, acc))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	keys, err := managerset.ParseSetData(set.ManagerSet)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	walletHash, err := managerset.CustodianHash(set.ManagerSet)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	view := managerSetView{
		ChainID:           set.ManagerChainID,
		Index:             set.Index,
		Keys:              make([]string, 0, len(keys)),
		WalletAddressHash: walletHash,
	}
	for _, key := range keys {
		view.Keys = append(view.Keys, hex.EncodeToString(key[:]))
	}
	indexAddr, _ := managerset.IndexAddress(s.ids.ManagerSet, uint16(chainID))
	if idxAcc, err := s.host.Account(indexAddr); err == nil && !idxAcc.IsEmpty() {
		if idx, err := managerset.ReadIndex(s.ids.ManagerSet, host.NewAccountInfo(indexAddr, idxAcc)); err == nil {
			view.CurrentIndex = idx.CurrentIndex
		}
	}
	s.writeJSON(w, http.StatusOK, view)
}
