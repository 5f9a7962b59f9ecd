package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
)

var emptyInfo = FinalizedBlockMintTxoInfo{
	PendingMintsFinalizedHash:  mintbuffer.EmptyDigest,
	TxoOutputListFinalizedHash: txobuffer.EmptyDigest,
}

func TestFastForwardNeedsBothDigestsEmpty(t *testing.T) {
	mintsOnly := FinalizedBlockMintTxoInfo{PendingMintsFinalizedHash: types.H256{1}, TxoOutputListFinalizedHash: txobuffer.EmptyDigest}
	txosOnly := FinalizedBlockMintTxoInfo{PendingMintsFinalizedHash: mintbuffer.EmptyDigest, TxoOutputListFinalizedHash: types.H256{2}}
	require.True(t, emptyInfo.IsEmptyBlock())
	require.False(t, mintsOnly.IsEmptyBlock())
	require.False(t, txosOnly.IsEmptyBlock())

	var m FinalizedBlockMintTxoManager
	m.install([]FinalizedBlockMintTxoInfo{emptyInfo, emptyInfo, txosOnly, emptyInfo}, 10)
	require.Equal(t, 2, m.FastForwardEmpty())
	require.Equal(t, uint32(12), m.CurrentBlockHeight())
	require.Equal(t, txosOnly, *m.Current())
	require.Zero(t, m.FastForwardEmpty())
	require.False(t, m.IsEmpty())
	require.Len(t, m.Pending(), 2)

	m.PendingFinalizedInfoCurrentIndex++
	require.Equal(t, 1, m.FastForwardEmpty())
	require.Nil(t, m.Current())
	require.True(t, m.IsEmpty())
}

func TestFastForwardStopsWhileConsuming(t *testing.T) {
	var m FinalizedBlockMintTxoManager
	m.install([]FinalizedBlockMintTxoInfo{emptyInfo}, 1)
	m.Tracker.Loaded = 1
	require.Zero(t, m.FastForwardEmpty())
	require.False(t, m.IsEmpty())
}

func TestTrackerClaims(t *testing.T) {
	var m FinalizedBlockMintTxoManager
	m.install([]FinalizedBlockMintTxoInfo{{PendingMintsFinalizedHash: types.H256{1}}}, 5)
	m.Tracker = PendingMintsTracker{PendingMintGroupsCount: 3, PendingMintsGroupsRemaining: 3, Loaded: 1}
	m.Tracker.claim(2)
	m.Tracker.claim(0)
	require.True(t, m.Tracker.Claimed(0))
	require.False(t, m.Tracker.Claimed(1))
	require.True(t, m.Tracker.Claimed(2))
	require.Equal(t, uint32(1), m.Tracker.PendingMintsGroupsRemaining)
	require.Equal(t, uint8(0x05), m.Tracker.PendingMintGroupsClaimed[0])

	m.finish()
	require.True(t, m.Tracker.IsEmpty())
	require.True(t, m.IsEmpty())
	require.Equal(t, uint32(6), m.CurrentBlockHeight())
}
