package bridge

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
)

// IsEmptyBlock reports whether both digests are the canonical empty values.
// A block with only one empty digest still has work to consume.
func (i FinalizedBlockMintTxoInfo) IsEmptyBlock() bool {
	return i.PendingMintsFinalizedHash == mintbuffer.EmptyDigest &&
		i.TxoOutputListFinalizedHash == txobuffer.EmptyDigest
}

// IsEmpty reports whether the tracker is consuming nothing.
func (t *PendingMintsTracker) IsEmpty() bool { return t.Loaded == 0 }

// Claimed reports whether group has been processed.
func (t *PendingMintsTracker) Claimed(group int) bool {
	return t.PendingMintGroupsClaimed[group/8]&(1<<uint(group%8)) != 0
}

func (t *PendingMintsTracker) claim(group int) {
	t.PendingMintGroupsClaimed[group/8] |= 1 << uint(group%8)
	t.PendingMintsGroupsRemaining--
}

// IsEmpty reports whether every ring entry has been consumed.
func (m *FinalizedBlockMintTxoManager) IsEmpty() bool {
	return m.PendingFinalizedInfoCurrentIndex == m.PendingFinalizedInfoTotalCount && m.Tracker.IsEmpty()
}

// Pending returns the unconsumed ring entries, current first.
func (m *FinalizedBlockMintTxoManager) Pending() []FinalizedBlockMintTxoInfo {
	return m.Infos[m.PendingFinalizedInfoCurrentIndex:m.PendingFinalizedInfoTotalCount]
}

// Current returns the entry under the cursor, or nil when none remain.
func (m *FinalizedBlockMintTxoManager) Current() *FinalizedBlockMintTxoInfo {
	if m.PendingFinalizedInfoCurrentIndex >= m.PendingFinalizedInfoTotalCount {
		return nil
	}
	return &m.Infos[m.PendingFinalizedInfoCurrentIndex]
}

// CurrentBlockHeight is the Dogecoin height of the entry under the cursor.
func (m *FinalizedBlockMintTxoManager) CurrentBlockHeight() uint32 {
	return m.StartBlockHeight + m.PendingFinalizedInfoCurrentIndex
}

// install replaces the ring with infos for blocks starting at startHeight.
func (m *FinalizedBlockMintTxoManager) install(infos []FinalizedBlockMintTxoInfo, startHeight uint32) {
	*m = FinalizedBlockMintTxoManager{StartBlockHeight: startHeight}
	copy(m.Infos[:], infos)
	m.PendingFinalizedInfoTotalCount = uint32(len(infos))
}

// FastForwardEmpty skips leading entries that carry neither mints nor TXOs.
// It never moves past an entry being consumed.
func (m *FinalizedBlockMintTxoManager) FastForwardEmpty() int {
	skipped := 0
	for m.Tracker.IsEmpty() {
		cur := m.Current()
		if cur == nil || !cur.IsEmptyBlock() {
			break
		}
		m.PendingFinalizedInfoCurrentIndex++
		skipped++
	}
	return skipped
}

// load starts consuming the current entry from buffer.
func (m *FinalizedBlockMintTxoManager) load(buffer solana.PublicKey, view *mintbuffer.View) {
	m.Tracker = PendingMintsTracker{
		TotalPendingMints:           uint32(view.Count()),
		PendingMintGroupsCount:      uint32(view.Groups()),
		PendingMintsGroupsRemaining: uint32(view.Groups()),
		Loaded:                      1,
	}
	m.Tracker.LastFinalizedAutoClaimMintsStorageAccount = buffer
}

// finish clears the tracker and moves the cursor past the current entry.
func (m *FinalizedBlockMintTxoManager) finish() {
	m.Tracker = PendingMintsTracker{}
	m.PendingFinalizedInfoCurrentIndex++
}
