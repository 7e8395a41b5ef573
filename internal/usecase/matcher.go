package usecase

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"txn-classifier/internal/domain"
)

// Names of the heuristics that can justify a transfer pair.
const (
	SignalSameID           = "same_id"
	SignalOwnBanks         = "own_banks"
	SignalTransferMessage  = "transfer_message"
	SignalTransferMerchant = "transfer_merchant"
)

// PairingResult is the outcome of one pass of the matcher over a batch.
type PairingResult struct {
	Paired     domain.TransferPairSet
	Pairs      []domain.TransferPair
	Unsortable []string // IDs excluded from pairing for lack of a timestamp

	// pairedAt is aligned with the input slice.
	pairedAt []bool
}

// IsPairedAt reports whether the i-th input transaction was paired.
func (r PairingResult) IsPairedAt(i int) bool {
	return i >= 0 && i < len(r.pairedAt) && r.pairedAt[i]
}

// Matcher detects internal transfers: a debit and a credit of the same
// amount, close together in time, that look like money moving between the
// user's own accounts.
type Matcher struct {
	window           time.Duration
	ownBanks         patternList
	indicators       patternList
	genericMerchants patternList
	logger           zerolog.Logger
}

// NewMatcher creates a matcher from the given rule table.
func NewMatcher(rules domain.Rules, logger zerolog.Logger) *Matcher {
	rules = rules.WithDefaults()
	return &Matcher{
		window:           rules.TransferWindow,
		ownBanks:         newPatternList(rules.OwnBanks),
		indicators:       newPatternList(rules.TransferIndicators),
		genericMerchants: newPatternList(rules.GenericTransferMerchants, rules.PersonalAliases),
		logger:           logger,
	}
}

// FindTransferPairs returns the IDs of every transaction that is one side of
// a detected internal transfer.
func (m *Matcher) FindTransferPairs(transactions []domain.Transaction) domain.TransferPairSet {
	return m.Match(transactions).Paired
}

type matchEntry struct {
	index int
	tx    domain.Transaction
	text  foldedText
}

// Match pairs transactions greedily: in timestamp order, each unpaired
// transaction is paired with the first later, unpaired candidate inside the
// transfer window that passes IsPotentialPair.
func (m *Matcher) Match(transactions []domain.Transaction) PairingResult {
	result := PairingResult{
		Paired:   domain.TransferPairSet{},
		Pairs:    make([]domain.TransferPair, 0),
		pairedAt: make([]bool, len(transactions)),
	}

	// Step 1: Drop what can't be placed in time
	entries := make([]matchEntry, 0, len(transactions))
	for i, tx := range transactions {
		if !tx.HasTimestamp() {
			result.Unsortable = append(result.Unsortable, tx.ID)
			m.logger.Warn().
				Str("transaction_id", tx.ID).
				Msg("transaction has no usable timestamp, excluded from transfer pairing")
			continue
		}
		entries = append(entries, matchEntry{index: i, tx: tx, text: foldTransaction(tx)})
	}

	// Step 2: Stable sort so equal timestamps keep their input order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].tx.Timestamp.Before(entries[j].tx.Timestamp)
	})

	// Step 3: Greedy first-match scan over the sliding window. Once an ID
	// is paired every record carrying it is skipped; records without an ID
	// are tracked by position.
	paired := make([]bool, len(entries))
	isPaired := func(k int) bool {
		if paired[k] {
			return true
		}
		id := entries[k].tx.ID
		return id != "" && result.Paired.Has(id)
	}
	for i := range entries {
		if isPaired(i) {
			continue
		}
		t := entries[i]
		limit := t.tx.Timestamp.Add(m.window)

		for j := i + 1; j < len(entries); j++ {
			c := entries[j]
			if c.tx.Timestamp.After(limit) {
				break
			}
			if isPaired(j) {
				continue
			}
			signals := m.signals(t, c)
			if len(signals) == 0 {
				continue
			}

			paired[i], paired[j] = true, true
			result.pairedAt[t.index] = true
			result.pairedAt[c.index] = true
			result.Paired.Add(t.tx.ID)
			result.Paired.Add(c.tx.ID)
			result.Pairs = append(result.Pairs, newTransferPair(t.tx, c.tx, signals))
			break
		}
	}

	if len(result.Unsortable) > 0 {
		m.logger.Warn().
			Int("count", len(result.Unsortable)).
			Msg("some transactions were excluded from transfer pairing")
	}
	m.logger.Debug().
		Int("transactions", len(transactions)).
		Int("pairs", len(result.Pairs)).
		Msg("transfer pairing complete")

	return result
}

// IsPotentialPair reports whether a and b look like the two sides of one
// internal transfer.
func (m *Matcher) IsPotentialPair(a, b domain.Transaction) bool {
	return len(m.PairSignals(a, b)) > 0
}

// PairSignals returns the heuristics that make a and b a potential pair, or
// nil when they are not one.
func (m *Matcher) PairSignals(a, b domain.Transaction) []string {
	return m.signals(
		matchEntry{tx: a, text: foldTransaction(a)},
		matchEntry{tx: b, text: foldTransaction(b)},
	)
}

func (m *Matcher) signals(a, b matchEntry) []string {
	// One debit and one credit
	if !a.tx.Direction.Valid() || !b.tx.Direction.Valid() || a.tx.Direction == b.tx.Direction {
		return nil
	}
	// Exact amount equality, no tolerance
	if !a.tx.Amount.Abs().Equal(b.tx.Amount.Abs()) {
		return nil
	}

	var signals []string
	if a.tx.ID != "" && a.tx.ID == b.tx.ID {
		signals = append(signals, SignalSameID)
	}
	if a.text.bank != "" && b.text.bank != "" &&
		m.ownBanks.equalsAny(a.text.bank) && m.ownBanks.equalsAny(b.text.bank) {
		signals = append(signals, SignalOwnBanks)
	}
	if m.indicators.containsAny(a.text.message) && m.indicators.containsAny(b.text.message) {
		signals = append(signals, SignalTransferMessage)
	}
	if m.genericMerchants.containsAny(a.text.merchant) || m.genericMerchants.containsAny(b.text.merchant) {
		signals = append(signals, SignalTransferMerchant)
	}
	return signals
}

func newTransferPair(a, b domain.Transaction, signals []string) domain.TransferPair {
	debit, credit := a, b
	if a.Direction == domain.Credit {
		debit, credit = b, a
	}
	return domain.TransferPair{
		DebitID:   debit.ID,
		CreditID:  credit.ID,
		GapMillis: b.Timestamp.Sub(a.Timestamp).Milliseconds(),
		Signals:   signals,
	}
}
