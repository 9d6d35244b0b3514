package ledger

import (
	"context"
	"math"
	"strconv"

	"github.com/dukerupert/choreledger/internal/address"
	"github.com/dukerupert/choreledger/internal/model"
)

// Treasury configures the token pool behind task approvals. A zero Supply
// is unbounded: the treasury mints on every approval and burns on every
// purchase, and keeps no balance of its own. A positive Supply is funded
// once and approvals fail with INSUFFICIENT_BALANCE once it runs dry.
type Treasury struct {
	Supply int64
}

func (t Treasury) Bounded() bool { return t.Supply > 0 }

// transfer moves amount from one balance to another inside the current
// transaction.
func (tx *txn) transfer(from, to string, amount int64) error {
	if err := validAmount("amount", amount); err != nil {
		return err
	}
	unlimited := !tx.treasury.Bounded()

	if !(from == address.Treasury && unlimited) {
		balance, err := tx.balances.Get(tx.ctx, from)
		if err != nil {
			return err
		}
		if balance < amount {
			return withMetadata(CodeInsufficientBalance, "insufficient token balance", map[string]string{
				"account": from,
				"balance": strconv.FormatInt(balance, 10),
				"amount":  strconv.FormatInt(amount, 10),
			})
		}
		if err := tx.balances.Set(tx.ctx, from, balance-amount); err != nil {
			return err
		}
	}

	if !(to == address.Treasury && unlimited) {
		balance, err := tx.balances.Get(tx.ctx, to)
		if err != nil {
			return err
		}
		if balance > math.MaxInt64-amount {
			return withMetadata(CodeAmountOverflow, "balance would overflow", map[string]string{
				"account": to,
				"balance": strconv.FormatInt(balance, 10),
				"amount":  strconv.FormatInt(amount, 10),
			})
		}
		if err := tx.balances.Set(tx.ctx, to, balance+amount); err != nil {
			return err
		}
	}
	return nil
}

// BalanceOf returns the token balance of an address, 0 if it never held any.
// The literal "treasury" reads the treasury's own balance.
func (l *Ledger) BalanceOf(ctx context.Context, addr string) (int64, error) {
	if addr != address.Treasury {
		parsed, err := parseTarget(addr)
		if err != nil {
			return 0, err
		}
		addr = parsed
	}
	var balance int64
	err := l.view(ctx, "balance_of", "", func(tx *txn) error {
		var err error
		balance, err = tx.balances.Get(tx.ctx, addr)
		return err
	})
	return balance, err
}

func (l *Ledger) Name() string   { return l.name }
func (l *Ledger) Symbol() string { return l.symbol }

// TokenInfo reports the token's static configuration and current supply
// figures.
func (l *Ledger) TokenInfo(ctx context.Context) (model.TokenInfo, error) {
	info := model.TokenInfo{
		Name:    l.name,
		Symbol:  l.symbol,
		Supply:  l.treasury.Supply,
		Bounded: l.treasury.Bounded(),
	}
	err := l.view(ctx, "token_info", "", func(tx *txn) error {
		var err error
		if info.Treasury, err = tx.balances.Get(tx.ctx, address.Treasury); err != nil {
			return err
		}
		info.Circulating, err = tx.balances.SumExcept(tx.ctx, address.Treasury)
		return err
	})
	return info, err
}
