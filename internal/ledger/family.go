package ledger

import (
	"context"

	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/status"
	"github.com/dukerupert/choreledger/internal/store"
)

// AddChild registers target as a child in the caller's family group.
func (l *Ledger) AddChild(ctx context.Context, caller, target, name string) error {
	return l.update(ctx, "add_child", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		addr, err := parseTarget(target)
		if err != nil {
			return err
		}
		existing, err := tx.accounts.Get(tx.ctx, addr)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Kind == model.KindParent {
				return withMetadata(CodeAddressIsParent, "address is already registered as a parent", map[string]string{"address": addr})
			}
			return withMetadata(CodeAddressIsChild, "address is already registered as a child", map[string]string{"address": addr})
		}
		name, err := validName(name)
		if err != nil {
			return err
		}

		enrollment, err := tx.counters.NextID(tx.ctx, store.SeqEnrollment)
		if err != nil {
			return err
		}
		if err := tx.accounts.CreateChild(tx.ctx, addr, name, parent.Address, enrollment); err != nil {
			return err
		}
		tx.bump(store.CounterChildrenAdded, 1)
		return tx.emit(model.EventChildAdded, map[string]any{"parent": parent.Address, "child": addr, "name": name})
	})
}

// RemoveChild unregisters a child of the caller's family group.
func (l *Ledger) RemoveChild(ctx context.Context, caller, target string) error {
	return l.update(ctx, "remove_child", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		kid, err := tx.childInGroup(parent, target)
		if err != nil {
			return err
		}

		if err := tx.accounts.Delete(tx.ctx, kid.Address); err != nil {
			return err
		}
		tx.bump(store.CounterChildrenRemoved, 1)
		return tx.emit(model.EventChildRemoved, map[string]any{"parent": parent.Address, "child": kid.Address})
	})
}

// FamilyGroup lists the caller's children in insertion order with their
// balances and task/reward tallies.
func (l *Ledger) FamilyGroup(ctx context.Context, caller string) ([]model.ChildSummary, error) {
	summaries := []model.ChildSummary{}
	err := l.view(ctx, "get_family_group", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		children, err := tx.accounts.ListChildren(tx.ctx, parent.Address)
		if err != nil {
			return err
		}

		for _, kid := range children {
			balance, err := tx.balances.Get(tx.ctx, kid.Address)
			if err != nil {
				return err
			}
			tasks, err := tx.childTasks(kid)
			if err != nil {
				return err
			}
			rewards, err := tx.childRewards(kid)
			if err != nil {
				return err
			}
			summaries = append(summaries, model.ChildSummary{
				Address: kid.Address,
				Name:    kid.Name,
				Balance: balance,
				Tasks:   status.TallyTasks(tasks),
				Rewards: status.TallyRewards(rewards),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
