package ledger

import (
	"context"

	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/store"
)

// RegisterParent makes an unregistered caller a parent with an empty family
// group.
func (l *Ledger) RegisterParent(ctx context.Context, caller, name string) error {
	return l.update(ctx, "register_parent", caller, func(tx *txn) error {
		existing, err := tx.callerAccount()
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Kind == model.KindParent {
				return newError(CodeAlreadyParent, "caller is already registered as a parent")
			}
			return newError(CodeAlreadyChild, "caller is already registered as a child")
		}
		name, err := validName(name)
		if err != nil {
			return err
		}

		if err := tx.accounts.CreateParent(tx.ctx, tx.caller, name); err != nil {
			return err
		}
		tx.bump(store.CounterParentsRegistered, 1)
		return tx.emit(model.EventParentRegistered, map[string]any{"parent": tx.caller, "name": name})
	})
}

// DeleteParent unregisters the caller and every child in its family group.
// Task and reward records of those children stay in storage but are no
// longer reachable.
func (l *Ledger) DeleteParent(ctx context.Context, caller string) error {
	return l.update(ctx, "delete_parent", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		children, err := tx.accounts.ListChildren(tx.ctx, parent.Address)
		if err != nil {
			return err
		}

		for _, kid := range children {
			if err := tx.accounts.Delete(tx.ctx, kid.Address); err != nil {
				return err
			}
			tx.bump(store.CounterChildrenRemoved, 1)
			if err := tx.emit(model.EventChildRemoved, map[string]any{"parent": parent.Address, "child": kid.Address}); err != nil {
				return err
			}
		}
		if err := tx.accounts.Delete(tx.ctx, parent.Address); err != nil {
			return err
		}
		tx.bump(store.CounterParentsDeleted, 1)
		return tx.emit(model.EventParentDeleted, map[string]any{"parent": parent.Address, "children": len(children)})
	})
}

// EditProfile renames the caller, parent or child.
func (l *Ledger) EditProfile(ctx context.Context, caller, name string) error {
	return l.update(ctx, "edit_profile", caller, func(tx *txn) error {
		acct, err := tx.callerAccount()
		if err != nil {
			return err
		}
		if acct == nil {
			return newError(CodeNotRegistered, "caller is not registered")
		}
		name, err := validName(name)
		if err != nil {
			return err
		}

		if err := tx.accounts.UpdateName(tx.ctx, acct.Address, name); err != nil {
			return err
		}
		event := model.EventParentProfileEdited
		if acct.Kind == model.KindChild {
			event = model.EventChildProfileEdited
		}
		return tx.emit(event, map[string]any{"address": acct.Address, "name": name})
	})
}

// Profile returns the caller's role and name. Unregistered callers get
// KindNone and an empty name.
func (l *Ledger) Profile(ctx context.Context, caller string) (model.Profile, error) {
	profile := model.Profile{Kind: model.KindNone}
	err := l.view(ctx, "get_profile", caller, func(tx *txn) error {
		acct, err := tx.callerAccount()
		if err != nil {
			return err
		}
		if acct != nil {
			profile = model.Profile{Kind: acct.Kind, Name: acct.Name}
		}
		return nil
	})
	if err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}
