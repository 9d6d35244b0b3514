package ledger

import (
	"context"

	"github.com/dukerupert/choreledger/internal/address"
	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/status"
	"github.com/dukerupert/choreledger/internal/store"
)

// RewardInput holds the parent-editable fields of a reward.
type RewardInput struct {
	Description string
	Price       int64
}

func (in RewardInput) validate() (RewardInput, error) {
	desc, err := validDescription(in.Description)
	if err != nil {
		return in, err
	}
	in.Description = desc
	if err := validAmount("price", in.Price); err != nil {
		return in, err
	}
	return in, nil
}

func (tx *txn) parentReward(parent *model.Account, id int64) (*model.Reward, error) {
	if id <= 0 {
		return nil, invalidID("reward", id)
	}
	r, err := tx.rewards.GetByID(tx.ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, invalidID("reward", id)
	}
	ok, err := tx.enrolledUnder(parent, r.ChildAddress, r.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(CodeNotInYourFamilyGroup, "reward belongs to a child outside your family group")
	}
	return r, nil
}

func (tx *txn) ownReward(kid *model.Account, id int64) (*model.Reward, error) {
	if id <= 0 {
		return nil, invalidID("reward", id)
	}
	r, err := tx.rewards.GetByID(tx.ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, invalidID("reward", id)
	}
	if r.ChildAddress != kid.Address || r.EnrollmentID != kid.EnrollmentID {
		return nil, newError(CodeNotYourReward, "reward is not assigned to you")
	}
	return r, nil
}

func (tx *txn) childRewards(kid model.Account) ([]status.RewardWithStatus, error) {
	rewards, err := tx.rewards.ListByEnrollment(tx.ctx, kid.Address, kid.EnrollmentID)
	if err != nil {
		return nil, err
	}
	out := make([]status.RewardWithStatus, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, status.ComputeReward(r))
	}
	return out, nil
}

func (l *Ledger) AddReward(ctx context.Context, caller, child string, in RewardInput) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "add_reward", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		kid, err := tx.childInGroup(parent, child)
		if err != nil {
			return err
		}
		in, err := in.validate()
		if err != nil {
			return err
		}

		id, err := tx.counters.NextID(tx.ctx, store.SeqReward)
		if err != nil {
			return err
		}
		reward = model.Reward{
			ID:           id,
			ChildAddress: kid.Address,
			EnrollmentID: kid.EnrollmentID,
			Description:  in.Description,
			Price:        in.Price,
		}
		if err := tx.rewards.Create(tx.ctx, reward); err != nil {
			return err
		}
		tx.bump(store.CounterRewardsAdded, 1)
		return tx.emit(model.EventRewardAdded, map[string]any{
			"id":          id,
			"child":       kid.Address,
			"description": in.Description,
			"price":       in.Price,
		})
	})
	return reward, err
}

func (l *Ledger) EditReward(ctx context.Context, caller string, id int64, in RewardInput) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "edit_reward", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		r, err := tx.parentReward(parent, id)
		if err != nil {
			return err
		}
		if r.Purchased {
			return newError(CodeAlreadyPurchased, "purchased rewards cannot be edited")
		}
		in, err := in.validate()
		if err != nil {
			return err
		}

		r.Description, r.Price = in.Description, in.Price
		if err := tx.rewards.Update(tx.ctx, *r); err != nil {
			return err
		}
		reward = *r
		return tx.emit(model.EventRewardEdited, map[string]any{
			"id":          r.ID,
			"description": r.Description,
			"price":       r.Price,
		})
	})
	return reward, err
}

func (l *Ledger) DeleteReward(ctx context.Context, caller string, id int64) error {
	return l.update(ctx, "delete_reward", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		r, err := tx.parentReward(parent, id)
		if err != nil {
			return err
		}
		if r.Purchased {
			return newError(CodeAlreadyPurchased, "purchased rewards cannot be deleted")
		}

		if err := tx.rewards.Delete(tx.ctx, r.ID); err != nil {
			return err
		}
		tx.bump(store.CounterRewardsDeleted, 1)
		return tx.emit(model.EventRewardDeleted, map[string]any{"id": r.ID})
	})
}

// PurchaseReward debits the reward's price from the calling child into the
// treasury.
func (l *Ledger) PurchaseReward(ctx context.Context, caller string, id int64) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "purchase_reward", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		r, err := tx.ownReward(kid, id)
		if err != nil {
			return err
		}
		if r.Purchased {
			return newError(CodeAlreadyPurchased, "reward is already purchased")
		}
		if err := tx.transfer(kid.Address, address.Treasury, r.Price); err != nil {
			return err
		}

		r.Purchased, r.PurchaseDate = true, tx.now
		if err := tx.rewards.Update(tx.ctx, *r); err != nil {
			return err
		}
		reward = *r
		tx.bump(store.CounterRewardsPurchased, 1)
		tx.bump(store.CounterTokensSpent, r.Price)
		return tx.emit(model.EventRewardPurchased, map[string]any{
			"id":            r.ID,
			"price":         r.Price,
			"child":         kid.Address,
			"purchase_date": r.PurchaseDate,
		})
	})
	return reward, err
}

func (l *Ledger) RedeemReward(ctx context.Context, caller string, id int64) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "redeem_reward", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		r, err := tx.ownReward(kid, id)
		if err != nil {
			return err
		}
		if !r.Purchased {
			return newError(CodeNotYetPurchased, "reward is not purchased")
		}
		if r.Redeemed {
			return newError(CodeAlreadyRedeemed, "reward is already redeemed")
		}

		r.Redeemed, r.RedemptionDate = true, tx.now
		if err := tx.rewards.Update(tx.ctx, *r); err != nil {
			return err
		}
		reward = *r
		tx.bump(store.CounterRewardsRedeemed, 1)
		return tx.emit(model.EventRewardRedeemed, map[string]any{
			"id":              r.ID,
			"child":           kid.Address,
			"redemption_date": r.RedemptionDate,
		})
	})
	return reward, err
}

// CancelRewardRedemption returns a redeemed reward to purchased. Balances
// are untouched; the price stays spent.
func (l *Ledger) CancelRewardRedemption(ctx context.Context, caller string, id int64) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "cancel_reward_redemption", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		r, err := tx.ownReward(kid, id)
		if err != nil {
			return err
		}
		if !r.Redeemed {
			return newError(CodeNotYetRedeemed, "reward is not redeemed")
		}
		if r.Approved {
			return newError(CodeAlreadyApproved, "reward redemption is already approved")
		}

		r.Redeemed, r.RedemptionDate = false, 0
		if err := tx.rewards.Update(tx.ctx, *r); err != nil {
			return err
		}
		reward = *r
		tx.bump(store.CounterRewardsRedeemed, -1)
		return tx.emit(model.EventRewardRedemptionCancelled, map[string]any{"id": r.ID, "child": kid.Address})
	})
	return reward, err
}

func (l *Ledger) ApproveRewardRedemption(ctx context.Context, caller string, id int64) (model.Reward, error) {
	var reward model.Reward
	err := l.update(ctx, "approve_reward_redemption", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		r, err := tx.parentReward(parent, id)
		if err != nil {
			return err
		}
		if !r.Redeemed {
			return newError(CodeNotYetRedeemed, "reward is not redeemed")
		}
		if r.Approved {
			return newError(CodeAlreadyApproved, "reward redemption is already approved")
		}

		r.Approved, r.ApprovalDate = true, tx.now
		if err := tx.rewards.Update(tx.ctx, *r); err != nil {
			return err
		}
		reward = *r
		tx.bump(store.CounterRewardsApproved, 1)
		return tx.emit(model.EventRewardRedemptionApproved, map[string]any{
			"id":            r.ID,
			"parent":        parent.Address,
			"approval_date": r.ApprovalDate,
		})
	})
	return reward, err
}

func (l *Ledger) ChildRewards(ctx context.Context, caller string) ([]status.RewardWithStatus, error) {
	var rewards []status.RewardWithStatus
	err := l.view(ctx, "get_child_rewards", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		rewards, err = tx.childRewards(*kid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (l *Ledger) FamilyGroupRewards(ctx context.Context, caller string) ([]status.RewardWithStatus, error) {
	rewards := []status.RewardWithStatus{}
	err := l.view(ctx, "get_family_group_rewards", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		children, err := tx.accounts.ListChildren(tx.ctx, parent.Address)
		if err != nil {
			return err
		}
		for _, kid := range children {
			kidRewards, err := tx.childRewards(kid)
			if err != nil {
				return err
			}
			rewards = append(rewards, kidRewards...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}
