package ledger

import (
	"strconv"
	"strings"

	"github.com/dukerupert/choreledger/internal/model"
)

func (tx *txn) callerAccount() (*model.Account, error) {
	return tx.accounts.Get(tx.ctx, tx.caller)
}

func (tx *txn) requireParent() (*model.Account, error) {
	a, err := tx.callerAccount()
	if err != nil {
		return nil, err
	}
	if a == nil || a.Kind != model.KindParent {
		return nil, newError(CodeNotRegisteredAsParent, "caller is not registered as a parent")
	}
	return a, nil
}

func (tx *txn) requireChild() (*model.Account, error) {
	a, err := tx.callerAccount()
	if err != nil {
		return nil, err
	}
	if a == nil || a.Kind != model.KindChild {
		return nil, newError(CodeNotRegisteredAsChild, "caller is not registered as a child")
	}
	return a, nil
}

// childInGroup resolves target to a child of parent.
func (tx *txn) childInGroup(parent *model.Account, target string) (*model.Account, error) {
	addr, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	kid, err := tx.accounts.Get(tx.ctx, addr)
	if err != nil {
		return nil, err
	}
	if kid == nil || kid.Kind != model.KindChild {
		return nil, withMetadata(CodeAddressNotAChild, "address is not registered as a child",
			map[string]string{"address": addr})
	}
	if kid.Parent != parent.Address {
		return nil, withMetadata(CodeNotInYourFamilyGroup, "child is not in your family group",
			map[string]string{"address": addr})
	}
	return kid, nil
}

// enrolledUnder reports whether a record created for child during
// enrollmentID is still owned by parent's current family group.
func (tx *txn) enrolledUnder(parent *model.Account, child string, enrollmentID int64) (bool, error) {
	kid, err := tx.accounts.Get(tx.ctx, child)
	if err != nil {
		return false, err
	}
	return kid != nil && kid.Kind == model.KindChild &&
		kid.Parent == parent.Address && kid.EnrollmentID == enrollmentID, nil
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", withMetadata(CodeInvalidArgument, "name is required", map[string]string{"field": "name"})
	}
	return name, nil
}

func validDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", withMetadata(CodeInvalidArgument, "description is required", map[string]string{"field": "description"})
	}
	return description, nil
}

// MaxAmount is the largest reward, price or transfer the ledger accepts.
const MaxAmount int64 = 1_000_000_000_000_000

func validAmount(field string, amount int64) error {
	if amount <= 0 {
		return withMetadata(CodeInvalidArgument, field+" must be greater than 0", map[string]string{"field": field})
	}
	if amount > MaxAmount {
		return withMetadata(CodeInvalidArgument, field+" is too large", map[string]string{
			"field": field,
			"max":   strconv.FormatInt(MaxAmount, 10),
		})
	}
	return nil
}

func invalidID(entity string, id int64) error {
	return withMetadata(CodeInvalidID, "no "+entity+" with that id", map[string]string{"entity": entity})
}
