package model

import "encoding/json"

// EventName identifies a committed domain transition.
type EventName string

const (
	EventParentRegistered          EventName = "ParentRegistered"
	EventParentDeleted             EventName = "ParentDeleted"
	EventParentProfileEdited       EventName = "ParentProfileEdited"
	EventChildProfileEdited        EventName = "ChildProfileEdited"
	EventChildAdded                EventName = "ChildAdded"
	EventChildRemoved              EventName = "ChildRemoved"
	EventTaskAdded                 EventName = "TaskAdded"
	EventTaskEdited                EventName = "TaskEdited"
	EventTaskDeleted               EventName = "TaskDeleted"
	EventTaskCompleted             EventName = "TaskCompleted"
	EventTaskCompletionCancelled   EventName = "TaskCompletionCancelled"
	EventTaskCompletionApproved    EventName = "TaskCompletionApproved"
	EventRewardAdded               EventName = "RewardAdded"
	EventRewardEdited              EventName = "RewardEdited"
	EventRewardDeleted             EventName = "RewardDeleted"
	EventRewardPurchased           EventName = "RewardPurchased"
	EventRewardRedeemed            EventName = "RewardRedeemed"
	EventRewardRedemptionCancelled EventName = "RewardRedemptionCancelled"
	EventRewardRedemptionApproved  EventName = "RewardRedemptionApproved"
)

// Event is one entry of the append-only audit log. Hash chains each entry to
// its predecessor.
type Event struct {
	Seq      int64           `json:"seq"`
	ID       string          `json:"id"`
	Name     EventName       `json:"name"`
	Caller   string          `json:"caller"`
	Payload  json.RawMessage `json:"payload"`
	At       int64           `json:"at"`
	PrevHash string          `json:"prev_hash"`
	Hash     string          `json:"hash"`
}
