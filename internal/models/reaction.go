package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Reaction is one user's like (LikeType=true) or dislike (LikeType=false)
// on exactly one post or reply.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    *uint     `gorm:"index;check:likes_post_or_reply,(post_id IS NOT NULL AND reply_id IS NULL) OR (post_id IS NULL AND reply_id IS NOT NULL)" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ReplyID   *uint     `gorm:"index" json:"replyId"`
	Reply     *Reply    `gorm:"foreignKey:ReplyID;constraint:OnDelete:CASCADE" json:"-"`
	LikeType  bool      `gorm:"not null" json:"likeType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Reaction) TableName() string {
	return "likes"
}

// TargetKind names the kind of row a reaction points at.
type TargetKind string

const (
	TargetPost  TargetKind = "post"
	TargetReply TargetKind = "reply"
)

// ErrInvalidTargetRef is returned when a target has both or neither side set.
var ErrInvalidTargetRef = errors.New("reaction target must reference exactly one of post or reply")

// TargetRef is either a post or a reply, never both and never neither.
// The zero value is not a valid target.
type TargetRef struct {
	kind TargetKind
	id   uint
}

func PostTarget(id uint) TargetRef {
	return TargetRef{kind: TargetPost, id: id}
}

func ReplyTarget(id uint) TargetRef {
	return TargetRef{kind: TargetReply, id: id}
}

// TargetFromColumns rebuilds a target from the nullable post_id/reply_id pair.
func TargetFromColumns(postID, replyID *uint) (TargetRef, error) {
	switch {
	case postID != nil && replyID == nil && *postID != 0:
		return PostTarget(*postID), nil
	case replyID != nil && postID == nil && *replyID != 0:
		return ReplyTarget(*replyID), nil
	default:
		return TargetRef{}, ErrInvalidTargetRef
	}
}

func (t TargetRef) Kind() TargetKind { return t.kind }

func (t TargetRef) ID() uint { return t.id }

func (t TargetRef) Valid() bool {
	return (t.kind == TargetPost || t.kind == TargetReply) && t.id != 0
}

// Columns returns the post_id/reply_id pair with exactly one side set.
func (t TargetRef) Columns() (postID, replyID *uint) {
	id := t.id
	if t.kind == TargetReply {
		return nil, &id
	}
	return &id, nil
}

// Column is the likes column that references this target.
func (t TargetRef) Column() string {
	if t.kind == TargetReply {
		return "reply_id"
	}
	return "post_id"
}

// OtherColumn is the likes column that must be NULL for this target.
func (t TargetRef) OtherColumn() string {
	if t.kind == TargetReply {
		return "post_id"
	}
	return "reply_id"
}

func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

type targetJSON struct {
	Type TargetKind `json:"type"`
	ID   uint       `json:"id"`
}

func (t TargetRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetJSON{Type: t.kind, ID: t.id})
}

func (t *TargetRef) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ref := TargetRef{kind: raw.Type, id: raw.ID}
	if !ref.Valid() {
		return ErrInvalidTargetRef
	}
	*t = ref
	return nil
}

// ReactionState is a user's current vote on a single target.
type ReactionState int

const (
	NoReaction ReactionState = iota
	Upvoted
	Downvoted
)

func (s ReactionState) String() string {
	switch s {
	case Upvoted:
		return "upvoted"
	case Downvoted:
		return "downvoted"
	default:
		return "none"
	}
}

func (s ReactionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Polarity returns the stored like_type for the state, or nil for NoReaction.
func (s ReactionState) Polarity() *bool {
	switch s {
	case Upvoted:
		v := true
		return &v
	case Downvoted:
		v := false
		return &v
	default:
		return nil
	}
}

// StateOf derives the vote state from an existing row, nil meaning no row.
func StateOf(r *Reaction) ReactionState {
	if r == nil {
		return NoReaction
	}
	if r.LikeType {
		return Upvoted
	}
	return Downvoted
}

// ReactionTransition is the ledger mutation that moves between states.
type ReactionTransition string

const (
	TransitionInserted ReactionTransition = "inserted"
	TransitionRemoved  ReactionTransition = "removed"
	TransitionSwitched ReactionTransition = "switched"
)

// Transition applies a like (true) or dislike (false) request to the current state.
// Repeating the current vote clears it; the opposite vote switches it in place.
func Transition(current ReactionState, polarity bool) (ReactionState, ReactionTransition) {
	requested := Downvoted
	if polarity {
		requested = Upvoted
	}

	switch current {
	case NoReaction:
		return requested, TransitionInserted
	case requested:
		return NoReaction, TransitionRemoved
	default:
		return requested, TransitionSwitched
	}
}

// VoteResult is the outcome of applying one like or dislike request.
type VoteResult struct {
	Target     TargetRef          `json:"target"`
	Previous   ReactionState      `json:"previous"`
	State      ReactionState      `json:"state"`
	Transition ReactionTransition `json:"transition"`
	Votes      int64              `json:"votes"`
}
