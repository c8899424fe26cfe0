package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestTransition_AllEdges(t *testing.T) {
	tests := []struct {
		name       string
		current    ReactionState
		polarity   bool
		next       ReactionState
		transition ReactionTransition
	}{
		{"none to upvoted", NoReaction, true, Upvoted, TransitionInserted},
		{"none to downvoted", NoReaction, false, Downvoted, TransitionInserted},
		{"upvote again clears", Upvoted, true, NoReaction, TransitionRemoved},
		{"downvote again clears", Downvoted, false, NoReaction, TransitionRemoved},
		{"upvoted switches to downvoted", Upvoted, false, Downvoted, TransitionSwitched},
		{"downvoted switches to upvoted", Downvoted, true, Upvoted, TransitionSwitched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, transition := Transition(tt.current, tt.polarity)
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.transition, transition)
		})
	}
}

func TestTransition_DoubleToggleReturnsToStart(t *testing.T) {
	for _, polarity := range []bool{true, false} {
		state, _ := Transition(NoReaction, polarity)
		state, _ = Transition(state, polarity)
		assert.Equal(t, NoReaction, state)
	}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, NoReaction, StateOf(nil))
	assert.Equal(t, Upvoted, StateOf(&Reaction{LikeType: true}))
	assert.Equal(t, Downvoted, StateOf(&Reaction{LikeType: false}))
}

func TestReactionState_Polarity(t *testing.T) {
	assert.Nil(t, NoReaction.Polarity())
	require.NotNil(t, Upvoted.Polarity())
	assert.True(t, *Upvoted.Polarity())
	require.NotNil(t, Downvoted.Polarity())
	assert.False(t, *Downvoted.Polarity())
}

func TestTargetFromColumns(t *testing.T) {
	post, err := TargetFromColumns(uintPtr(4), nil)
	require.NoError(t, err)
	assert.Equal(t, TargetPost, post.Kind())
	assert.Equal(t, uint(4), post.ID())

	reply, err := TargetFromColumns(nil, uintPtr(9))
	require.NoError(t, err)
	assert.Equal(t, TargetReply, reply.Kind())

	_, err = TargetFromColumns(uintPtr(1), uintPtr(2))
	assert.ErrorIs(t, err, ErrInvalidTargetRef)

	_, err = TargetFromColumns(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTargetRef)

	_, err = TargetFromColumns(uintPtr(0), nil)
	assert.ErrorIs(t, err, ErrInvalidTargetRef)
}

func TestTargetRef_ColumnsHaveExactlyOneSide(t *testing.T) {
	postID, replyID := PostTarget(3).Columns()
	require.NotNil(t, postID)
	assert.Nil(t, replyID)
	assert.Equal(t, uint(3), *postID)
	assert.Equal(t, "post_id", PostTarget(3).Column())
	assert.Equal(t, "reply_id", PostTarget(3).OtherColumn())

	postID, replyID = ReplyTarget(5).Columns()
	assert.Nil(t, postID)
	require.NotNil(t, replyID)
	assert.Equal(t, uint(5), *replyID)
	assert.Equal(t, "reply_id", ReplyTarget(5).Column())

	assert.False(t, TargetRef{}.Valid())
	assert.False(t, PostTarget(0).Valid())
}

func TestTargetRef_JSON(t *testing.T) {
	data, err := json.Marshal(ReplyTarget(12))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reply","id":12}`, string(data))

	var decoded TargetRef
	require.NoError(t, json.Unmarshal([]byte(`{"type":"post","id":7}`), &decoded))
	assert.Equal(t, PostTarget(7), decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"thread","id":7}`), &decoded))
}

func TestReaction_TableName(t *testing.T) {
	assert.Equal(t, "likes", Reaction{}.TableName())
}
