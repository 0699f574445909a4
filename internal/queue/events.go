package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventPostLiked      = "post_liked"
	EventPostReposted   = "post_reposted"
	EventCommentLiked   = "comment_liked"
	EventMessageSent    = "message_sent"
	EventMessageRead    = "message_read"
)

// StreamActivity is read by external consumers (notifications, analytics).
const StreamActivity = "stream:activity"

// ActivityEvent is one user action. Only the IDs relevant to Type are set.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ActorID   int64  `json:"actor_id"`

	// Follow and message events
	TargetUserID int64 `json:"target_user_id,omitempty"`

	PostID    int64 `json:"post_id,omitempty"`
	CommentID int64 `json:"comment_id,omitempty"`
	MessageID int64 `json:"message_id,omitempty"`
}

// NewFollowEvent reports the state a follow toggle ended in.
func NewFollowEvent(followerID, followingID int64, following bool) ActivityEvent {
	typ := EventUserUnfollowed
	if following {
		typ = EventUserFollowed
	}
	return ActivityEvent{
		Type:         typ,
		Timestamp:    time.Now().Unix(),
		ActorID:      followerID,
		TargetUserID: followingID,
	}
}

func NewPostLikedEvent(userID, postID int64) ActivityEvent {
	return ActivityEvent{Type: EventPostLiked, Timestamp: time.Now().Unix(), ActorID: userID, PostID: postID}
}

func NewPostRepostedEvent(userID, postID int64) ActivityEvent {
	return ActivityEvent{Type: EventPostReposted, Timestamp: time.Now().Unix(), ActorID: userID, PostID: postID}
}

func NewCommentLikedEvent(userID, commentID int64) ActivityEvent {
	return ActivityEvent{Type: EventCommentLiked, Timestamp: time.Now().Unix(), ActorID: userID, CommentID: commentID}
}

func NewMessageSentEvent(senderID, receiverID, messageID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventMessageSent,
		Timestamp:    time.Now().Unix(),
		ActorID:      senderID,
		TargetUserID: receiverID,
		MessageID:    messageID,
	}
}

func NewMessageReadEvent(receiverID, senderID, messageID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventMessageRead,
		Timestamp:    time.Now().Unix(),
		ActorID:      receiverID,
		TargetUserID: senderID,
		MessageID:    messageID,
	}
}

// ToMap converts the event to XADD field-value pairs. The full event is JSON in "data".
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
