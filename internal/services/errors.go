package services

import "errors"

// Daily quest activation preconditions. These are the only validation
// failures surfaced verbatim to the user, checked before any mutation.
var (
	ErrDailyLimitReached = errors.New("you already completed the maximum daily quests for this category, come back tomorrow")
	ErrQuestNotAvailable = errors.New("this quest is not available today, check your daily quest board")
)

// Feed comment errors.
var (
	ErrReplyTooDeep    = errors.New("replies can only go one level deep")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("you can only delete your own comments")
)
