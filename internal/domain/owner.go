package domain

import (
	"errors"
	"strconv"
)

var ErrIdentity = errors.New("must provide a valid user id or guest id")

type ownerKind int

const (
	ownerNone ownerKind = iota
	ownerUser
	ownerGuest
)

// Owner is the cart/order owner: exactly one of an authenticated user or an
// anonymous guest token. The zero Owner is invalid.
type Owner struct {
	kind    ownerKind
	userID  int64
	guestID string
}

func UserOwner(userID int64) Owner {
	return Owner{kind: ownerUser, userID: userID}
}

func GuestOwner(guestID string) Owner {
	return Owner{kind: ownerGuest, guestID: guestID}
}

func (o Owner) Valid() bool {
	switch o.kind {
	case ownerUser:
		return o.userID > 0
	case ownerGuest:
		return o.guestID != ""
	default:
		return false
	}
}

func (o Owner) IsUser() bool  { return o.kind == ownerUser }
func (o Owner) IsGuest() bool { return o.kind == ownerGuest }

func (o Owner) UserID() int64   { return o.userID }
func (o Owner) GuestID() string { return o.guestID }

// Key returns a stable string for cache keys and log lines.
func (o Owner) Key() string {
	if o.kind == ownerGuest {
		return "guest:" + o.guestID
	}
	if o.kind == ownerUser {
		return "user:" + strconv.FormatInt(o.userID, 10)
	}
	return "none"
}
