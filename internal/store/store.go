package store

import "errors"

// Ref identifies a shared replicated object.
type Ref string

// GroupID identifies an access-control group.
type GroupID string

// Role is a capability on an access group.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleAdmin  Role = "admin"
)

// Everyone is the wildcard principal used to grant implicit access.
const Everyone = "everyone"

var (
	ErrNoObject = errors.New("object not found")
	ErrNoGroup  = errors.New("access group not found")
)

// SubID identifies an active subscription so it can be removed.
type SubID int64

// Store is the shared replicated object substrate. Objects are multi-writer:
// any client may mutate any field, and the store converges last-writer-wins
// per field. List fields hold ordered slices of string identifiers.
//
// Writes are fire-and-forget: none of these calls blocks on delivery to other
// subscribers, and a read may lag another client's write. Callers that need a
// transition to apply at most once must use CompareAndSwapField with the
// expected predecessor value rather than WriteField.
type Store interface {
	CreateObject(fields map[string]any, group GroupID) Ref
	ReadField(ref Ref, field string) (any, error)
	WriteField(ref Ref, field string, value any) error

	// CompareAndSwapField writes value only if the field currently equals
	// expected. It reports whether the swap happened.
	CompareAndSwapField(ref Ref, field string, expected, value any) (bool, error)

	// CompareAndSwapFields applies every update only if field currently
	// equals expected, in one atomic step with a single change
	// notification. A subscriber never observes a subset of the updates.
	CompareAndSwapFields(ref Ref, field string, expected any, updates map[string]any) (bool, error)

	ReadList(ref Ref, field string) ([]string, error)
	AppendToList(ref Ref, field string, value string) error

	// AppendToListBounded appends value when it is absent and the list
	// holds fewer than max entries (max <= 0 means unbounded). It reports
	// whether value is in the list afterwards.
	AppendToListBounded(ref Ref, field string, value string, max int) (bool, error)

	RemoveFromList(ref Ref, field string, match func(string) bool) error

	CreateAccessGroup(owner string) GroupID
	GrantRole(group GroupID, principal string, role Role) error
	RoleOf(group GroupID, principal string) (Role, bool)
	GroupOf(ref Ref) (GroupID, error)

	// Subscribe registers fn to run after every observed change of ref.
	// Delivery is asynchronous and eventually consistent.
	Subscribe(ref Ref, fn func(Ref)) SubID
	Unsubscribe(ref Ref, id SubID)
}
