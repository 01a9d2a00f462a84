package policy

import (
	"flashdeck/internal/models"
)

// Action is a mutating operation gated by the policy table.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entity names the kinds of objects the policy table knows about.
type Entity string

const (
	EntityCollection Entity = "collection"
	EntitySet        Entity = "set"
	EntityCard       Entity = "card"
	EntityComment    Entity = "comment"
	EntityReview     Entity = "review"
	EntityUser       Entity = "user"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNotAuthenticated Reason = "not-authenticated"
	ReasonNotOwner         Reason = "not-owner"
	ReasonQuotaExceeded    Reason = "quota-exceeded"
	ReasonDuplicateReview  Reason = "duplicate-review"
	ReasonImmutableField   Reason = "immutable-field"
	ReasonSelfProtect      Reason = "self-protect"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision          { return Decision{Allowed: true} }
func Deny(r Reason) Decision   { return Decision{Reason: r} }
func (d Decision) Denied() bool { return !d.Allowed }

// Target carries the object being acted on, or for creates the parent it
// would be attached to. Parent chains (Set.Collection, Card.Set.Collection)
// must be loaded before calling Authorize.
type Target struct {
	Collection *models.Collection
	Set        *models.Set
	Card       *models.Card
	Comment    *models.Comment
	Review     *models.Review
	User       *models.User
}

type rule func(actor *models.User, t Target) Decision

// The policy table. One entry per (entity, action); handlers never
// re-implement ownership checks inline.
var rules = map[Entity]map[Action]rule{
	EntityCollection: {
		ActionCreate: authenticated,
		// Only the owner may touch a collection's fields. Superusers get no
		// override here: changing someone's collection would let them change
		// its owner.
		ActionUpdate: collectionOwnerOnly,
		ActionDelete: collectionOwnerOrSuperuser,
	},
	EntitySet: {
		ActionCreate: setParentOwner,
		ActionUpdate: setOwner,
		ActionDelete: setOwnerOrSuperuser,
	},
	EntityCard: {
		ActionCreate: cardParentOwner,
		ActionUpdate: cardOwner,
		ActionDelete: cardOwnerOrSuperuser,
	},
	EntityComment: {
		ActionCreate: commentOnSet,
		// Author-only, even for superusers.
		ActionUpdate: commentAuthorOnly,
		ActionDelete: commentAuthorOnly,
	},
	EntityReview: {
		ActionCreate: reviewOnSet,
		ActionUpdate: reviewAuthorOnly,
		ActionDelete: reviewAuthorOrSuperuser,
	},
	EntityUser: {
		ActionCreate: open, // self-registration
		ActionUpdate: userSelfOrSuperuser,
		ActionDelete: userDelete,
	},
}

// Authorize decides whether actor may perform action on the entity described
// by t. A nil actor is anonymous. Visibility is checked separately; callers
// fetch through the visibility filter first so invisible objects surface as
// not found, never as forbidden.
func Authorize(actor *models.User, entity Entity, action Action, t Target) Decision {
	if r, ok := rules[entity][action]; ok {
		return r(actor, t)
	}
	return Deny(ReasonNotOwner)
}

func isSuperuser(actor *models.User) bool {
	return actor != nil && actor.IsSuperuser
}

func open(_ *models.User, _ Target) Decision { return Allow() }

func authenticated(actor *models.User, _ Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	return Allow()
}

func ownsCollection(actor *models.User, c *models.Collection) bool {
	return actor != nil && c != nil && c.UserID == actor.ID
}

func collectionOwnerOnly(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if !ownsCollection(actor, t.Collection) {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func collectionOwnerOrSuperuser(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if isSuperuser(actor) || ownsCollection(actor, t.Collection) {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

// setParentOwner gates set creation: only the owner of the target collection
// may add sets to it. The daily creation quota is enforced by the services
// layer inside the creating transaction.
func setParentOwner(actor *models.User, t Target) Decision {
	return collectionOwnerOnly(actor, t)
}

func setOwner(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Set == nil || !ownsCollection(actor, &t.Set.Collection) {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func setOwnerOrSuperuser(actor *models.User, t Target) Decision {
	if isSuperuser(actor) {
		return Allow()
	}
	return setOwner(actor, t)
}

func cardParentOwner(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Set == nil || !ownsCollection(actor, &t.Set.Collection) {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func cardOwner(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Card == nil || !ownsCollection(actor, &t.Card.Set.Collection) {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func cardOwnerOrSuperuser(actor *models.User, t Target) Decision {
	if isSuperuser(actor) {
		return Allow()
	}
	return cardOwner(actor, t)
}

// commentOnSet / reviewOnSet: any authenticated user may post on a set whose
// collection is public, and owners may post on their own private sets.
func commentOnSet(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Set == nil {
		return Deny(ReasonNotOwner)
	}
	if t.Set.Collection.Public || ownsCollection(actor, &t.Set.Collection) {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

func commentAuthorOnly(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Comment == nil || t.Comment.UserID != actor.ID {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func reviewOnSet(actor *models.User, t Target) Decision {
	return commentOnSet(actor, t)
}

func reviewAuthorOnly(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.Review == nil || t.Review.UserID != actor.ID {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

func reviewAuthorOrSuperuser(actor *models.User, t Target) Decision {
	if isSuperuser(actor) {
		return Allow()
	}
	return reviewAuthorOnly(actor, t)
}

func userSelfOrSuperuser(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if isSuperuser(actor) {
		return Allow()
	}
	if t.User != nil && t.User.ID == actor.ID {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

// userDelete allows self-deletion and superuser cleanup, but a superuser
// account can only ever be removed by its own owner.
func userDelete(actor *models.User, t Target) Decision {
	if actor == nil {
		return Deny(ReasonNotAuthenticated)
	}
	if t.User == nil {
		return Deny(ReasonNotOwner)
	}
	if t.User.ID == actor.ID {
		return Allow()
	}
	if !isSuperuser(actor) {
		return Deny(ReasonNotOwner)
	}
	if t.User.IsSuperuser {
		return Deny(ReasonSelfProtect)
	}
	return Allow()
}
