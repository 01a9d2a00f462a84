package policy

import (
	"flashdeck/internal/models"

	"gorm.io/gorm"
)

// Visibility filter. Scopes restrict list queries to rows the actor may see;
// the Is*Visible predicates answer the same question for a fetched object.
// Handlers treat an invisible object exactly like a missing one (404), so
// existence of private data never leaks.

// CollectionScope: superusers see everything, authenticated users see public
// collections plus their own, anonymous actors see public only.
func CollectionScope(actor *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if isSuperuser(actor) {
			return db
		}
		if actor != nil {
			return db.Where("collections.public = ? OR collections.user_id = ?", true, actor.ID)
		}
		return db.Where("collections.public = ?", true)
	}
}

// SetScope delegates to the owning collection's rule via a join.
func SetScope(actor *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if isSuperuser(actor) {
			return db
		}
		db = db.Joins("JOIN collections ON collections.id = sets.collection_id")
		if actor != nil {
			return db.Where("collections.public = ? OR collections.user_id = ?", true, actor.ID)
		}
		return db.Where("collections.public = ?", true)
	}
}

// CardScope follows the parent chain card -> set -> collection.
func CardScope(actor *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if isSuperuser(actor) {
			return db
		}
		db = db.Joins("JOIN sets ON sets.id = cards.set_id").
			Joins("JOIN collections ON collections.id = sets.collection_id")
		if actor != nil {
			return db.Where("collections.public = ? OR collections.user_id = ?", true, actor.ID)
		}
		return db.Where("collections.public = ?", true)
	}
}

// CommentScope: a comment is visible to its author and to anyone who can see
// the set it hangs off, which here means the collection is public.
func CommentScope(actor *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if isSuperuser(actor) {
			return db
		}
		db = db.Joins("JOIN sets ON sets.id = comments.set_id").
			Joins("JOIN collections ON collections.id = sets.collection_id")
		if actor != nil {
			return db.Where("collections.public = ? OR comments.user_id = ?", true, actor.ID)
		}
		return db.Where("collections.public = ?", true)
	}
}

// ReviewScope applies no restriction: review reads were never gated on
// collection privacy upstream and that behavior is kept.
func ReviewScope(_ *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db
	}
}

func IsCollectionVisible(actor *models.User, c *models.Collection) bool {
	if c == nil {
		return false
	}
	if c.Public || isSuperuser(actor) {
		return true
	}
	return actor != nil && c.UserID == actor.ID
}

// IsSetVisible requires s.Collection to be loaded.
func IsSetVisible(actor *models.User, s *models.Set) bool {
	if s == nil {
		return false
	}
	return IsCollectionVisible(actor, &s.Collection)
}

// IsCardVisible requires the card's full parent chain to be loaded.
func IsCardVisible(actor *models.User, card *models.Card) bool {
	if card == nil {
		return false
	}
	return IsSetVisible(actor, &card.Set)
}

// IsCommentVisible requires c.Set.Collection to be loaded.
func IsCommentVisible(actor *models.User, c *models.Comment) bool {
	if c == nil {
		return false
	}
	if isSuperuser(actor) || c.Set.Collection.Public {
		return true
	}
	return actor != nil && c.UserID == actor.ID
}

// IsReviewVisible mirrors ReviewScope: always true.
func IsReviewVisible(_ *models.User, r *models.Review) bool {
	return r != nil
}
