package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type cardRequest struct {
	Question   string `json:"question" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	SetID      uint   `json:"flashcard_set" binding:"required"`
}

type cardResponse struct {
	models.Card
	User string `json:"user"` // owner of the collection the card sits in
}

func cardJSON(card *models.Card) cardResponse {
	owner := card.Set.Collection.User.Username
	if owner == "" {
		var s models.Set
		if err := db.DB.Preload("Collection.User").First(&s, card.SetID).Error; err == nil {
			owner = s.Collection.User.Username
		}
	}
	return cardResponse{Card: *card, User: owner}
}

func fetchVisibleCard(c *gin.Context, id uint) *models.Card {
	var card models.Card
	err := db.DB.Scopes(policy.CardScope(actor(c))).
		Preload("Set").Preload("Set.Collection").Preload("Set.Collection.User").
		First(&card, "cards.id = ?", id).Error
	if err != nil {
		notFound(c)
		return nil
	}
	return &card
}

func ListCards(c *gin.Context) {
	var cards []models.Card
	db.DB.Scopes(policy.CardScope(actor(c))).
		Preload("Set").Preload("Set.Collection").Preload("Set.Collection.User").
		Order("cards.id ASC").Find(&cards)

	out := make([]cardResponse, len(cards))
	for i := range cards {
		out[i] = cardJSON(&cards[i])
	}
	c.JSON(http.StatusOK, out)
}

func GetCard(c *gin.Context) {
	card := fetchVisibleCard(c, paramID(c))
	if card == nil {
		return
	}
	c.JSON(http.StatusOK, cardJSON(card))
}

func CreateCard(c *gin.Context) {
	var req cardRequest
	if !bindJSON(c, &req) {
		return
	}

	s := fetchVisibleSet(c, req.SetID)
	if s == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityCard, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		forbidden(c, d)
		return
	}

	card := models.Card{
		Question:   req.Question,
		Answer:     req.Answer,
		Difficulty: req.Difficulty,
		SetID:      s.ID,
	}
	if err := db.DB.Create(&card).Error; err != nil {
		serverError(c, err)
		return
	}
	card.Set = *s
	c.JSON(http.StatusCreated, cardJSON(&card))
}

func UpdateCard(c *gin.Context) {
	card := fetchVisibleCard(c, paramID(c))
	if card == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityCard, policy.ActionUpdate, policy.Target{Card: card}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req cardRequest
	if !bindJSON(c, &req) {
		return
	}

	// Moving a card requires owning the destination set as well.
	if req.SetID != card.SetID {
		dest := fetchVisibleSet(c, req.SetID)
		if dest == nil {
			return
		}
		if d := policy.Authorize(actor(c), policy.EntityCard, policy.ActionCreate, policy.Target{Set: dest}); d.Denied() {
			forbidden(c, d)
			return
		}
		card.SetID = dest.ID
		card.Set = *dest
	}

	card.Question = req.Question
	card.Answer = req.Answer
	card.Difficulty = req.Difficulty
	if err := db.DB.Omit(clause.Associations).Save(card).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, cardJSON(card))
}

func DeleteCard(c *gin.Context) {
	card := fetchVisibleCard(c, paramID(c))
	if card == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityCard, policy.ActionDelete, policy.Target{Card: card}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := db.DB.Delete(&models.Card{}, card.ID).Error; err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
