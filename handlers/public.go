package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"food-ordering-api/models"
	"food-ordering-api/repository"
	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	store *repository.Store
}

func NewCatalogHandler(store *repository.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// ListBranches returns the branches of a restaurant (public)
func (h *CatalogHandler) ListBranches(c *gin.Context) {
	restaurant, ok := h.loadRestaurant(c)
	if !ok {
		return
	}

	branches, err := h.store.Restaurants.ListBranches(c.Request.Context(), restaurant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load branches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant.Name,
		"count":      len(branches),
		"branches":   branches,
	})
}

// GetMenu returns the menu items and add-on groups of a restaurant (public)
func (h *CatalogHandler) GetMenu(c *gin.Context) {
	restaurant, ok := h.loadRestaurant(c)
	if !ok {
		return
	}

	items, groups, err := h.store.Menu.MenuForRestaurant(c.Request.Context(), restaurant.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}

	// optional filter by category
	if category := c.Query("category"); category != "" {
		filtered := items[:0]
		for _, it := range items {
			if it.Category == category {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant":  restaurant.Name,
		"count":       len(items),
		"menu":        items,
		"addonGroups": groups,
	})
}

func (h *CatalogHandler) loadRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant id"})
		return nil, false
	}

	restaurant, err := h.store.Restaurants.FindRestaurant(c.Request.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load restaurant"})
		return nil, false
	}
	return restaurant, true
}

// GetPaymentStates describes the payment state machine for informational purposes
func GetPaymentStates(c *gin.Context) {
	var terminal []models.PaymentStatus
	for _, s := range []models.PaymentStatus{
		models.PaymentPending, models.PaymentInitiated, models.PaymentFailed, models.PaymentConfirmed,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"initialState":   models.PaymentPending,
		"stateMachine":   statemachine.AllTransitions(),
		"terminalStates": terminal,
		"description":    "Order payment lifecycle",
	})
}
