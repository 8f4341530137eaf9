package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// withDetail preloads what every order response carries
func withDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderItems.MenuItem").
		Preload("OrderItems.Addons").
		Preload("Branch")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at desc").Order("id desc")
}

func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.WithContext(ctx).Scopes(withDetail, newestFirst).
		Where("restaurant_id = ?", restaurantID).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListByBranches(ctx context.Context, branchIDs []uint) ([]models.Order, error) {
	orders := []models.Order{}
	if len(branchIDs) == 0 {
		return orders, nil
	}
	err := r.DB.WithContext(ctx).Scopes(withDetail, newestFirst).
		Where("branch_id IN ?", branchIDs).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.WithContext(ctx).Scopes(withDetail, newestFirst).
		Where("user_id = ?", userID).
		Find(&orders).Error
	return orders, err
}

// Create inserts the order with its items and their add-on links
func (r *OrderRepository) Create(tx *gorm.DB, o *models.Order) error {
	return tx.Create(o).Error
}

// FindDetailed loads an order with items, menu items, add-ons and branch
func (r *OrderRepository) FindDetailed(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Scopes(withDetail).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindForAuthorization loads an order with the branch's restaurant and managers
func (r *OrderRepository) FindForAuthorization(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Branch.Restaurant").
		Preload("Branch.Managers").
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(tx *gorm.DB, orderID uint, status string) error {
	return tx.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error
}

// UpdatePayment moves the payment sub-state only if it is still `from`, and
// reports whether a row changed.
func (r *OrderRepository) UpdatePayment(tx *gorm.DB, orderID uint, from, to models.PaymentStatus, intentID *string) (bool, error) {
	updates := map[string]interface{}{"payment_status": to}
	if intentID != nil {
		updates["payment_intent_id"] = *intentID
	}
	res := tx.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *OrderRepository) AppendHistory(tx *gorm.DB, h *models.OrderStatusHistory) error {
	return tx.Create(h).Error
}

func (r *OrderRepository) History(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").Order("id asc").
		Find(&history).Error
	return history, err
}
