package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"food-ordering-api/events"
	"food-ordering-api/logger"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/repository"
	"food-ordering-api/statemachine"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	store    *repository.Store
	gateway  payment.Gateway
	events   events.Publisher
	log      *logger.Logger
	currency string
	validate *validator.Validate
}

func NewOrderService(
	store *repository.Store,
	gateway payment.Gateway,
	publisher events.Publisher,
	log *logger.Logger,
	currency string,
) *OrderService {
	return &OrderService{
		store:    store,
		gateway:  gateway,
		events:   publisher,
		log:      log,
		currency: currency,
		validate: newValidator(),
	}
}

// ----- DTOs from handlers -----

type ItemRef struct {
	ID uint `json:"id" validate:"required"`
}

// AddonGroupInput mirrors the menu's grouping; only the item IDs are persisted.
type AddonGroupInput struct {
	ID    uint      `json:"id"`
	Items []ItemRef `json:"items" validate:"dive"`
}

type OrderItemInput struct {
	MenuItem ItemRef           `json:"menuItem"`
	Quantity int               `json:"quantity" validate:"min=1"`
	Addons   []AddonGroupInput `json:"addons" validate:"dive"`
}

type CreateOrderInput struct {
	RestaurantID uint                `json:"restaurantId"`
	BranchID     uint                `json:"branchId"`
	Items        []OrderItemInput    `json:"items" validate:"dive"`
	DeliveryType models.DeliveryType `json:"deliveryType" validate:"omitempty,oneof=PICKUP DELIVERY"`
	Subtotal     decimal.NullDecimal `json:"subtotal"`
	Discount     decimal.Decimal     `json:"discount"`
	PlatformFee  decimal.Decimal     `json:"platformFee"`
	PaymentFee   decimal.Decimal     `json:"paymentFee"`
	Total        decimal.NullDecimal `json:"total"`
}

type CreateOrderResult struct {
	Order           *models.Order `json:"order"`
	ClientSecret    string        `json:"clientSecret"`
	PaymentIntentID string        `json:"paymentIntentId"`
}

type UpdateStatusInput struct {
	OrderID uint   `json:"orderId"`
	Status  string `json:"status"`
}

// ListFilter holds the optional query scopes; nil means not supplied.
type ListFilter struct {
	RestaurantID    *uint
	BranchManagerID *uint
}

// ----- Retrieval -----

// List returns the orders visible to the caller, newest first.
func (s *OrderService) List(ctx context.Context, id models.Identity, f ListFilter) ([]models.Order, error) {
	if id.UserID == 0 {
		return nil, errUnauthenticated
	}

	var (
		orders []models.Order
		err    error
	)
	switch {
	case f.RestaurantID != nil && id.Role == models.RoleRestaurantAdmin:
		rest, ferr := s.store.Restaurants.FindRestaurant(ctx, *f.RestaurantID)
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, notFound("Restaurant not found")
		}
		if ferr != nil {
			return nil, s.fail(ctx, "order_list_failed", internalError("Failed to fetch orders", ferr))
		}
		if rest.AdminID != id.UserID {
			return nil, forbidden("Not authorized to view orders for this restaurant")
		}
		orders, err = s.store.Orders.ListByRestaurant(ctx, rest.ID)

	case f.BranchManagerID != nil && id.Role == models.RoleBranchManager:
		if *f.BranchManagerID != id.UserID {
			return nil, forbidden("Not authorized to view orders for this manager")
		}
		branchIDs, ferr := s.store.Restaurants.BranchIDsManagedBy(ctx, id.UserID)
		if ferr != nil {
			return nil, s.fail(ctx, "order_list_failed", internalError("Failed to fetch orders", ferr))
		}
		orders, err = s.store.Orders.ListByBranches(ctx, branchIDs)

	default:
		orders, err = s.store.Orders.ListByUser(ctx, id.UserID)
	}
	if err != nil {
		return nil, s.fail(ctx, "order_list_failed", internalError("Failed to fetch orders", err))
	}
	return orders, nil
}

// ----- Creation -----

// Create validates the payload against the menu, persists the order and opens
// a payment intent for its total.
func (s *OrderService) Create(ctx context.Context, id models.Identity, in CreateOrderInput) (*CreateOrderResult, error) {
	if id.UserID == 0 {
		return nil, errUnauthenticated
	}
	if missing := missingCreateFields(in); len(missing) > 0 {
		return nil, validationError("Missing required fields", map[string]any{
			"missing":     missing,
			"branchId":    in.BranchID,
			"itemsLength": len(in.Items),
		})
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError("Invalid order", map[string]any{"fields": fieldErrors(err)})
	}
	if negative := negativeAmounts(in); len(negative) > 0 {
		return nil, validationError("Amounts must not be negative", map[string]any{"fields": negative})
	}
	deliveryType := in.DeliveryType
	if deliveryType == "" {
		deliveryType = models.DeliveryPickup
	}

	branch, err := s.store.Restaurants.FindBranch(ctx, in.BranchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Branch not found")
	}
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", internalError("Failed to process order", err))
	}
	if in.RestaurantID != 0 && in.RestaurantID != branch.RestaurantID {
		return nil, validationError("Branch does not belong to restaurant", map[string]any{
			"restaurantId": in.RestaurantID,
			"branchId":     branch.ID,
		})
	}

	lines, verr := s.resolveLines(ctx, branch.RestaurantID, in.Items)
	if verr != nil {
		return nil, verr
	}

	subtotal := subtotalOf(lines)
	expected := expectedTotal(subtotal, in.Discount, in.PlatformFee, in.PaymentFee)
	if !totalsMatch(expected, in.Total.Decimal) {
		details := map[string]any{"expected": expected.StringFixed(2), "supplied": in.Total.Decimal.StringFixed(2)}
		if in.Subtotal.Valid {
			details["subtotal"] = subtotal.StringFixed(2)
		}
		return nil, validationError("Total does not match order contents", details)
	}
	// the client total only has to agree; the server figure is what gets charged
	total := expected.Round(2)

	customerName := id.Name
	if customerName == "" {
		customerName = "Guest"
	}
	order := &models.Order{
		RestaurantID:         branch.RestaurantID,
		BranchID:             branch.ID,
		UserID:               id.UserID,
		CustomerName:         customerName,
		Status:               models.StatusPending,
		PaymentStatus:        models.PaymentPending,
		DeliveryType:         deliveryType,
		Subtotal:             subtotal,
		DeliveryCharge:       decimal.Zero,
		DeliveryDiscount:     decimal.Zero,
		OrderDiscount:        in.Discount,
		PlatformFee:          in.PlatformFee,
		PaymentProcessingFee: in.PaymentFee,
		Total:                total,
		OrderItems:           make([]models.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			MenuItemID: l.menuItem.ID,
			Quantity:   l.quantity,
			Addons:     l.addons,
		})
	}

	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.store.Orders.Create(tx, order); err != nil {
			return err
		}
		return s.store.Orders.AppendHistory(tx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: id.UserID,
			Note:      "Order placed",
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", persistenceError("Failed to process order", err))
	}
	s.log.Info(ctx, "order_created", "order persisted",
		zap.Uint64("order_id", uint64(order.ID)),
		zap.Int("items", len(order.OrderItems)),
		zap.String("total", total.StringFixed(2)),
	)

	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		AmountMinor: payment.ToMinorUnits(total),
		Currency:    s.currency,
		Metadata: map[string]string{
			"orderId": strconv.FormatUint(uint64(order.ID), 10),
			"userId":  strconv.FormatUint(uint64(id.UserID), 10),
		},
	})
	if err != nil {
		if merr := s.movePayment(ctx, order, models.PaymentFailed, statemachine.ActorSystem, nil); merr != nil {
			s.log.Error(ctx, "payment_state_failed", "could not mark order payment as failed", merr,
				zap.Uint64("order_id", uint64(order.ID)))
		}
		s.publish(ctx, events.NewOrderEvent(events.OrderPaymentUpdated, order, id.UserID))
		perr := internalError("Failed to process order", err)
		perr.Details = map[string]any{"orderId": order.ID, "paymentStatus": order.PaymentStatus}
		return nil, s.fail(ctx, "payment_intent_failed", perr)
	}

	if err := s.movePayment(ctx, order, models.PaymentInitiated, statemachine.ActorSystem, &intent.ID); err != nil {
		return nil, s.fail(ctx, "payment_state_failed", AsError(err))
	}
	s.log.Info(ctx, "payment_intent_created", "payment intent created",
		zap.Uint64("order_id", uint64(order.ID)),
		zap.String("payment_intent_id", intent.ID),
	)

	created, err := s.store.Orders.FindDetailed(ctx, order.ID)
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", internalError("Failed to process order", err))
	}
	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, created, id.UserID))

	return &CreateOrderResult{
		Order:           created,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func missingCreateFields(in CreateOrderInput) []string {
	var missing []string
	if in.BranchID == 0 {
		missing = append(missing, "branchId")
	}
	if len(in.Items) == 0 {
		missing = append(missing, "items")
	}
	if !in.Total.Valid || in.Total.Decimal.IsZero() {
		missing = append(missing, "total")
	}
	return missing
}

func negativeAmounts(in CreateOrderInput) []string {
	var fields []string
	check := func(name string, d decimal.Decimal) {
		if d.IsNegative() {
			fields = append(fields, name)
		}
	}
	check("discount", in.Discount)
	check("platformFee", in.PlatformFee)
	check("paymentFee", in.PaymentFee)
	check("total", in.Total.Decimal)
	return fields
}

// resolveLines checks that every referenced menu item and add-on exists and
// belongs to the restaurant, and pairs each input line with its records.
func (s *OrderService) resolveLines(ctx context.Context, restaurantID uint, items []OrderItemInput) ([]priceLine, error) {
	var menuIDs, addonIDs []uint
	for _, it := range items {
		menuIDs = append(menuIDs, it.MenuItem.ID)
		addonIDs = append(addonIDs, flattenAddons(it.Addons)...)
	}
	menuIDs, addonIDs = distinct(menuIDs), distinct(addonIDs)

	menuItems, err := s.store.Menu.FindMenuItems(ctx, menuIDs)
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", internalError("Failed to process order", err))
	}
	if len(menuItems) != len(menuIDs) {
		found := make([]uint, len(menuItems))
		for i, m := range menuItems {
			found[i] = m.ID
		}
		return nil, validationError("One or more menu items not found", map[string]any{
			"requested": menuIDs,
			"found":     found,
		})
	}

	menuByID := make(map[uint]models.MenuItem, len(menuItems))
	var foreign []uint
	for _, m := range menuItems {
		menuByID[m.ID] = m
		if m.RestaurantID != restaurantID {
			foreign = append(foreign, m.ID)
		}
		if !m.IsAvailable {
			return nil, validationError("Menu item '"+m.Name+"' is not available", map[string]any{"menuItemId": m.ID})
		}
	}
	if len(foreign) > 0 {
		return nil, validationError("Menu items do not belong to this restaurant", map[string]any{"menuItemIds": foreign})
	}

	addons, err := s.store.Menu.FindAddons(ctx, addonIDs)
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", internalError("Failed to process order", err))
	}
	if len(addons) != len(addonIDs) {
		found := make([]uint, len(addons))
		for i, a := range addons {
			found[i] = a.ID
		}
		return nil, validationError("One or more add-ons not found", map[string]any{
			"requested": addonIDs,
			"found":     found,
		})
	}
	foreignAddons, err := s.store.Menu.ForeignAddonIDs(ctx, restaurantID, addonIDs)
	if err != nil {
		return nil, s.fail(ctx, "order_create_failed", internalError("Failed to process order", err))
	}
	if len(foreignAddons) > 0 {
		return nil, validationError("Add-ons do not belong to this restaurant", map[string]any{"addonIds": foreignAddons})
	}
	addonByID := make(map[uint]models.Addon, len(addons))
	for _, a := range addons {
		addonByID[a.ID] = a
	}

	lines := make([]priceLine, 0, len(items))
	for _, it := range items {
		line := priceLine{menuItem: menuByID[it.MenuItem.ID], quantity: it.Quantity}
		for _, aid := range distinct(flattenAddons(it.Addons)) {
			line.addons = append(line.addons, addonByID[aid])
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func flattenAddons(groups []AddonGroupInput) []uint {
	var ids []uint
	for _, g := range groups {
		for _, a := range g.Items {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// distinct keeps the first occurrence of each ID, preserving order
func distinct(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ----- Status update -----

// UpdateStatus sets a new fulfilment status if the caller manages the order.
// Setting the current status again is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, id models.Identity, in UpdateStatusInput) (*models.Order, error) {
	if id.UserID == 0 {
		return nil, errUnauthenticated
	}
	status := strings.TrimSpace(in.Status)
	if in.OrderID == 0 || status == "" {
		return nil, validationError("Order ID and status are required", nil)
	}

	o, err := s.store.Orders.FindForAuthorization(ctx, in.OrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, s.fail(ctx, "order_update_failed", internalError("Failed to update order", err))
	}
	if !canManage(id, o) {
		return nil, forbidden("Not authorized to update this order")
	}

	if o.Status != status {
		prev := o.Status
		err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
			if err := s.store.Orders.UpdateStatus(tx, o.ID, status); err != nil {
				return err
			}
			return s.store.Orders.AppendHistory(tx, &models.OrderStatusHistory{
				OrderID:    o.ID,
				FromStatus: prev,
				ToStatus:   status,
				ChangedBy:  id.UserID,
				Note:       "Updated by " + strings.ToLower(string(id.Role)),
			})
		})
		if err != nil {
			return nil, s.fail(ctx, "order_update_failed", persistenceError("Failed to update order", err))
		}
		o.Status = status
		s.log.Info(ctx, "order_status_changed", "order status updated",
			zap.Uint64("order_id", uint64(o.ID)),
			zap.String("from", prev),
			zap.String("to", status),
			zap.Uint64("changed_by", uint64(id.UserID)),
		)
		s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, o, id.UserID))
	}

	updated, err := s.store.Orders.FindDetailed(ctx, o.ID)
	if err != nil {
		return nil, s.fail(ctx, "order_update_failed", internalError("Failed to update order", err))
	}
	return updated, nil
}

// canManage reports whether the caller is staff responsible for the order.
// o must be loaded with Branch.Restaurant and Branch.Managers.
func canManage(id models.Identity, o *models.Order) bool {
	switch id.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleRestaurantAdmin:
		return o.Branch != nil && o.Branch.Restaurant != nil && o.Branch.Restaurant.AdminID == id.UserID
	case models.RoleBranchManager:
		if o.Branch == nil {
			return false
		}
		for _, m := range o.Branch.Managers {
			if m.ID == id.UserID {
				return true
			}
		}
	}
	return false
}

// ----- History -----

// History returns the status audit trail to the customer who placed the order
// or to staff who may update it.
func (s *OrderService) History(ctx context.Context, id models.Identity, orderID uint) ([]models.OrderStatusHistory, error) {
	if id.UserID == 0 {
		return nil, errUnauthenticated
	}
	o, err := s.store.Orders.FindForAuthorization(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, s.fail(ctx, "order_history_failed", internalError("Failed to fetch order history", err))
	}
	if o.UserID != id.UserID && !canManage(id, o) {
		return nil, forbidden("Not authorized to view this order")
	}

	history, err := s.store.Orders.History(ctx, o.ID)
	if err != nil {
		return nil, s.fail(ctx, "order_history_failed", internalError("Failed to fetch order history", err))
	}
	return history, nil
}

// ----- Payment callbacks -----

var paymentTargets = map[payment.EventType]models.PaymentStatus{
	payment.EventPaymentSucceeded: models.PaymentConfirmed,
	payment.EventPaymentFailed:    models.PaymentFailed,
}

// HandlePaymentEvent applies a processor callback to the order's payment
// sub-state. It reports false for event types the service does not track.
func (s *OrderService) HandlePaymentEvent(ctx context.Context, ev payment.Event) (bool, error) {
	target, ok := paymentTargets[ev.Type]
	if !ok {
		s.log.Debug(ctx, "payment_event_ignored", "ignoring payment event", zap.String("type", string(ev.Type)))
		return false, nil
	}

	o, err := s.store.Orders.FindByPaymentIntent(ctx, ev.PaymentIntentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, notFound("Order not found for payment intent")
	}
	if err != nil {
		return true, s.fail(ctx, "payment_event_failed", internalError("Failed to process payment event", err))
	}
	if ev.OrderID != 0 && ev.OrderID != o.ID {
		return true, validationError("Payment intent does not belong to order", map[string]any{
			"orderId":         ev.OrderID,
			"paymentIntentId": ev.PaymentIntentID,
		})
	}

	// processors redeliver callbacks
	if o.PaymentStatus == target {
		return true, nil
	}
	if err := s.movePayment(ctx, o, target, statemachine.ActorGateway, nil); err != nil {
		return true, err
	}
	s.log.Info(ctx, "payment_status_changed", "payment status updated",
		zap.Uint64("order_id", uint64(o.ID)),
		zap.String("payment_status", string(target)),
	)
	s.publish(ctx, events.NewOrderEvent(events.OrderPaymentUpdated, o, 0))
	return true, nil
}

// movePayment applies a payment transition guarded by the state machine and by
// the stored state, so concurrent callbacks cannot both win.
func (s *OrderService) movePayment(ctx context.Context, o *models.Order, to models.PaymentStatus, actor statemachine.Actor, intentID *string) error {
	if err := statemachine.CanTransition(o.PaymentStatus, to, actor); err != nil {
		return validationError("Invalid payment transition", map[string]any{
			"current":         o.PaymentStatus,
			"requested":       to,
			"reason":          err.Error(),
			"validNextStates": statemachine.ValidTransitionsFrom(o.PaymentStatus),
		})
	}
	changed, err := s.store.Orders.UpdatePayment(s.store.DB.WithContext(ctx), o.ID, o.PaymentStatus, to, intentID)
	if err != nil {
		return persistenceError("Failed to update payment status", err)
	}
	if !changed {
		return &Error{Kind: KindConflict, Message: "Order payment state changed concurrently"}
	}
	o.PaymentStatus = to
	if intentID != nil {
		o.PaymentIntentID = intentID
	}
	return nil
}

// ----- helpers -----

func (s *OrderService) publish(ctx context.Context, ev events.OrderEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Error(ctx, "event_publish_failed", "could not publish order event", err,
			zap.String("type", string(ev.Type)),
			zap.Uint64("order_id", uint64(ev.OrderID)),
		)
	}
}

// fail logs internal failures once, at the service boundary
func (s *OrderService) fail(ctx context.Context, action string, e *Error) *Error {
	if e.Kind == KindInternal {
		s.log.Error(ctx, action, e.Message, e.Err)
	} else {
		s.log.Warn(ctx, action, e.Message, zap.String("kind", e.Kind.String()))
	}
	return e
}
