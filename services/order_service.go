package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-pms/models"
	"hotel-pms/utils"
)

// OrderService persists restaurant orders; it mostly exists so order numbers
// come from one place.
type OrderService struct {
	DB        *gorm.DB
	Sequences *SequenceService
	Notifier  Notifier
}

func NewOrderService(db *gorm.DB, sequences *SequenceService, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{DB: db, Sequences: sequences, Notifier: notifier}
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderInput struct {
	HotelID   uint        `json:"hotelId"`
	TableName string      `json:"tableName"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	OrderedBy string      `json:"orderedBy"`
}

func (s *OrderService) CreateOrder(in OrderInput) (*models.RestaurantOrder, error) {
	fields := map[string]string{}
	if len(in.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	if in.Total < 0 {
		fields["total"] = "total cannot be negative"
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	itemsJSON, err := json.Marshal(in.Items)
	if err != nil {
		return nil, utils.BadRequest("invalid items payload")
	}

	order := &models.RestaurantOrder{
		OrderNo:   s.Sequences.NextOrderNo(time.Now()),
		HotelID:   in.HotelID,
		TableName: strings.TrimSpace(in.TableName),
		Items:     datatypes.JSON(itemsJSON),
		Total:     round2(in.Total),
		Status:    "open",
		OrderedBy: strings.TrimSpace(in.OrderedBy),
	}

	if err := s.DB.Create(order).Error; err != nil {
		return nil, utils.Internal(err)
	}

	s.Notifier.Publish("restaurant:order:created", order.ID)
	return order, nil
}

func (s *OrderService) GetOrder(id uint) (*models.RestaurantOrder, error) {
	var order models.RestaurantOrder
	err := s.DB.First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("order", id)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &order, nil
}

func (s *OrderService) ListOrders(hotelID uint) ([]models.RestaurantOrder, error) {
	q := s.DB.Model(&models.RestaurantOrder{}).Order("created_at DESC")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	var orders []models.RestaurantOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return orders, nil
}
