package services

import (
	"encoding/json"
	"errors"
	"log"

	"gamer-network-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService persists per-user notifications and pushes a live
// counter nudge after every write. Rows are owned by the recipient; only
// the recipient may mark or delete them.
type NotificationService struct {
	DB *gorm.DB
	RT Pusher
}

func NewNotificationService(db *gorm.DB, rt Pusher) *NotificationService {
	return &NotificationService{DB: db, RT: rt}
}

// Notify writes one notification. Failures are logged, not returned — a
// missed notification never fails the mutation that produced it.
func (s *NotificationService) Notify(userID, ntype string, message *string, data map[string]interface{}) {
	payload := "{}"
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			payload = string(raw)
		}
	}

	n := models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    ntype,
		Message: message,
		Data:    payload,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Printf("[Notify] write failed for %s: %v", userID, err)
		return
	}
	if s.RT != nil {
		s.RT.EmitNotificationsUpdate(userID)
	}
}

// GetUserNotifications lists the authenticated user's notifications,
// newest first.
func (s *NotificationService) GetUserNotifications(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	query := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Find(&notifications).Error; err != nil {
		log.Printf("DB Error fetching notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	var unread int64
	s.DB.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread)

	return c.JSON(fiber.Map{"notifications": notifications, "unread_count": unread})
}

// MarkNotificationRead flips is_read on one owned notification
// (idempotent).
func (s *NotificationService) MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	var n models.Notification
	if err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if !n.IsRead {
		if err := s.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark as read"})
		}
	}
	return c.JSON(fiber.Map{"message": "OK", "id": n.ID, "is_read": true})
}

// DeleteNotification removes one owned notification.
func (s *NotificationService) DeleteNotification(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	res := s.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete notification"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}
