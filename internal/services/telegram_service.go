package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/gamezone/internal/models"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatPrice formats an amount in rupees with thousand separators.
func FormatPrice(amount float64) string {
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return "₹" + result.String()
}

// NotifySessionOpened tells the admin chat a desk session was opened or
// its cart was updated.
func (s *TelegramService) NotifySessionOpened(order models.Order, updated bool) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		itemTotal := item.Price * float64(item.Quantity)
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.Name,
			item.Quantity,
			FormatPrice(item.Price),
			FormatPrice(itemTotal),
		))
	}

	title := "🎮 NEW DESK SESSION"
	if updated {
		title = "🛒 ORDER UPDATED"
	}

	message := fmt.Sprintf(`<b>%s</b>
<b>🪑 Desk:</b> %d
<b>👤 Customer:</b> %s
<b>📞 Mobile:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		title,
		order.DeskNumber,
		order.CustomerName,
		order.CustomerMobile,
		itemsList.String(),
		FormatPrice(order.TotalAmount),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifyCheckout tells the admin chat a desk was freed, either by the
// customer checking out or by an admin force-free.
func (s *TelegramService) NotifyCheckout(order models.Order, forced bool) error {
	if s.adminChatID == "" {
		return nil
	}

	title := "✅ CHECKOUT"
	if forced {
		title = "🔓 DESK FORCE-FREED"
	}

	message := fmt.Sprintf(`<b>%s</b>
<b>🪑 Desk:</b> %d
<b>👤 Customer:</b> %s
<b>📞 Mobile:</b> %s
<b>💰 Total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		title,
		order.DeskNumber,
		order.CustomerName,
		order.CustomerMobile,
		FormatPrice(order.TotalAmount),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
