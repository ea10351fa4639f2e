package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService pushes order events to the staff chat. Failures are logged
// and never surfaced to customers.
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

// SendToAdmin sends a message to the staff chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderNotification carries order data for the new-order message.
type OrderNotification struct {
	OrderNumber   string
	Items         []OrderItemNotification
	Total         float64
	Currency      string
	CustomerName  string
	CustomerPhone string
	PaymentMethod string
	Address       string
}

// OrderItemNotification is one line of the order message.
type OrderItemNotification struct {
	Name          string
	QuantityLabel string
	Quantity      int
	Price         float64
}

// NotifyNewOrder tells the staff chat a new order has been placed.
func (s *TelegramService) NotifyNewOrder(n OrderNotification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🧺 <b>New order %s</b>\n\n", n.OrderNumber)
	for _, item := range n.Items {
		fmt.Fprintf(&b, "• %s (%s) × %d — %.2f %s\n", item.Name, item.QuantityLabel, item.Quantity, item.Price, n.Currency)
	}
	fmt.Fprintf(&b, "\nTotal: <b>%.2f %s</b>\n", n.Total, n.Currency)
	fmt.Fprintf(&b, "Payment: %s\n", n.PaymentMethod)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", n.CustomerName, n.CustomerPhone)
	if n.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", n.Address)
	}
	return s.SendToAdmin(b.String())
}

// NotifyPaymentReceived tells the staff chat an online payment went through.
func (s *TelegramService) NotifyPaymentReceived(orderNumber string, amount float64, currency string) error {
	text := fmt.Sprintf("💳 <b>Payment received</b>\nOrder %s\nAmount: %.2f %s", orderNumber, amount, currency)
	return s.SendToAdmin(text)
}
