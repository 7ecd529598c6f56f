package gateway

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	TelegramID int64  `json:"tg_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	Language   string `json:"language"`
	CreatedAt  string `json:"created_at"`
}

type Subscription struct {
	ID          int64  `json:"id"`
	ServiceID   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	Status      string `json:"status"`
	UntilDate   string `json:"until_date"`
}

type SubscriptionPage struct {
	Items []Subscription `json:"items"`
	Pages int            `json:"pages"`
}

type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Plan struct {
	Code     string          `json:"code"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Months   int             `json:"months"`
}

type Provider struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type PaymentOptions struct {
	Providers []Provider `json:"providers"`
	Plans     []Plan     `json:"plans"`
}

// Payment tolerates both backend shapes: fresh responses use
// payment_id and pay_link, list items use id and link.
type Payment struct {
	PaymentID   string          `json:"payment_id"`
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	PayLink     string          `json:"pay_link"`
	Link        string          `json:"link"`
	QR          string          `json:"qr"`
	QRURL       string          `json:"qr_url"`
	ExpiresAt   string          `json:"expires_at"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	ExternalID  string          `json:"external_id"`
}

func (p Payment) EffectiveID() string {
	if p.PaymentID != "" {
		return p.PaymentID
	}
	return p.ID
}

func (p Payment) EffectiveLink() string {
	if p.PayLink != "" {
		return p.PayLink
	}
	return p.Link
}

func (p Payment) EffectiveQR() string {
	if p.QR != "" {
		return p.QR
	}
	return p.QRURL
}

type PaymentPage struct {
	Items []Payment `json:"items"`
	Pages int       `json:"pages"`
}

type AdminUser struct {
	TelegramID    int64          `json:"tg_id"`
	Username      string         `json:"username"`
	FirstName     string         `json:"first_name"`
	Language      string         `json:"language"`
	CreatedAt     string         `json:"created_at"`
	Subscriptions []Subscription `json:"subscriptions"`
}

type RecipientsPage struct {
	Items      []int64 `json:"items"`
	NextCursor string  `json:"next_cursor"`
}

type AdminStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	PaymentsToday       int64 `json:"payments_today"`
	NewUsersToday       int64 `json:"new_users_today"`
}

type TelemetryEvent struct {
	TelegramID int64             `json:"tg_id"`
	Event      string            `json:"event"`
	Props      map[string]string `json:"props,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
