package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentMethod string
type PaymentStatus string
type PaymentGateway string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodKhalti       PaymentMethod = "KHALTI"
	PaymentMethodEsewa        PaymentMethod = "ESEWA"
	PaymentMethodMobileWallet PaymentMethod = "MOBILE_WALLET"

	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"

	GatewayCash     PaymentGateway = "CASH"
	GatewayStripe   PaymentGateway = "STRIPE"
	GatewayRazorpay PaymentGateway = "RAZORPAY"
	GatewayTelr     PaymentGateway = "TELR"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodKhalti, PaymentMethodEsewa, PaymentMethodMobileWallet:
		return m, true
	}
	return "", false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return st, true
	}
	return "", false
}

// Payment is append-only. A refund is a separate record with a negative amount
// pointing back at the original through OriginalPaymentID. GatewayRef is the
// provider reference that confirmed the payment; each one settles at most one
// payment, and it is NULL for cash and refunds.
type Payment struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID           string          `gorm:"type:varchar(36);index;not null" json:"orderId"`
	Order             *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method            PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Status            PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Gateway           PaymentGateway  `gorm:"type:varchar(20);uniqueIndex:idx_payments_gateway_ref,priority:1" json:"gateway"`
	GatewayRef        *string         `gorm:"size:100;uniqueIndex:idx_payments_gateway_ref,priority:2" json:"gatewayRef,omitempty"`
	TransactionID     string          `gorm:"size:100" json:"transactionId"`
	OriginalPaymentID *string         `gorm:"type:varchar(36);index" json:"originalPaymentId"`
	Reason            *string         `gorm:"size:200" json:"reason"`
	Metadata          datatypes.JSON  `json:"metadata"`
	ProcessedBy       string          `gorm:"type:varchar(36);not null" json:"processedBy"`
	Processor         *User           `gorm:"foreignKey:ProcessedBy" json:"user,omitempty"`
	CreatedAt         time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p Payment) IsRefund() bool {
	return p.Amount.IsNegative()
}

// CompletedTotal sums the amounts of COMPLETED payments.
func CompletedTotal(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total
}
