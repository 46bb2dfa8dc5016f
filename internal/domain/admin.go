package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Admin list entities are display copies of what the restaurant API returns.
// Amounts and statuses are computed upstream.

type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName,omitempty"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Discount      decimal.Decimal `json:"discount,omitempty"`
	VoucherCode   string          `json:"voucherCode,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type Voucher struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	MinOrder      decimal.Decimal `json:"minOrderValue,omitempty"`
	UsageLimit    int             `json:"usageLimit,omitempty"`
	UsedCount     int             `json:"usedCount,omitempty"`
	IsActive      bool            `json:"isActive"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
}

type Reservation struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Phone        string    `json:"phone,omitempty"`
	PartySize    int       `json:"partySize"`
	ReservedAt   time.Time `json:"reservedAt"`
	Status       string    `json:"status"`
	TableNumber  string    `json:"tableNumber,omitempty"`
	SpecialNotes string    `json:"notes,omitempty"`
}

type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints,omitempty"`
}

type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// RevenueStats is the dashboard summary for one reporting period.
type RevenueStats struct {
	Period            string          `json:"period"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	TotalCustomers    int             `json:"totalCustomers"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Series            []RevenuePoint  `json:"series,omitempty"`
}

type RevenuePoint struct {
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Overview holds the counters shown on the admin landing widgets.
type Overview struct {
	PendingOrders     int       `json:"pendingOrders"`
	TodayReservations int       `json:"todayReservations"`
	ActiveVouchers    int       `json:"activeVouchers"`
	MenuItems         int       `json:"menuItems"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
