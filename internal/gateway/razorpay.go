package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is a payment order created at the gateway. Amount is in paise.
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// PaymentGateway creates orders and verifies payment callbacks.
type PaymentGateway interface {
	CreateOrder(amountRupees int64, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayGateway talks to Razorpay through its official SDK.
type RazorpayGateway struct {
	client *razorpay.Client
	secret string
	keyID  string
}

// NewRazorpayGateway creates a gateway client with the given API credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
		keyID:  keyID,
	}
}

// KeyID returns the public API key, exposed to checkout clients.
func (g *RazorpayGateway) KeyID() string { return g.keyID }

// CreateOrder creates a Razorpay order for the given rupee amount. Razorpay
// amounts are in paise.
func (g *RazorpayGateway) CreateOrder(amountRupees int64, receipt string) (*Order, error) {
	amountPaise := amountRupees * 100
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	}
	resp, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, ok := resp["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}
	return &Order{ID: orderID, Amount: amountPaise, Currency: "INR"}, nil
}

// VerifySignature checks the checkout callback signature: HMAC-SHA256 over
// "orderID|paymentID" keyed with the API secret, compared in constant time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.secret, orderID, paymentID, signature)
}

// VerifySignature is the signature check shared with tests.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
