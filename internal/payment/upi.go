// Package payment implements the manual UPI payment protocol shared by every
// marketplace that moves money: perturb the amount, build a deep link, render
// a QR, and record a self-reported transaction reference. It is a UX nudge
// against casual non-payment, not a financial control.
package payment

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

const (
	// MinReferenceLen is the minimum number of trailing UTR characters a
	// payer must self-report.
	MinReferenceLen = 4

	qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=350x350&bgcolor=ffffff&data="
)

var ErrShortReference = errors.New("enter at least the last 4 characters of the payment reference")

// PerturbAmount adds random paise in [0.10, 0.99] to the base amount so
// concurrent payments to the same payee stay distinguishable in a bank
// statement. Result is rounded to two decimals.
func PerturbAmount(base float64) float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	paise := binary.LittleEndian.Uint64(b[:])%90 + 10
	return math.Round((base+float64(paise)/100)*100) / 100
}

// DeepLink builds the upi://pay link for the given payee and exact amount.
func DeepLink(vpa, payeeName string, amount float64) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%.2f&cu=INR", vpa, url.QueryEscape(payeeName), amount)
}

// QRImageURL returns a scannable rendering of the deep link, delegated to the
// external image-generation endpoint.
func QRImageURL(deepLink string) string {
	return qrEndpoint + url.QueryEscape(deepLink)
}

// ValidateReference checks the self-reported UTR tail. Client-side only;
// nothing verifies that money actually moved.
func ValidateReference(ref string) error {
	if len(strings.TrimSpace(ref)) < MinReferenceLen {
		return ErrShortReference
	}
	return nil
}

// Request bundles everything a client needs to present a payment step.
type Request struct {
	PayeeVPA  string  `json:"payee_vpa"`
	PayeeName string  `json:"payee_name"`
	Amount    float64 `json:"amount"`
	DeepLink  string  `json:"deep_link"`
	QRUrl     string  `json:"qr_url"`
}

// NewRequest perturbs the base amount and derives the link and QR for it.
func NewRequest(vpa, payeeName string, baseAmount float64) Request {
	amount := PerturbAmount(baseAmount)
	link := DeepLink(vpa, payeeName, amount)
	return Request{
		PayeeVPA:  vpa,
		PayeeName: payeeName,
		Amount:    amount,
		DeepLink:  link,
		QRUrl:     QRImageURL(link),
	}
}

// NewExactRequest skips perturbation; tutor payouts use the exact offer price.
func NewExactRequest(vpa, payeeName string, amount float64) Request {
	link := DeepLink(vpa, payeeName, amount)
	return Request{
		PayeeVPA:  vpa,
		PayeeName: payeeName,
		Amount:    amount,
		DeepLink:  link,
		QRUrl:     QRImageURL(link),
	}
}
