package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 固定"当前时刻",让有效期断言不随运行时间漂移
var paymentNow = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

func TestPaymentInfo_Validate(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		expiry  string
		wantErr error
	}{
		{"有效卡", "6222021234567890", "12/27", nil},
		{"当月整月有效", "6222021234567890", "08/26", nil},
		{"上个月已过期", "6222021234567890", "07/26", ErrExpiredPayment},
		{"去年已过期", "6222021234567890", "12/25", ErrExpiredPayment},
		{"卡号含字母", "6222abcd12345678", "12/27", ErrInvalidCard},
		{"卡号太短", "62220212", "12/27", ErrInvalidCard},
		{"有效期格式错", "6222021234567890", "2027-12", ErrInvalidCard},
		{"月份越界", "6222021234567890", "13/27", ErrInvalidCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PaymentInfo{CardNumber: tt.card, CardExpiry: tt.expiry}
			err := p.Validate(paymentNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPaymentInfo_MaskedCard(t *testing.T) {
	p := PaymentInfo{CardNumber: "6222021234567890"}
	assert.Equal(t, "****7890", p.MaskedCard())
}
