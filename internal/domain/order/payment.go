package order

import (
	"regexp"
	"time"
)

// PaymentInfo 结账时的支付信息
// 设计说明:
// 1. 系统不做真实支付:卡号和有效期只是结账的不透明输入
// 2. 唯一的校验是有效期窗口检查(卡不能已过期)
// 3. 卡号不落库,订单只保留脱敏后的末4位(CardRef)
type PaymentInfo struct {
	CardNumber string // 卡号(12-19位数字)
	CardExpiry string // 有效期,格式MM/YY
}

var cardNumberPattern = regexp.MustCompile(`^[0-9]{12,19}$`)
var cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)

// Validate 校验支付信息
// 有效期按"整月有效"规则:08/26表示2026年8月底之前可用,
// 与处理时刻now所在的月份比较
func (p PaymentInfo) Validate(now time.Time) error {
	if !cardNumberPattern.MatchString(p.CardNumber) {
		return ErrInvalidCard
	}

	m := cardExpiryPattern.FindStringSubmatch(p.CardExpiry)
	if m == nil {
		return ErrInvalidCard
	}

	month := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	year := 2000 + int(m[2][0]-'0')*10 + int(m[2][1]-'0')

	// 卡在其有效期月份的最后一刻之前都可用
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return ErrExpiredPayment
	}

	return nil
}

// MaskedCard 返回脱敏卡号(仅末4位)
func (p PaymentInfo) MaskedCard() string {
	if len(p.CardNumber) < 4 {
		return "****"
	}
	return "****" + p.CardNumber[len(p.CardNumber)-4:]
}
