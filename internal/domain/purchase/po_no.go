package purchase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GeneratePONo 生成采购单号
// 格式:PO + 12位大写十六进制(取自UUID前段)
// 采购单量远小于客户订单,不需要时间有序,唯一性比可读性重要
func GeneratePONo() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("PO%s", id[:12])
}
