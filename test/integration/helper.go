package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 这个文件包含集成测试的通用辅助函数,遵循DRY原则,
// 将重复的代码(HTTP请求、JSON解析、注册登录流程)封装成可复用的函数
//
// 运行方式:
//   先启动依赖与服务(MySQL/Redis + ./cmd/api),再
//   go test -v ./test/integration/...
// 服务未启动时整个套件会跳过,不会误报失败

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireServer 检查被测服务是否在运行,不在则跳过当前测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("API服务未启动，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID               uint   `json:"id"`
	ISBN             string `json:"isbn"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	Publisher        string `json:"publisher"`
	Price            int64  `json:"price"`
	Stock            int    `json:"stock"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Description      string `json:"description"`
}

// CartData 购物车响应数据
type CartData struct {
	Items []CartLine `json:"items"`
	Total int64      `json:"total"`
}

// CartLine 购物车行
type CartLine struct {
	ISBN         string `json:"isbn"`
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	Stock        int    `json:"stock"`
	Insufficient bool   `json:"insufficient"`
	Subtotal     int64  `json:"subtotal"`
}

// OrderData 结账响应数据
type OrderData struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
}

// doJSON 发送带JSON体的请求并解析响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodDelete, url, nil, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN
// ISBN-13格式:978 + 10位数字,使用时间戳后10位确保唯一
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// ValidCardExpiry 未来一年的卡有效期(MM/YY)
func ValidCardExpiry() string {
	return time.Now().AddDate(1, 0, 0).Format("01/06")
}

// RegisterTestUser 注册测试用户并返回Token
// 封装注册+登录的完整流程,让测试更关注业务逻辑
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// PublishTestBook 上架测试图书并返回ISBN与图书ID
func PublishTestBook(t *testing.T, token string, title string, stock, threshold int) (string, uint) {
	t.Helper()

	isbn := GenerateTestISBN()
	bookReq := map[string]interface{}{
		"title":             title,
		"author":            "测试作者",
		"isbn":              isbn,
		"publisher":         "测试出版社",
		"price":             8900, // 89.00元
		"cost_price":        5000,
		"stock":             stock,
		"reorder_threshold": threshold,
		"description":       "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, token)
	require.Equal(t, 0, bookResp.Code, "图书上架失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return isbn, bookData.ID
}

// AddToCart 加购
func AddToCart(t *testing.T, token, isbn string, qty int) {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/cart/items", map[string]interface{}{
		"isbn":     isbn,
		"quantity": qty,
	}, token)
	require.Equal(t, 0, resp.Code, "加购失败: %s", resp.Message)
}

// Checkout 结账,返回响应(调用方自行断言成功或失败)
func Checkout(t *testing.T, token string) *Response {
	t.Helper()

	return PostJSON(t, BaseURL+"/checkout", map[string]interface{}{
		"card_number":      "6222021234567890",
		"card_expiry":      ValidCardExpiry(),
		"shipping_address": "北京市海淀区中关村大街1号",
	}, token)
}
