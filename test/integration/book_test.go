package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：图书模块集成测试
//
// 覆盖上架、列表、详情三条路径。
// 注意价格一律以"分"为单位传输，展示字段另给"元"的字符串。

// TestBookPublish 测试图书上架
func TestBookPublish(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "publisher")

	t.Run("正常上架", func(t *testing.T) {
		isbn := GenerateTestISBN()
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":              isbn,
			"title":             "集成测试的书",
			"author":            "测试作者",
			"publisher":         "集成出版社",
			"price":             12900,
			"cost_price":        8000,
			"stock":             20,
			"reorder_threshold": 5,
		}, token)

		require.Equal(t, 0, resp.Code, "上架应成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, isbn, data.ISBN)
		assert.Equal(t, int64(12900), data.Price)
		assert.Equal(t, 20, data.Stock)
	})

	t.Run("未登录不能上架", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":      GenerateTestISBN(),
			"title":     "匿名的书",
			"author":    "无名氏",
			"publisher": "集成出版社",
			"price":     5000,
			"stock":     1,
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("重复ISBN被拒绝", func(t *testing.T) {
		isbn, _ := PublishTestBook(t, token, "原版", 10, 3)

		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":      isbn,
			"title":     "盗版",
			"author":    "测试作者",
			"publisher": "集成出版社",
			"price":     100,
			"stock":     1,
		}, token)
		assert.NotEqual(t, 0, resp.Code, "同一ISBN不允许重复上架")
	})

	t.Run("价格必须为正", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":      GenerateTestISBN(),
			"title":     "免费的书",
			"author":    "测试作者",
			"publisher": "集成出版社",
			"price":     0,
			"stock":     1,
		}, token)
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestBookListAndDetail 测试图书列表与详情
func TestBookListAndDetail(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "book_list")
	_, bookID := PublishTestBook(t, token, "列表测试的书", 15, 4)

	t.Run("列表可以匿名访问", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?page=1&size=10", "")
		require.Equal(t, 0, resp.Code)

		var data struct {
			List  []BookData `json:"list"`
			Total int64      `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotZero(t, data.Total)
	})

	t.Run("详情返回库存与阈值", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
		require.Equal(t, 0, resp.Code)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "列表测试的书", data.Title)
		assert.Equal(t, 15, data.Stock)
		assert.Equal(t, 4, data.ReorderThreshold)
	})

	t.Run("不存在的图书", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books/99999999", "")
		assert.NotEqual(t, 0, resp.Code)
	})
}
