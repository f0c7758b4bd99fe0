package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：用户模块集成测试
//
// 集成测试 vs 单元测试：
// - 单元测试：Mock外部依赖（数据库、Redis），测试单个函数的逻辑
// - 集成测试：使用真实的数据库和Redis，测试完整的API流程
//
// 集成测试的价值：
// 1. 验证各组件协同工作（Handler → UseCase → Service → Repository → Database）
// 2. 发现配置错误（如数据库连接、依赖注入）
// 3. 验证业务流程的完整性

// TestUserRegister 测试用户注册功能
func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("register")
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "注册测试",
		}, "")

		require.Equal(t, 0, resp.Code, "注册应成功: %s", resp.Message)

		var data RegisterData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, email, data.Email)
		assert.Equal(t, "customer", data.Role, "注册用户角色固定为customer")
		assert.NotZero(t, data.ID)
	})

	t.Run("重复邮箱注册失败", func(t *testing.T) {
		email := GenerateTestEmail("dup")
		req := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "重复注册",
		}

		first := PostJSON(t, BaseURL+"/users/register", req, "")
		require.Equal(t, 0, first.Code)

		second := PostJSON(t, BaseURL+"/users/register", req, "")
		assert.NotEqual(t, 0, second.Code, "重复邮箱必须被拒绝")
	})

	t.Run("非法邮箱格式", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    "not-an-email",
			"password": "Test1234",
			"nickname": "格式测试",
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestUserLoginLogout 测试登录/登出流程
func TestUserLoginLogout(t *testing.T) {
	RequireServer(t)

	email, token := RegisterTestUser(t, "login_flow")

	t.Run("Token可以访问受保护接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/profile", token)
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("错误密码登录失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "WrongPass1",
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("未带Token访问受保护接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/profile", "")
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("登出后Token进入黑名单", func(t *testing.T) {
		logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
		require.Equal(t, 0, logoutResp.Code, "登出应成功: %s", logoutResp.Message)

		profileResp := GetJSON(t, BaseURL+"/profile", token)
		assert.NotEqual(t, 0, profileResp.Code, "登出后的Token不能再用")
	})
}
