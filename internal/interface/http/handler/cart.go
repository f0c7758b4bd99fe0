package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookmall/internal/application/cart"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// CartHandler 购物车HTTP处理器
// 购物车接口全部要求登录,userID一律取自认证中间件
type CartHandler struct {
	addItemUseCase    *appcart.AddItemUseCase
	updateItemUseCase *appcart.UpdateItemUseCase
	removeItemUseCase *appcart.RemoveItemUseCase
	getCartUseCase    *appcart.GetCartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	addItemUseCase *appcart.AddItemUseCase,
	updateItemUseCase *appcart.UpdateItemUseCase,
	removeItemUseCase *appcart.RemoveItemUseCase,
	getCartUseCase *appcart.GetCartUseCase,
) *CartHandler {
	return &CartHandler{
		addItemUseCase:    addItemUseCase,
		updateItemUseCase: updateItemUseCase,
		removeItemUseCase: removeItemUseCase,
		getCartUseCase:    getCartUseCase,
	}
}

// GetCart 查询购物车
// @Summary      查询购物车
// @Description  返回购物车明细,附带当前库存的建议性提示
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.GetCartResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.getCartUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  同一ISBN重复加购会合并数量;库存不足只提示不拒绝
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "加购信息"
// @Success      200 {object} response.Response{data=appcart.AddItemResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.addItemUseCase.Execute(c.Request.Context(), appcart.AddItemRequest{
		UserID:   userID,
		ISBN:     req.ISBN,
		Quantity: req.Quantity,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateItem 修改购物车条目数量
// @Summary      修改数量
// @Description  将指定ISBN的数量改为给定值,小于1按1处理
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /api/v1/cart/items/{isbn} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	err := h.updateItemUseCase.Execute(c.Request.Context(), appcart.UpdateItemRequest{
		UserID:   userID,
		ISBN:     c.Param("isbn"),
		Quantity: req.Quantity,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已更新"})
}

// RemoveItem 移除购物车条目
// @Summary      移除条目
// @Description  从购物车中删除指定ISBN
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /api/v1/cart/items/{isbn} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.removeItemUseCase.Execute(c.Request.Context(), userID, c.Param("isbn")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已移除"})
}
