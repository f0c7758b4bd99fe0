package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookmall/internal/application/order"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// OrderHandler 订单HTTP处理器
// 设计说明：
// 1. 结账是整个系统的核心入口,库存一致性由应用层事务保证
// 2. Handler只做参数绑定与用户身份提取,不碰任何业务规则
type OrderHandler struct {
	checkoutUseCase     *apporder.CheckoutUseCase
	listOrdersUseCase   *apporder.ListOrdersUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	cancelOrderUseCase  *apporder.CancelOrderUseCase
	updateStatusUseCase *apporder.UpdateStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	checkoutUseCase *apporder.CheckoutUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	cancelOrderUseCase *apporder.CancelOrderUseCase,
	updateStatusUseCase *apporder.UpdateStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		checkoutUseCase:     checkoutUseCase,
		listOrdersUseCase:   listOrdersUseCase,
		getOrderUseCase:     getOrderUseCase,
		cancelOrderUseCase:  cancelOrderUseCase,
		updateStatusUseCase: updateStatusUseCase,
	}
}

// Checkout 结账
// @Summary      结账
// @Description  把整个购物车原子地转为订单:扣库存、记价格快照、清空购物车
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "支付与收货信息"
// @Success      200 {object} response.Response{data=apporder.CheckoutResponse}
// @Failure      400 {object} response.Response "参数错误/购物车为空/支付卡过期"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "库存不足(返回全部缺口明细)"
// @Router       /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.checkoutUseCase.Execute(c.Request.Context(), apporder.CheckoutRequest{
		UserID:          userID,
		CardNumber:      req.CardNumber,
		CardExpiry:      req.CardExpiry,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOrders 我的订单列表
// @Summary      订单列表
// @Description  分页查询当前用户的订单,按创建时间倒序
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   userID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  查询单个订单,仅订单所有者或管理员可见
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.GetOrderResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权访问"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的订单ID")
		return
	}

	result, err := h.getOrderUseCase.Execute(
		c.Request.Context(),
		uint(orderID),
		middleware.MustGetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  仅待处理/处理中的订单可取消,取消后库存原数归还
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权访问"
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "当前状态不可取消"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的订单ID")
		return
	}

	err = h.cancelOrderUseCase.Execute(
		c.Request.Context(),
		uint(orderID),
		middleware.MustGetUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "订单已取消,库存已归还"})
}

// UpdateStatus 推进订单状态(管理员)
// @Summary      订单状态流转
// @Description  按 待处理→处理中→已发货→已送达 推进,取消走取消接口
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权访问"
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "非法状态流转"
// @Router       /api/v1/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的订单ID")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	err = h.updateStatusUseCase.Execute(c.Request.Context(), apporder.UpdateStatusRequest{
		OrderID: uint(orderID),
		Status:  req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "状态已更新"})
}
