package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apppurchase "github.com/xiebiao/bookmall/internal/application/purchase"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/pkg/response"
)

// PurchaseHandler 采购单HTTP处理器(管理员)
// 采购单由补货引擎自动开立,这里只提供查询与确认/取消入口
type PurchaseHandler struct {
	listUseCase    *apppurchase.ListPurchaseOrdersUseCase
	confirmUseCase *apppurchase.ConfirmUseCase
	cancelUseCase  *apppurchase.CancelUseCase
}

// NewPurchaseHandler 创建采购单处理器
func NewPurchaseHandler(
	listUseCase *apppurchase.ListPurchaseOrdersUseCase,
	confirmUseCase *apppurchase.ConfirmUseCase,
	cancelUseCase *apppurchase.CancelUseCase,
) *PurchaseHandler {
	return &PurchaseHandler{
		listUseCase:    listUseCase,
		confirmUseCase: confirmUseCase,
		cancelUseCase:  cancelUseCase,
	}
}

// List 采购单列表
// @Summary      采购单列表
// @Description  分页查询采购单,可按状态过滤
// @Tags         采购
// @Produce      json
// @Security     BearerAuth
// @Param        status query int false "状态(0=全部 1=待确认 2=已确认 3=已取消)"
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Success      200 {object} response.Response{data=apppurchase.ListPurchaseOrdersResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权访问"
// @Router       /api/v1/purchase-orders [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.ListPurchaseOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), apppurchase.ListPurchaseOrdersRequest{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Confirm 确认到货
// @Summary      确认采购单
// @Description  到货入库:明细数量加回库存;重复确认幂等,不会二次入库
// @Tags         采购
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "采购单ID"
// @Success      200 {object} response.Response{data=apppurchase.ConfirmResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权访问"
// @Failure      404 {object} response.Response "采购单不存在"
// @Failure      409 {object} response.Response "采购单已取消"
// @Router       /api/v1/purchase-orders/{id}/confirm [post]
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	poID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的采购单ID")
		return
	}

	result, err := h.confirmUseCase.Execute(c.Request.Context(), uint(poID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cancel 取消采购单
// @Summary      取消采购单
// @Description  仅待确认的采购单可取消,取消后不再接受确认
// @Tags         采购
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "采购单ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权访问"
// @Failure      404 {object} response.Response "采购单不存在"
// @Failure      409 {object} response.Response "已确认的采购单不可取消"
// @Router       /api/v1/purchase-orders/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	poID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的采购单ID")
		return
	}

	if err := h.cancelUseCase.Execute(c.Request.Context(), uint(poID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "采购单已取消"})
}
