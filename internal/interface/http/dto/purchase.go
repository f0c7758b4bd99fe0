package dto

// ListPurchaseOrdersRequest HTTP采购单列表请求(管理员)
// status: 0=全部 1=待确认 2=已确认 3=已取消
type ListPurchaseOrdersRequest struct {
	Status   int `form:"status" binding:"omitempty,min=0,max=3" example:"1"`
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
