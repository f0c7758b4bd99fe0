package dto

// CheckoutRequest HTTP结账请求
// 支付信息只做格式与有效期校验,不做真实扣款
type CheckoutRequest struct {
	CardNumber      string `json:"card_number" binding:"required" example:"6222021234567890"`
	CardExpiry      string `json:"card_expiry" binding:"required" example:"12/27"` // MM/YY
	ShippingAddress string `json:"shipping_address" binding:"required,max=500" example:"北京市海淀区中关村大街1号"`
	Notes           string `json:"notes" binding:"max=500" example:"工作日白天收货"`
}

// UpdateOrderStatusRequest HTTP订单状态流转请求(管理员)
// 状态码:2=处理中 3=已发货 4=已送达(取消走专门接口)
type UpdateOrderStatusRequest struct {
	Status int `json:"status" binding:"required,min=2,max=4" example:"2"`
}

// ListOrdersRequest HTTP订单列表请求
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
