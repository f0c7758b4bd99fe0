package dto

// AddCartItemRequest HTTP加购请求
// quantity缺省或<1时按1处理(服务端钳制,不在此处拒绝)
type AddCartItemRequest struct {
	ISBN     string `json:"isbn" binding:"required" example:"9787115428028"`
	Quantity int    `json:"quantity" binding:"omitempty,max=999" example:"2"`
}

// UpdateCartItemRequest HTTP修改购物车条目数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,max=999" example:"3"`
}
