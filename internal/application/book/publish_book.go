package book

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/book"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 此用例比较简单,只需调用领域服务即可
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
	}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN             string // ISBN号
	Title            string // 书名
	Author           string // 作者
	Publisher        string // 出版社(补货时按此聚合采购单)
	Price            int64  // 售价(分)
	CostPrice        int64  // 进货价(分),采购单的单价快照来源
	Stock            int    // 初始库存
	ReorderThreshold int    // 补货阈值,库存低于该值触发补货
	CoverURL         string // 封面图URL
	Description      string // 图书描述
	OwnerID          uint   // 发布者用户ID(从认证中间件获取)
}

// PublishBookResponse 上架响应DTO
type PublishBookResponse struct {
	ID               uint   `json:"id"`
	ISBN             string `json:"isbn"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	Publisher        string `json:"publisher"`
	Price            int64  `json:"price"` // 售价(分)
	Stock            int    `json:"stock"`
	ReorderThreshold int    `json:"reorder_threshold"`
	CoverURL         string `json:"cover_url"`
	Description      string `json:"description"`
	OwnerID          uint   `json:"owner_id"`
	CreatedAt        string `json:"created_at"`
}

// Execute 执行上架用例
// 业务规则校验由领域服务负责(ISBN格式、价格范围、阈值非负等),
// 应用层只负责流程编排
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*PublishBookResponse, error) {
	b, err := uc.bookService.PublishBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Publisher,
		req.Price,
		req.CostPrice,
		req.Stock,
		req.ReorderThreshold,
		req.CoverURL,
		req.Description,
		req.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	return &PublishBookResponse{
		ID:               b.ID,
		ISBN:             b.ISBN,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		Price:            b.Price,
		Stock:            b.Stock,
		ReorderThreshold: b.ReorderThreshold,
		CoverURL:         b.CoverURL,
		Description:      b.Description,
		OwnerID:          b.OwnerID,
		CreatedAt:        b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
