package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookmall/internal/application/book"
	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	bookService        book.Service
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	bookService book.Service,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		bookService:        bookService,
	}
}

// PublishBook 发布图书(上架)
// @Summary      发布图书
// @Description  上架图书商品,同时登记进货价与补货阈值
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 2. 获取当前登录用户ID(从认证中间件注入的Context中获取)
	userID := middleware.MustGetUserID(c)

	// 3. 调用应用层用例
	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:             req.ISBN,
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		Price:            req.Price,
		CostPrice:        req.CostPrice,
		Stock:            req.Stock,
		ReorderThreshold: req.ReorderThreshold,
		CoverURL:         req.CoverURL,
		Description:      req.Description,
		OwnerID:          userID,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	// 4. 构建HTTP响应
	response.Success(c, &dto.BookResponse{
		ID:               result.ID,
		ISBN:             result.ISBN,
		Title:            result.Title,
		Author:           result.Author,
		Publisher:        result.Publisher,
		Price:            result.Price,
		PriceYuan:        dto.FormatPriceYuan(result.Price),
		Stock:            result.Stock,
		ReorderThreshold: result.ReorderThreshold,
		CoverURL:         result.CoverURL,
		Description:      result.Description,
		OwnerID:          result.OwnerID,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.CreatedAt, // 新创建时UpdatedAt等于CreatedAt
	})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书,支持关键词搜索与排序
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        keyword query string false "搜索关键词(标题/作者/出版社)"
// @Param        sort_by query string false "排序(price_asc/price_desc/created_at_desc)"
// @Success      200 {object} response.Response{data=dto.ListBooksResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, item := range result.List {
		list[i] = dto.BookListItem{
			ID:        item.ID,
			ISBN:      item.ISBN,
			Title:     item.Title,
			Author:    item.Author,
			Publisher: item.Publisher,
			Price:     item.Price,
			PriceYuan: dto.FormatPriceYuan(item.Price),
			Stock:     item.Stock,
			CoverURL:  item.CoverURL,
			CreatedAt: item.CreatedAt,
		}
	}

	response.Success(c, &dto.ListBooksResponse{
		List:  list,
		Total: result.Total,
		Page:  result.Page,
		Size:  result.PageSize,
	})
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  按ID查询单本图书
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的图书ID")
		return
	}

	b, err := h.bookService.GetBookByID(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:               b.ID,
		ISBN:             b.ISBN,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		Price:            b.Price,
		PriceYuan:        dto.FormatPriceYuan(b.Price),
		Stock:            b.Stock,
		ReorderThreshold: b.ReorderThreshold,
		CoverURL:         b.CoverURL,
		Description:      b.Description,
		OwnerID:          b.OwnerID,
		CreatedAt:        b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:        b.UpdatedAt.Format("2006-01-02 15:04:05"),
	})
}
