package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// PublishBook 发布图书(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 售价必须在1-999999分之间,进货价不能高于售价
	// - 库存、补货阈值必须>=0
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher string, price, costPrice int64, stock, reorderThreshold int, coverURL, description string, ownerID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBookInfo 更新图书信息(只有发布者本人可以修改)
	UpdateBookInfo(ctx context.Context, id uint, userID uint, title, author, publisher, description string) error

	// UpdateBookPrice 更新图书售价(只有发布者本人可以修改)
	UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error

	// DeleteBook 删除图书(只有发布者本人可以删除)
	DeleteBook(ctx context.Context, id uint, userID uint) error

	// ListBooks 分页查询图书列表(公开接口)
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 发布图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher string, price, costPrice int64, stock, reorderThreshold int, coverURL, description string, ownerID uint) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 价格范围校验(1分-9999.99元);进货价不能为负也不能高于售价
	if price < 1 || price > 999999 {
		return nil, ErrInvalidPrice
	}
	if costPrice < 0 || costPrice > price {
		return nil, ErrInvalidPrice
	}

	// 3. 库存与补货阈值校验
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if reorderThreshold < 0 {
		return nil, ErrInvalidThreshold
	}

	// 4. 检查ISBN是否已存在
	existingBook, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existingBook != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 5. 创建图书实体并持久化
	b := NewBook(isbn, title, author, publisher, price, costPrice, stock, reorderThreshold, coverURL, description, ownerID)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBookInfo 更新图书信息
func (s *service) UpdateBookInfo(ctx context.Context, id uint, userID uint, title, author, publisher, description string) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	b.UpdateInfo(title, author, publisher, description)
	return s.repo.Update(ctx, b)
}

// UpdateBookPrice 更新图书售价
func (s *service) UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error {
	if newPrice < 1 || newPrice > 999999 {
		return ErrInvalidPrice
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	if err := b.UpdatePrice(newPrice); err != nil {
		return err
	}

	return s.repo.Update(ctx, b)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint, userID uint) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10和ISBN-13,允许分隔符(978-7-115-42802-8 → 9787115428028)
// 简化实现:只检查位数和是否全为数字(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
