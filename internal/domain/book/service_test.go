package book_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
)

func newService(t *testing.T) (book.Service, *book.Author, *book.Category) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	author := &book.Author{Name: "Alan Donovan"}
	require.NoError(t, store.Authors().Create(ctx, author))
	category := &book.Category{Name: "编程"}
	require.NoError(t, store.Categories().Create(ctx, category))

	return book.NewService(store.Books(), store.Authors(), store.Categories()), author, category
}

func validInput(author *book.Author, category *book.Category) book.BookInput {
	return book.BookInput{
		ISBN:        "978-7-111-54742-6",
		Title:       "Go程序设计语言",
		Publisher:   "机械工业出版社",
		Price:       decimal.RequireFromString("79.00"),
		Currency:    "cny",
		Stock:       10,
		AuthorIDs:   []uint{author.ID, author.ID},
		CategoryIDs: []uint{category.ID},
	}
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	svc, author, category := newService(t)

	b, err := svc.CreateBook(ctx, validInput(author, category))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, "CNY", b.Currency)
	assert.Len(t, b.Authors, 1, "重复的作者ID去重")
	assert.Zero(t, b.ReviewCount)

	_, err = svc.CreateBook(ctx, validInput(author, category))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
}

func TestCreateBookValidation(t *testing.T) {
	ctx := context.Background()
	svc, author, category := newService(t)

	cases := []struct {
		name   string
		mutate func(*book.BookInput)
		want   error
	}{
		{"ISBN格式", func(in *book.BookInput) { in.ISBN = "12345" }, book.ErrInvalidISBN},
		{"书名为空", func(in *book.BookInput) { in.Title = "" }, book.ErrInvalidTitle},
		{"价格为0", func(in *book.BookInput) { in.Price = decimal.Zero }, book.ErrInvalidPrice},
		{"币种", func(in *book.BookInput) { in.Currency = "RMB1" }, book.ErrInvalidCurrency},
		{"负库存", func(in *book.BookInput) { in.Stock = -1 }, book.ErrInvalidStock},
		{"作者不存在", func(in *book.BookInput) { in.AuthorIDs = []uint{999} }, book.ErrAuthorNotFound},
		{"分类不存在", func(in *book.BookInput) { in.CategoryIDs = []uint{999} }, book.ErrCategoryNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(author, category)
			tc.mutate(&in)
			_, err := svc.CreateBook(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateAndDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, author, category := newService(t)

	b, err := svc.CreateBook(ctx, validInput(author, category))
	require.NoError(t, err)

	in := validInput(author, category)
	in.Title = "Go程序设计语言(第2版)"
	in.Price = decimal.RequireFromString("89.00")
	in.Currency = "usd"
	in.CategoryIDs = nil
	updated, err := svc.UpdateBook(ctx, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.Currency)
	assert.Empty(t, updated.Categories)

	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Title, got.Title)
	assert.True(t, got.Price.Equal(in.Price))

	require.NoError(t, svc.DeleteBook(ctx, b.ID))
	_, err = svc.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, svc.DeleteBook(ctx, b.ID), book.ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	svc, author, category := newService(t)

	prices := map[string]string{"9787111000011": "30", "9787111000012": "10", "9787111000013": "20"}
	for isbn, price := range prices {
		in := validInput(author, category)
		in.ISBN = isbn
		in.Price = decimal.RequireFromString(price)
		_, err := svc.CreateBook(ctx, in)
		require.NoError(t, err)
	}

	list, total, err := svc.ListBooks(ctx, book.ListParams{Page: 1, PageSize: 2, SortBy: book.SortPriceAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "10", list[0].Price.String())
	assert.Equal(t, "20", list[1].Price.String())

	list, _, err = svc.ListBooks(ctx, book.ListParams{Keyword: "000013"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, total, err = svc.ListBooks(ctx, book.ListParams{CategoryID: category.ID + 1})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBookStock(t *testing.T) {
	b := book.NewBook("9787111000010", "t", "", "", "", decimal.NewFromInt(1), "CNY", 2)
	assert.ErrorIs(t, b.DecrStock(3), book.ErrInsufficientStock)
	require.NoError(t, b.DecrStock(2))
	assert.False(t, b.HasStock(1))
	require.NoError(t, b.IncrStock(1))
	assert.ErrorIs(t, b.IncrStock(0), book.ErrInvalidQuantity)
}
