package search_test

import (
	"errors"
	"testing"
	"time"

	"github.com/linemk/storefront/internal/catalog/catalogtest"
	"github.com/linemk/storefront/internal/catalog/search"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func categories(f *catalogtest.Fixture) *gorm.DB {
	return f.DB.Model(&models.Category{}).Session(&gorm.Session{})
}

func TestCategory_TokensJoinedWithOr(t *testing.T) {
	f := catalogtest.New(t)
	fridges := f.InCategory(f.Categories[1])

	products := catalogtest.Find(t, search.NewCategory("name").Filter("Freeze choice", fridges))

	require.Len(t, products, 2)
	assert.Equal(t, "Freeze One", products[0].Name)
	assert.Equal(t, "Loner's Choice", products[1].Name)
}

func TestCategory_FieldsJoinedWithOr(t *testing.T) {
	f := catalogtest.New(t)
	fridges := f.InCategory(f.Categories[1])

	products := catalogtest.Find(t, search.NewCategory("name", "description").Filter("ee", fridges))

	require.Len(t, products, 2)
	assert.Equal(t, "Freeze One", products[0].Name)
	assert.Equal(t, "Loner's Choice", products[1].Name)
}

func TestCategory_EmptyQuery(t *testing.T) {
	f := catalogtest.New(t)
	fridges := f.InCategory(f.Categories[1])

	assert.Len(t, catalogtest.Find(t, search.NewCategory("name").Filter("", fridges)), 3)
	assert.Len(t, catalogtest.Find(t, search.NewCategory("name").Filter("   ", fridges)), 3)
}

func TestCategory_WildcardsAreLiteral(t *testing.T) {
	f := catalogtest.New(t)

	assert.Empty(t, catalogtest.Find(t, search.NewCategory("name").Filter("%", f.AllProducts())))
	assert.Empty(t, catalogtest.Find(t, search.NewCategory("name").Filter("_", f.AllProducts())))
}

func TestCatalog_NoQuery(t *testing.T) {
	f := catalogtest.New(t)

	_, err := search.NewCatalog(3, "name").Search("", f.AllProducts(), categories(f))
	assert.True(t, errors.Is(err, search.ErrNoQuerySpecified))

	_, err = search.NewCatalog(3, "name").Search(" \t", f.AllProducts(), categories(f))
	assert.True(t, errors.Is(err, search.ErrNoQuerySpecified))
}

func TestCatalog_TokensJoinedWithOr(t *testing.T) {
	f := catalogtest.New(t)

	results, err := search.NewCatalog(3, "name").Search("icall galaxy", f.AllProducts(), categories(f))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "phones", results[0].Category.Name)
	assert.Equal(t, int64(2), results[0].Found)
	assert.False(t, results[0].WholeCategory)
}

func TestCatalog_MatchesCategoryName(t *testing.T) {
	f := catalogtest.New(t)

	results, err := search.NewCatalog(3, "name").Search("i", f.AllProducts(), categories(f))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "phones", results[0].Category.Name)
	assert.False(t, results[0].WholeCategory)
	assert.Equal(t, int64(2), results[0].Found)

	assert.Equal(t, "fridges", results[1].Category.Name)
	assert.True(t, results[1].WholeCategory)
	assert.Equal(t, int64(3), results[1].Found)
}

func TestCatalog_WholeCategoryIsNotFiltered(t *testing.T) {
	f := catalogtest.New(t)

	results, err := search.NewCatalog(10, "name").Search("phones", f.AllProducts(), categories(f))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].WholeCategory)
	assert.Equal(t, int64(3), results[0].Found)
	assert.Len(t, results[0].FirstFound, 3)
}

func TestCatalog_ShowFirst(t *testing.T) {
	f := catalogtest.New(t)

	results, err := search.NewCatalog(1, "name").Search("l", f.AllProducts(), categories(f))
	require.NoError(t, err)

	require.Len(t, results, 2)
	phones, fridges := results[0], results[1]

	assert.Equal(t, "phones", phones.Category.Name)
	assert.Equal(t, int64(2), phones.Found)
	assert.Len(t, phones.FirstFound, 1)

	assert.Equal(t, "fridges", fridges.Category.Name)
	assert.Equal(t, int64(1), fridges.Found)
	require.Len(t, fridges.FirstFound, 1)
	assert.Equal(t, "Loner's Choice", fridges.FirstFound[0].Name)
}

func TestCatalog_NothingFound(t *testing.T) {
	f := catalogtest.New(t)

	results, err := search.NewCatalog(3, "name").Search("tractor", f.AllProducts(), categories(f))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCatalog_RespectsProductScope(t *testing.T) {
	f := catalogtest.New(t)
	f.AddUnpublished(t, f.Categories[0], "Galaxy Next")

	published := f.AllProducts().Where("published_at <= ?", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	results, err := search.NewCatalog(3, "name").Search("galaxy", published, categories(f))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Found)
}
