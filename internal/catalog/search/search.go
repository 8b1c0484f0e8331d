// Package search реализует регистронезависимый поиск подстроки по текстовым полям.
//
// Запрос разбивается на слова по пробелам; строка подходит, если хотя бы одно
// слово входит хотя бы в одно из полей (ИЛИ по словам и по полям).
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"gorm.io/gorm"
)

// ErrNoQuerySpecified возвращается, если поиск по всему каталогу вызван без запроса
var ErrNoQuerySpecified = errors.New("no query specified")

// DefaultShowFirst задает, сколько товаров категории показывать в выдаче по умолчанию
const DefaultShowFirst = 3

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type base struct {
	fields []string
}

// predicate собирает условие "(LOWER(f1) LIKE ? OR LOWER(f2) LIKE ? ...)" для всех слов и полей
func (b base) predicate(tokens []string) (string, []interface{}) {
	parts := make([]string, 0, len(tokens)*len(b.fields))
	args := make([]interface{}, 0, len(tokens)*len(b.fields))
	for _, token := range tokens {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(token)) + "%"
		for _, field := range b.fields {
			parts = append(parts, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, field))
			args = append(args, pattern)
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func (b base) filter(tokens []string, qs *gorm.DB) *gorm.DB {
	query, args := b.predicate(tokens)
	return qs.Session(&gorm.Session{}).Where(query, args...)
}

// Category ищет внутри одной категории
type Category struct {
	base
}

// NewCategory создает поиск по указанным полям
func NewCategory(fields ...string) *Category {
	return &Category{base{fields: fields}}
}

// Filter сужает выборку по запросу; пустой запрос выборку не меняет
func (s *Category) Filter(query string, qs *gorm.DB) *gorm.DB {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return qs
	}
	return s.filter(tokens, qs)
}

// Result описывает найденное в одной категории
type Result struct {
	Category models.Category `json:"category"`
	// Found: число подходящих товаров (при совпадении по категории считаются все товары категории)
	Found      int64            `json:"found"`
	FirstFound []models.Product `json:"first_found"`
	// WholeCategory: запросу соответствует название категории
	WholeCategory bool `json:"whole_category"`
}

// Catalog ищет по всему каталогу и группирует результат по категориям
type Catalog struct {
	base
	showFirst int
}

// NewCatalog создает поиск по полям товара; showFirst ограничивает выборку товаров в каждой категории
func NewCatalog(showFirst int, fields ...string) *Catalog {
	if showFirst <= 0 {
		showFirst = DefaultShowFirst
	}
	return &Catalog{base: base{fields: fields}, showFirst: showFirst}
}

type foundRow struct {
	CategoryID int64
	Found      int64
}

// Search ищет товары products во всех категориях categories.
// Категория, чье название подходит под запрос, попадает в выдачу целиком.
// Категории без найденных товаров пропускаются; результат упорядочен по id категории.
func (s *Catalog) Search(query string, products, categories *gorm.DB) ([]Result, error) {
	const op = "search.Catalog.Search"

	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, ErrNoQuerySpecified
	}

	var whole []int64
	namePredicate := base{fields: []string{"name"}}
	if err := namePredicate.filter(tokens, categories).Pluck("id", &whole).Error; err != nil {
		return nil, fmt.Errorf("%s: failed to match categories: %w", op, err)
	}
	wholeSet := make(map[int64]bool, len(whole))
	for _, id := range whole {
		wholeSet[id] = true
	}

	cond, args := s.predicate(tokens)
	if len(whole) > 0 {
		cond = "(" + cond + " OR category_id IN ?)"
		args = append(args, whole)
	}

	var counts []foundRow
	err := products.Session(&gorm.Session{}).
		Where(cond, args...).
		Select("category_id, COUNT(*) AS found").
		Group("category_id").
		Order("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count products: %w", op, err)
	}
	if len(counts) == 0 {
		return []Result{}, nil
	}

	ids := make([]int64, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.CategoryID)
	}
	var cats []models.Category
	if err := categories.Session(&gorm.Session{}).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("%s: failed to load categories: %w", op, err)
	}
	byID := make(map[int64]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	results := make([]Result, 0, len(counts))
	for _, c := range counts {
		category, ok := byID[c.CategoryID]
		if !ok {
			continue
		}

		sample := products.Session(&gorm.Session{}).Where("category_id = ?", c.CategoryID)
		if !wholeSet[c.CategoryID] {
			sample = s.filter(tokens, sample)
		}
		var first []models.Product
		if err := sample.Order("id").Limit(s.showFirst).Find(&first).Error; err != nil {
			return nil, fmt.Errorf("%s: failed to load products of category %d: %w", op, c.CategoryID, err)
		}

		results = append(results, Result{
			Category:      category,
			Found:         c.Found,
			FirstFound:    first,
			WholeCategory: wholeSet[c.CategoryID],
		})
	}
	return results, nil
}
