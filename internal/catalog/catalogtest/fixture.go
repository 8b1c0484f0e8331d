// Package catalogtest поднимает in-memory sqlite с тестовым каталогом
// (две категории: телефоны и холодильники, по три товара в каждой).
package catalogtest

import (
	"testing"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Fixture хранит тестовую БД и созданные в ней записи
type Fixture struct {
	DB         *gorm.DB
	Categories []*models.Category
	Phones     []*models.PhoneDetails
	Fridges    []*models.FridgeDetails
	Products   []*models.Product
}

// AllProducts возвращает нефильтрованную выборку всех товаров
func (f *Fixture) AllProducts() *gorm.DB {
	return f.DB.Model(&models.Product{}).Session(&gorm.Session{})
}

// InCategory возвращает выборку товаров одной категории
func (f *Fixture) InCategory(c *models.Category) *gorm.DB {
	return f.DB.Model(&models.Product{}).Where("category_id = ?", c.ID).Session(&gorm.Session{})
}

// Find загружает товары выборки в порядке id
func Find(t *testing.T, qs *gorm.DB) []models.Product {
	t.Helper()
	var products []models.Product
	if err := qs.Order("id").Find(&products).Error; err != nil {
		t.Fatalf("failed to load products: %v", err)
	}
	return products
}

// IDs возвращает id товаров
func IDs(products []models.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// OpenDB создает пустую схему каталога
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// одно соединение, иначе каждое новое соединение получит свою пустую :memory: БД
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tables := []interface{}{&models.Category{}, &models.Product{}}
	for _, d := range models.AllDetails() {
		tables = append(tables, d)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New создает БД и заполняет ее тестовым каталогом
func New(t *testing.T) *Fixture {
	t.Helper()
	f := &Fixture{DB: OpenDB(t)}

	f.Categories = []*models.Category{
		{Name: "phones", Slug: "phones", DetailsType: models.DetailsPhones},
		{Name: "fridges", Slug: "fridges", DetailsType: models.DetailsFridges},
	}
	f.Phones = []*models.PhoneDetails{
		{Color: "red", MemoryKB: 2097152, DisplayResolution: "980x620", CameraResolution: "990x280"},
		{Color: "purple", MemoryKB: 1048576, DisplayResolution: "1980x720", CameraResolution: "600x600"},
		{Color: "blue", MemoryKB: 524288, DisplayResolution: "1020x1020", CameraResolution: "870x780"},
	}
	f.Fridges = []*models.FridgeDetails{
		{VolumeLiters: 80, HasFreezer: false, Color: "black", EUEnergyLabel: "A"},
		{VolumeLiters: 380, HasFreezer: true, Color: "white", EUEnergyLabel: "A++"},
		{VolumeLiters: 200, HasFreezer: true, Color: "white", EUEnergyLabel: "B"},
	}

	for _, c := range f.Categories {
		mustCreate(t, f.DB, c)
	}
	for _, d := range f.Phones {
		mustCreate(t, f.DB, d)
	}
	for _, d := range f.Fridges {
		mustCreate(t, f.DB, d)
	}

	phones, fridges := f.Categories[0], f.Categories[1]
	f.Products = []*models.Product{
		product("Galaxy W", 28500, "Shansung", "test description", 100, phones, f.Phones[0], date(2020, 10, 13)),
		product("Erick Son", 40000, "Bony", "Test description", 70, phones, f.Phones[1], date(2020, 10, 16)),
		product("iCall 99", 85000, "Banana", "Best ergonomics in the world", 250, phones, f.Phones[2], date(2020, 10, 18)),
		product("Freeze One", 78500, "POSH", "Cool as heart of that girl", 10, fridges, f.Fridges[0], date(2020, 9, 8)),
		product("M8690", 186900, "Homestead", "Best for your family and kids!", 17, fridges, f.Fridges[1], date(2020, 9, 27)),
		product("Loner's Choice", 32999, "Sentinel", "Keeps your beer cool, that is what you asked.", 3, fridges, f.Fridges[2], date(2020, 9, 22)),
	}
	for _, p := range f.Products {
		mustCreate(t, f.DB, p)
	}
	return f
}

// AddUnpublished добавляет в категорию товар с датой публикации в будущем
func (f *Fixture) AddUnpublished(t *testing.T, c *models.Category, name string) *models.Product {
	t.Helper()
	details := &models.PhoneDetails{Color: "gold", MemoryKB: 4194304, DisplayResolution: "2400x1080", CameraResolution: "4000x3000"}
	mustCreate(t, f.DB, details)
	p := product(name, 99900, "Shansung", "coming soon", 5, c, details, time.Now().UTC().Add(30*24*time.Hour))
	mustCreate(t, f.DB, p)
	return p
}

func product(name string, price int64, manufacturer, description string, units int,
	c *models.Category, d models.Details, published time.Time) *models.Product {
	var detailsID int64
	switch v := d.(type) {
	case *models.PhoneDetails:
		detailsID = v.ID
	case *models.FridgeDetails:
		detailsID = v.ID
	}
	return &models.Product{
		Name:            name,
		Price:           decimal.NewFromInt(price),
		Manufacturer:    manufacturer,
		Description:     description,
		DiscountPercent: decimal.Zero,
		UnitsAvailable:  units,
		CategoryID:      c.ID,
		DetailsType:     d.Kind(),
		DetailsID:       detailsID,
		PublishedAt:     published,
	}
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create %T: %v", value, err)
	}
}
