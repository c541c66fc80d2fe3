package domain

import "time"

type Category struct {
	ID   string `gorm:"column:category_id;primaryKey" json:"category_id"`
	Name string `gorm:"column:category_name;not null" json:"category_name"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          string `gorm:"column:product_id;primaryKey" json:"product_id"`
	Name        string `gorm:"column:product_name;not null" json:"product_name"`
	Description string `gorm:"column:description" json:"description"`
	CategoryID  string `gorm:"column:category_id;not null;index" json:"category_id"`
}

func (Product) TableName() string {
	return "products"
}

// Promotion targets either a category directly or a single product. The
// inclusive [StartDate, EndDate] range is expanded into per-day events by the
// promotion event service.
type Promotion struct {
	ID                 string    `gorm:"column:promotion_id;primaryKey" json:"promotion_id"`
	Name               string    `gorm:"column:promotion_name;not null" json:"promotion_name"`
	StartDate          time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate            time.Time `gorm:"column:end_date;not null" json:"end_date"`
	DiscountPercentage int       `gorm:"column:discount_percentage" json:"discount_percentage"`
	TargetType         string    `gorm:"column:target_type;not null;index" json:"target_type"`
	TargetID           string    `gorm:"column:target_id;not null;index" json:"target_id"`
}

func (Promotion) TableName() string {
	return "promotions"
}

const (
	PromotionTargetCategory = "category"
	PromotionTargetProduct  = "product"
)

// HourlySales is the aggregated training data loaded by the ETL job.
type HourlySales struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	Time          time.Time `gorm:"column:time;not null;index" json:"time"`
	CategoryID    string    `gorm:"column:category_id;not null;index" json:"category_id"`
	TotalSales    float64   `gorm:"column:total_sales;not null" json:"total_sales"`
	TotalQuantity float64   `gorm:"column:total_quantity;not null" json:"total_quantity"`
}

func (HourlySales) TableName() string {
	return "hourly_sales_by_category"
}
