package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/internal/domain"
)

const placeholderImage = "/placeholder.svg?height=200&width=200"

// defaultCatalog is the product range of the demo storefront.
var defaultCatalog = []domain.CatalogProduct{
	{ID: 1, Name: "Eco-friendly Water Bottle", Price: 24.99, Description: "Stay hydrated with our durable and stylish eco-friendly water bottle."},
	{ID: 2, Name: "Organic Cotton T-shirt", Price: 29.99, Description: "Feel comfortable and look great in our soft, organic cotton t-shirt."},
	{ID: 3, Name: "Recycled Paper Notebook", Price: 14.99, Description: "Jot down your thoughts in our environmentally conscious recycled paper notebook."},
	{ID: 4, Name: "Bamboo Toothbrush Set", Price: 12.99, Description: "Maintain your oral hygiene while reducing plastic waste with our bamboo toothbrush set."},
	{ID: 5, Name: "Solar-Powered Charger", Price: 39.99, Description: "Charge your devices on the go with our efficient solar-powered charger."},
	{ID: 6, Name: "Reusable Produce Bags", Price: 9.99, Description: "Say goodbye to single-use plastic bags with our durable reusable produce bags."},
}

// checkCatalog initializes the demo storefront products
func (a *Application) checkCatalog() {
	for i, p := range defaultCatalog {
		var count int64
		a.gormDB.Model(&domain.CatalogProduct{}).Where("id = ?", p.ID).Count(&count)
		if count > 0 {
			continue
		}
		p.Image = placeholderImage
		p.Sort = i
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create catalog product", zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized catalog product", zap.String("name", p.Name))
		}
	}
}
