package sqlite

import (
	"strings"

	"go.uber.org/zap"

	"github.com/productlens/backend/internal/storage/models"
	"github.com/productlens/backend/pkg/logger"
	"github.com/productlens/backend/pkg/utils"
)

type seedNode struct {
	name     string
	children []seedNode
}

var seedCategories = []seedNode{
	{name: "Fashion", children: []seedNode{
		{name: "Men", children: []seedNode{
			{name: "Clothing", children: []seedNode{
				{name: "Tops", children: []seedNode{{name: "Shirts"}, {name: "Sweaters"}}},
				{name: "Bottoms", children: []seedNode{{name: "Jeans"}, {name: "Shorts"}}},
			}},
			{name: "Shoes"},
			{name: "Accessories"},
		}},
		{name: "Women", children: []seedNode{
			{name: "Clothing", children: []seedNode{
				{name: "Tops", children: []seedNode{{name: "Blouses"}, {name: "Sweaters"}}},
				{name: "Bottoms", children: []seedNode{{name: "Jeans"}, {name: "Skirts"}}},
				{name: "Dresses"},
			}},
			{name: "Shoes"},
			{name: "Accessories"},
		}},
		{name: "Kids", children: []seedNode{
			{name: "Clothing"},
			{name: "Shoes"},
		}},
	}},
	{name: "Beauty & Personal Care", children: []seedNode{
		{name: "Tanning", children: []seedNode{{name: "Tanning Beds"}, {name: "Tanning Lotions"}}},
		{name: "Skincare"},
		{name: "Haircare"},
	}},
	{name: "Sports & Outdoors", children: []seedNode{
		{name: "Pool & Beach", children: []seedNode{{name: "Pool Floats"}, {name: "Towels"}}},
		{name: "Fitness", children: []seedNode{{name: "Yoga Mats"}, {name: "Dumbbells"}}},
	}},
	{name: "Home & Garden", children: []seedNode{
		{name: "Furniture", children: []seedNode{{name: "Sofas"}, {name: "Tables"}}},
		{name: "Kitchen"},
	}},
	{name: "Electronics", children: []seedNode{
		{name: "Audio", children: []seedNode{{name: "Headphones"}, {name: "Speakers"}}},
		{name: "Wearables"},
	}},
}

var seedTags = []models.Tag{
	{Name: "indigo", Type: models.TagColors},
	{Name: "black", Type: models.TagColors},
	{Name: "white", Type: models.TagColors},
	{Name: "navy", Type: models.TagColors},
	{Name: "red", Type: models.TagColors},
	{Name: "denim", Type: models.TagMaterials},
	{Name: "leather", Type: models.TagMaterials},
	{Name: "cotton", Type: models.TagMaterials},
	{Name: "wool", Type: models.TagMaterials},
	{Name: "polyester", Type: models.TagMaterials},
	{Name: "slim-fit", Type: models.TagFit},
	{Name: "relaxed", Type: models.TagFit},
	{Name: "regular-fit", Type: models.TagFit},
	{Name: "casual", Type: models.TagStyles},
	{Name: "formal", Type: models.TagStyles},
	{Name: "vintage", Type: models.TagStyles},
	{Name: "waterproof", Type: models.TagFeatures},
	{Name: "wireless", Type: models.TagFeatures},
	{Name: "stretch", Type: models.TagFeatures},
	{Name: "running", Type: models.TagActivities},
	{Name: "yoga", Type: models.TagActivities},
	{Name: "swimming", Type: models.TagActivities},
	{Name: "hiking", Type: models.TagActivities},
	{Name: "wedding", Type: models.TagOccasions},
	{Name: "party", Type: models.TagOccasions},
	{Name: "work", Type: models.TagOccasions},
}

// SeedTaxonomy inserts the default category tree and tag vocabulary.
// IDs are derived from slugs so reseeding an existing database is idempotent.
func (c *Client) SeedTaxonomy() error {
	inserted := 0
	for _, root := range seedCategories {
		inserted += c.seedTree(root, nil, 0, "")
	}

	for _, tag := range seedTags {
		tag.Slug = slugify(tag.Name)
		tag.ID = utils.HashString("tag:" + tag.Slug)
		if err := c.InsertTag(&tag); err != nil {
			logger.Error("Failed to seed tag", zap.String("tag", tag.Name), zap.Error(err))
		}
	}

	logger.Info("Taxonomy seeded", zap.Int("categories", inserted), zap.Int("tags", len(seedTags)))
	return nil
}

func (c *Client) seedTree(node seedNode, parentID *string, level int, slugPrefix string) int {
	slug := slugify(node.name)
	if slugPrefix != "" {
		slug = slugPrefix + "-" + slug
	}

	cat := models.Category{
		ID:       utils.HashString("category:" + slug),
		Name:     node.name,
		Slug:     slug,
		ParentID: parentID,
		Level:    level,
	}

	count := 0
	if err := c.InsertCategory(&cat); err != nil {
		logger.Error("Failed to seed category", zap.String("category", node.name), zap.Error(err))
	} else {
		count = 1
	}

	for _, child := range node.children {
		count += c.seedTree(child, &cat.ID, level+1, slug)
	}

	return count
}

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "&", "and")
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
